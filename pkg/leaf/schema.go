package leaf

import (
	"fmt"
	"strings"
)

// FieldType is the Solidity type a field is packed as.
type FieldType string

const (
	FieldTypeUint256 FieldType = "uint256"
	FieldTypeAddress FieldType = "address"
	FieldTypeString  FieldType = "string"
)

func (t FieldType) String() string {
	return string(t)
}

// IsDynamic reports whether the packed form has no fixed width.
func (t FieldType) IsDynamic() bool {
	return t == FieldTypeString
}

// FieldName identifies which allocation value a field carries.
type FieldName string

const (
	FieldIndex    FieldName = "index"
	FieldAccount  FieldName = "account"
	FieldClaimCap FieldName = "claimCap"
	FieldReferral FieldName = "referral"
)

// fieldTypes is the only type each value may be packed as.
var fieldTypes = map[FieldName]FieldType{
	FieldIndex:    FieldTypeUint256,
	FieldAccount:  FieldTypeAddress,
	FieldClaimCap: FieldTypeUint256,
	FieldReferral: FieldTypeString,
}

// Field is one entry of a packed leaf layout.
type Field struct {
	Name FieldName
	Type FieldType
}

// Schema is the ordered list of fields packed into a leaf pre-image.
type Schema []Field

var (
	// StandardSchema matches keccak256(abi.encodePacked(uint256 index, address account, uint256 claimCap)).
	StandardSchema = Schema{
		{Name: FieldIndex, Type: FieldTypeUint256},
		{Name: FieldAccount, Type: FieldTypeAddress},
		{Name: FieldClaimCap, Type: FieldTypeUint256},
	}

	// ReferralSchema appends the referral tag: abi.encodePacked(index, account, claimCap, string referral).
	ReferralSchema = Schema{
		{Name: FieldIndex, Type: FieldTypeUint256},
		{Name: FieldAccount, Type: FieldTypeAddress},
		{Name: FieldClaimCap, Type: FieldTypeUint256},
		{Name: FieldReferral, Type: FieldTypeString},
	}
)

// HasReferral reports whether the referral tag is part of the leaf, and therefore of the claims key.
func (s Schema) HasReferral() bool {
	for _, f := range s {
		if f.Name == FieldReferral {
			return true
		}
	}
	return false
}

// Types returns the Solidity type list, e.g. ["uint256", "address", "uint256"].
func (s Schema) Types() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Type.String()
	}
	return out
}

func (s Schema) String() string {
	return "(" + strings.Join(s.Types(), ",") + ")"
}

// Validate checks that the schema packs unambiguously.
//
// Packed encoding has no length prefixes, so a variable-length field is only allowed as the
// last field. Anything placed after it could be shifted into or out of it.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("leaf schema has no fields")
	}

	seen := make(map[FieldName]bool, len(s))
	for i, f := range s {
		expected, ok := fieldTypes[f.Name]
		if !ok {
			return fmt.Errorf("leaf schema field %d: unknown field %q", i, f.Name)
		}
		if f.Type != expected {
			return fmt.Errorf("leaf schema field %d: %s must be packed as %s, got %s", i, f.Name, expected, f.Type)
		}
		if seen[f.Name] {
			return fmt.Errorf("leaf schema field %d: duplicate field %s", i, f.Name)
		}
		seen[f.Name] = true

		if f.Type.IsDynamic() && i != len(s)-1 {
			return fmt.Errorf("leaf schema field %d: variable-length %s must be the last field", i, f.Name)
		}
	}
	return nil
}
