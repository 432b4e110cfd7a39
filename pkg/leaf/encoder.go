package leaf

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/merkle"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/types"
)

// Encoder turns one indexed allocation into a merkle leaf.
// Tree building and proof handling only ever see the resulting hash, combined with the
// same HashFunc the encoder uses for leaves.
type Encoder interface {
	Encode(index uint64, rec *types.AllocationRecord) (common.Hash, error)
	Schema() Schema
	HashFunc() merkle.HashFunc
}

// PackedEncoder hashes the Solidity abi.encodePacked form of the schema's fields.
// It must match the on-chain verifier bit for bit.
type PackedEncoder struct {
	schema Schema
	hash   merkle.HashFunc
}

// NewPackedEncoder creates an encoder for schema. A nil hash defaults to Keccak256.
func NewPackedEncoder(schema Schema, hash merkle.HashFunc) (*PackedEncoder, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if hash == nil {
		hash = merkle.Keccak256
	}

	s := make(Schema, len(schema))
	copy(s, schema)

	return &PackedEncoder{
		schema: s,
		hash:   hash,
	}, nil
}

// NewStandardEncoder returns the keccak256 encoder for (index, account, claimCap) leaves.
func NewStandardEncoder() *PackedEncoder {
	return &PackedEncoder{schema: StandardSchema, hash: merkle.Keccak256}
}

// NewReferralEncoder returns the keccak256 encoder for (index, account, claimCap, referral) leaves.
func NewReferralEncoder() *PackedEncoder {
	return &PackedEncoder{schema: ReferralSchema, hash: merkle.Keccak256}
}

// Schema returns a copy of the encoder's field layout.
func (e *PackedEncoder) Schema() Schema {
	s := make(Schema, len(e.schema))
	copy(s, e.schema)
	return s
}

// HashFunc returns the hash applied to packed leaves and to node pairs.
func (e *PackedEncoder) HashFunc() merkle.HashFunc {
	return e.hash
}

// Encode returns hash(abi.encodePacked(fields...)).
func (e *PackedEncoder) Encode(index uint64, rec *types.AllocationRecord) (common.Hash, error) {
	packed, err := e.Pack(index, rec)
	if err != nil {
		return common.Hash{}, err
	}
	return e.hash(packed), nil
}

// Pack returns the tightly packed pre-image: uint256 as 32 bytes big-endian, address as
// 20 bytes and string as its raw UTF-8 bytes.
func (e *PackedEncoder) Pack(index uint64, rec *types.AllocationRecord) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("cannot encode nil allocation record")
	}

	data := make([]byte, 0, 32+common.AddressLength+32+len(rec.Referral))
	for _, f := range e.schema {
		switch f.Name {
		case FieldIndex:
			word := uint256.NewInt(index).Bytes32()
			data = append(data, word[:]...)
		case FieldAccount:
			data = append(data, rec.Account.Bytes()...)
		case FieldClaimCap:
			word, err := packUint256(rec.ClaimCap)
			if err != nil {
				return nil, fmt.Errorf("invalid claim cap for account %s: %w", rec.Account.Hex(), err)
			}
			data = append(data, word[:]...)
		case FieldReferral:
			data = append(data, []byte(rec.Referral)...)
		default:
			return nil, fmt.Errorf("unsupported leaf field %q", f.Name)
		}
	}
	return data, nil
}

func packUint256(v *big.Int) ([32]byte, error) {
	if v == nil {
		return [32]byte{}, fmt.Errorf("value is missing")
	}
	if v.Sign() < 0 {
		return [32]byte{}, fmt.Errorf("value %s is negative", v)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return [32]byte{}, fmt.Errorf("value %s does not fit in uint256", v)
	}
	return u.Bytes32(), nil
}
