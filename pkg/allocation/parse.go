package allocation

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/types"
)

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrInvalidClaimCap = errors.New("invalid claim cap")
	ErrInvalidReferral = errors.New("invalid referral")
	ErrNoAllocations   = errors.New("no allocations to build a merkle tree from")
)

// ValidationError reports the input row that failed validation.
// Err is one of ErrInvalidAddress, ErrInvalidReferral, ErrDuplicateKey or ErrInvalidClaimCap.
type ValidationError struct {
	// Row is the zero-based position of the row in the input
	Row int
	// Value is the offending raw value
	Value  string
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("row %d: %v: %q", e.Row, e.Err, e.Value)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Entry is a validated allocation with its canonical key and assigned index.
type Entry struct {
	Key    string
	Index  uint64
	Record *types.AllocationRecord
}

// ParseRows validates rows and returns them in canonical order with indices assigned.
//
// Each row is checked in turn for a syntactically valid address, a UTF-8 referral tag when
// withReferral is set, a unique key (the checksummed
// address, plus "-" and the referral tag when withReferral is set) and a non-negative claim cap
// that fits in a uint256. The first failure is returned as a *ValidationError.
//
// Entries are sorted by key byte order and indexed by rank, so the result does not depend on
// the order of rows.
func ParseRows(rows []Row, withReferral bool) ([]*Entry, error) {
	if len(rows) == 0 {
		return nil, ErrNoAllocations
	}

	byKey := make(map[string]*types.AllocationRecord, len(rows))
	for i, row := range rows {
		account, err := ParseAddress(row.Address)
		if err != nil {
			return nil, &ValidationError{Row: i, Value: row.Address, Err: ErrInvalidAddress, Detail: err.Error()}
		}

		// the JSON claims file can only carry UTF-8 tags verbatim
		if withReferral && !utf8.ValidString(row.Referral) {
			return nil, &ValidationError{Row: i, Value: row.Referral, Err: ErrInvalidReferral, Detail: "not valid UTF-8"}
		}

		key := types.ClaimKey(account, row.Referral, withReferral)
		if _, exists := byKey[key]; exists {
			return nil, &ValidationError{Row: i, Value: key, Err: ErrDuplicateKey}
		}

		claimCap, err := ParseClaimCap(string(row.ClaimCap))
		if err != nil {
			return nil, &ValidationError{
				Row:    i,
				Value:  string(row.ClaimCap),
				Err:    ErrInvalidClaimCap,
				Detail: fmt.Sprintf("account %s: %v", row.Address, err),
			}
		}

		rec := &types.AllocationRecord{Account: account, ClaimCap: claimCap}
		if withReferral {
			rec.Referral = row.Referral
		}
		byKey[key] = rec
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]*Entry, len(keys))
	for i, key := range keys {
		entries[i] = &Entry{Key: key, Index: uint64(i), Record: byKey[key]}
	}
	return entries, nil
}

// ParseAddress accepts a 20-byte hex address with an optional 0x prefix.
// All-lowercase and all-uppercase input is accepted as is; mixed-case input must carry a
// valid EIP-55 checksum.
func ParseAddress(raw string) (common.Address, error) {
	if strings.HasPrefix(raw, "0X") || !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("not a 20-byte hex address")
	}

	account := common.HexToAddress(raw)
	digits := strings.TrimPrefix(raw, "0x")
	if strings.ToLower(digits) != digits && strings.ToUpper(digits) != digits {
		if "0x"+digits != account.Hex() {
			return common.Address{}, fmt.Errorf("bad address checksum, expected %s", account.Hex())
		}
	}
	return account, nil
}

// maxClaimCapBits bounds claim caps to the uint256 the leaf packs them into.
const maxClaimCapBits = 256

// claimCapLimit is 2^256 as a float, checked before exponent forms are expanded to integers.
var claimCapLimit = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), maxClaimCapBits))

// ParseClaimCap parses a decimal or 0x-prefixed hex integer of arbitrary size.
// Integral exponent forms such as 1e18, which JSON number inputs produce, are accepted.
func ParseClaimCap(raw string) (*big.Int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("value is empty")
	}

	var (
		v  *big.Int
		ok bool
	)
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		digits := s[2:]
		if digits == "" || digits[0] == '-' || digits[0] == '+' {
			return nil, fmt.Errorf("invalid hex integer")
		}
		v, ok = new(big.Int).SetString(digits, 16)
	case strings.ContainsAny(s, ".eE"):
		f, _, err := big.ParseFloat(s, 10, 1024, big.ToNearestEven)
		if err != nil || !f.IsInt() {
			return nil, fmt.Errorf("not an integer")
		}
		if f.Sign() < 0 {
			return nil, fmt.Errorf("value is negative")
		}
		if f.Cmp(claimCapLimit) >= 0 {
			return nil, fmt.Errorf("value exceeds uint256")
		}
		v, _ = f.Int(nil)
		ok = true
	default:
		v, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		return nil, fmt.Errorf("not an integer")
	}

	if v.Sign() < 0 {
		return nil, fmt.Errorf("value is negative")
	}
	if v.BitLen() > maxClaimCapBits {
		return nil, fmt.Errorf("value exceeds uint256")
	}
	return v, nil
}
