package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ClaimsFile is the distributable artifact for one distribution.
// It is sufficient for recreating the whole merkle tree: anyone can check that every
// claim is included and that the tree holds nothing else.
type ClaimsFile struct {
	MerkleRoot common.Hash       `json:"merkleRoot"`
	Claims     map[string]*Claim `json:"claims"`
}

// Claim is one entry of a ClaimsFile, keyed by account or account-referral.
type Claim struct {
	Index    uint64        `json:"index"`
	ClaimCap HexAmount     `json:"claimCap"`
	Referral *string       `json:"referral,omitempty"`
	Proof    []common.Hash `json:"proof"`
}

// HexAmount is a non-negative integer of arbitrary size, serialized as lowercase hex
// without a 0x prefix so that values above 2^64 survive the JSON boundary.
type HexAmount struct {
	v *big.Int
}

// NewHexAmount wraps a copy of v.
func NewHexAmount(v *big.Int) HexAmount {
	if v == nil {
		return HexAmount{}
	}
	return HexAmount{v: new(big.Int).Set(v)}
}

// Big returns a copy of the amount. A zero HexAmount is 0.
func (h HexAmount) Big() *big.Int {
	if h.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(h.v)
}

func (h HexAmount) String() string {
	return h.Big().Text(16)
}

// MarshalText implements encoding.TextMarshaler.
func (h HexAmount) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. A 0x prefix is tolerated on input.
func (h *HexAmount) UnmarshalText(text []byte) error {
	s := string(text)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if s == "" {
		return fmt.Errorf("empty hex amount")
	}
	if s[0] == '-' || s[0] == '+' {
		return fmt.Errorf("hex amount must be unsigned: %q", string(text))
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return fmt.Errorf("invalid hex amount: %q", string(text))
	}
	h.v = v
	return nil
}
