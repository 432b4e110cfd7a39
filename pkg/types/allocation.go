package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ClaimKeySeparator joins the account and referral tag in referral distribution keys.
const ClaimKeySeparator = "-"

// AllocationRecord is one validated entitlement to claim.
// Records are produced by the allocation parser and never mutated afterwards.
type AllocationRecord struct {
	Account  common.Address
	ClaimCap *big.Int
	// Referral is hashed verbatim (case-sensitive, not normalized). Only referral distributions use it.
	Referral string
}

// Key returns the canonical claims key for the record: the EIP-55 checksummed account,
// followed by "-" and the referral tag when withReferral is set.
func (r *AllocationRecord) Key(withReferral bool) string {
	return ClaimKey(r.Account, r.Referral, withReferral)
}

// ClaimKey builds a claims key from its parts.
func ClaimKey(account common.Address, referral string, withReferral bool) string {
	if !withReferral {
		return account.Hex()
	}
	return account.Hex() + ClaimKeySeparator + referral
}
