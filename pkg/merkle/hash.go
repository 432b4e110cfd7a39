package merkle

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// HashFunc hashes the concatenation of its inputs into a 32-byte digest.
// The tree, proof and leaf code only ever see its output.
type HashFunc func(data ...[]byte) common.Hash

// Keccak256 is the hash used by EVM verifiers (keccak256 in Solidity).
func Keccak256(data ...[]byte) common.Hash {
	return crypto.Keccak256Hash(data...)
}

// SHA3256 is the FIPS-202 SHA3-256 hash.
func SHA3256(data ...[]byte) common.Hash {
	h := sha3.New256()
	for _, b := range data {
		h.Write(b)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}

// CombinedHash combines two nodes into their parent.
//
// A missing side promotes the other side unchanged; this is how the last node of an odd
// level moves up. Otherwise the two hashes are ordered by unsigned byte value and the
// parent is hash(smaller || larger), so CombinedHash(a, b) == CombinedHash(b, a).
func CombinedHash(hash HashFunc, first, second *common.Hash) common.Hash {
	if first == nil && second == nil {
		return common.Hash{}
	}
	if first == nil {
		return *second
	}
	if second == nil {
		return *first
	}
	return hashPair(hash, *first, *second)
}

// hashPair computes hash(min(a,b) || max(a,b)) for two 32-byte hashes.
func hashPair(hash HashFunc, a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return hash(a[:], b[:])
}
