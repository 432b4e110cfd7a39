package merkle

import (
	"github.com/ethereum/go-ethereum/common"
)

// MerkleTree represents a binary merkle tree built from allocation leaves.
// Sibling pairs are hashed in sorted order so proofs carry no direction bits.
type MerkleTree struct {
	// Leaves contains the leaf hashes in the order they were supplied
	Leaves []common.Hash

	// Root is the merkle root hash
	Root common.Hash

	// levels stores all tree levels for proof generation
	// levels[0] = leaves, levels[len-1] = root
	levels [][]common.Hash

	hash HashFunc
}

// MerkleProof represents a proof that a leaf is included in the tree.
// The proof consists of sibling hashes along the path from leaf to root.
type MerkleProof struct {
	// LeafIndex is the index of the leaf in the leaves array
	LeafIndex int

	// Leaf is the hash of the leaf being proven
	Leaf common.Hash

	// Proof contains the sibling hashes from leaf to root.
	// Levels where the node was promoted without a partner contribute nothing.
	Proof []common.Hash
}
