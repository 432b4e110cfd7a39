package merkle

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyTree is returned when a tree is requested for zero leaves.
var ErrEmptyTree = errors.New("cannot build merkle tree from empty leaf list")

// minParallelPairs is the smallest level (in pairs) worth fanning out to workers.
const minParallelPairs = 256

type buildOptions struct {
	hash        HashFunc
	parallelism int
}

// Option configures BuildMerkleTree.
type Option func(*buildOptions)

// WithHashFunc sets the node hash. Defaults to Keccak256.
func WithHashFunc(hash HashFunc) Option {
	return func(o *buildOptions) {
		if hash != nil {
			o.hash = hash
		}
	}
}

// WithParallelism hashes the pairs of large levels on up to n goroutines.
// Values below 2 build sequentially.
func WithParallelism(n int) Option {
	return func(o *buildOptions) {
		o.parallelism = n
	}
}

// BuildMerkleTree creates a binary merkle tree from leaves.
// Leaves are used in the order given; callers are responsible for canonical ordering.
//
// Consecutive pairs (0,1), (2,3), ... are combined with CombinedHash. If a level has an
// odd number of nodes the last one is promoted to the next level unchanged.
func BuildMerkleTree(leaves []common.Hash, opts ...Option) (*MerkleTree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	o := &buildOptions{hash: Keccak256}
	for _, opt := range opts {
		opt(o)
	}

	leafCopy := make([]common.Hash, len(leaves))
	copy(leafCopy, leaves)

	levels := make([][]common.Hash, 0)
	levels = append(levels, leafCopy)

	currentLevel := leafCopy
	for len(currentLevel) > 1 {
		nextLevel, err := nextLayer(currentLevel, o)
		if err != nil {
			return nil, err
		}
		levels = append(levels, nextLevel)
		currentLevel = nextLevel
	}

	return &MerkleTree{
		Leaves: leafCopy,
		Root:   currentLevel[0],
		levels: levels,
		hash:   o.hash,
	}, nil
}

// nextLayer maps a level onto its parent level, half the size rounded up.
func nextLayer(level []common.Hash, o *buildOptions) ([]common.Hash, error) {
	next := make([]common.Hash, (len(level)+1)/2)

	hashRange := func(from, to int) {
		for p := from; p < to; p++ {
			i := p * 2
			if i+1 < len(level) {
				next[p] = CombinedHash(o.hash, &level[i], &level[i+1])
			} else {
				next[p] = CombinedHash(o.hash, &level[i], nil)
			}
		}
	}

	if o.parallelism < 2 || len(next) < minParallelPairs {
		hashRange(0, len(next))
		return next, nil
	}

	// Each worker writes a disjoint range of next, so no locking is needed.
	chunk := (len(next) + o.parallelism - 1) / o.parallelism
	var g errgroup.Group
	g.SetLimit(o.parallelism)
	for from := 0; from < len(next); from += chunk {
		from, to := from, min(from+chunk, len(next))
		g.Go(func() error {
			hashRange(from, to)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to hash merkle level of %d nodes: %w", len(level), err)
	}
	return next, nil
}

// GenerateProof creates a merkle proof for the leaf at the given index.
// The proof consists of sibling hashes along the path from leaf to root.
func (mt *MerkleTree) GenerateProof(leafIndex int) (*MerkleProof, error) {
	if leafIndex < 0 || leafIndex >= len(mt.Leaves) {
		return nil, fmt.Errorf("leaf index %d out of bounds (tree has %d leaves)", leafIndex, len(mt.Leaves))
	}

	proof := make([]common.Hash, 0, len(mt.levels)-1)
	index := leafIndex

	for level := 0; level < len(mt.levels)-1; level++ {
		currentLevel := mt.levels[level]

		// A node promoted without a partner has no sibling at this level
		if siblingIndex := index ^ 1; siblingIndex < len(currentLevel) {
			proof = append(proof, currentLevel[siblingIndex])
		}

		index = index / 2
	}

	return &MerkleProof{
		LeafIndex: leafIndex,
		Leaf:      mt.Leaves[leafIndex],
		Proof:     proof,
	}, nil
}

// HexProof returns the proof for leafIndex as 0x-prefixed hex strings.
func (mt *MerkleTree) HexProof(leafIndex int) ([]string, error) {
	proof, err := mt.GenerateProof(leafIndex)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(proof.Proof))
	for i, p := range proof.Proof {
		out[i] = p.Hex()
	}
	return out, nil
}

// HexRoot returns the root as a 0x-prefixed hex string.
func (mt *MerkleTree) HexRoot() string {
	return mt.Root.Hex()
}

// Depth returns the number of levels above the leaves.
func (mt *MerkleTree) Depth() int {
	return len(mt.levels) - 1
}

// Level returns a copy of the nodes at the given level, 0 being the leaves.
func (mt *MerkleTree) Level(level int) []common.Hash {
	if level < 0 || level >= len(mt.levels) {
		return nil
	}
	out := make([]common.Hash, len(mt.levels[level]))
	copy(out, mt.levels[level])
	return out
}

// VerifyProof checks the proof against this tree's root using the tree's hash.
func (mt *MerkleTree) VerifyProof(proof *MerkleProof) bool {
	if proof == nil {
		return false
	}
	return VerifyProof(mt.hash, proof.Leaf, proof.Proof, mt.Root)
}

// ProcessProof folds proof into leaf from leaf to root and returns the resulting hash.
func ProcessProof(hash HashFunc, leaf common.Hash, proof []common.Hash) common.Hash {
	if hash == nil {
		hash = Keccak256
	}
	current := leaf
	for i := range proof {
		current = CombinedHash(hash, &current, &proof[i])
	}
	return current
}

// VerifyProof verifies that leaf is included in the tree with the given root.
// Any difference in the recomputed root is a plain false.
func VerifyProof(hash HashFunc, leaf common.Hash, proof []common.Hash, root common.Hash) bool {
	return ProcessProof(hash, leaf, proof) == root
}
