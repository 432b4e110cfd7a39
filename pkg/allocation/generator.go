package allocation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/leaf"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/merkle"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/types"
)

// Generator turns raw allocation rows into a claims file.
// It is the only entry point that assigns indices and builds the allocation tree.
type Generator struct {
	encoder     leaf.Encoder
	logger      *zap.Logger
	treeOptions []merkle.Option
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTreeOptions passes options through to merkle.BuildMerkleTree.
// A hash set here is ignored; the tree always uses the encoder's hash.
func WithTreeOptions(opts ...merkle.Option) GeneratorOption {
	return func(g *Generator) {
		g.treeOptions = append(g.treeOptions, opts...)
	}
}

// NewGenerator creates a generator for the encoder's leaf layout.
func NewGenerator(encoder leaf.Encoder, opts ...GeneratorOption) *Generator {
	g := &Generator{
		encoder: encoder,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Distribution is a built allocation tree together with the entries it commits to.
type Distribution struct {
	Entries      []*Entry
	Tree         *merkle.MerkleTree
	WithReferral bool
}

// Root returns the merkle root of the distribution.
func (d *Distribution) Root() common.Hash {
	return d.Tree.Root
}

// ClaimsFile assembles the distributable claims file, one claim per entry with its proof.
func (d *Distribution) ClaimsFile() (*types.ClaimsFile, error) {
	claims := make(map[string]*types.Claim, len(d.Entries))
	for i, entry := range d.Entries {
		proof, err := d.Tree.GenerateProof(i)
		if err != nil {
			return nil, fmt.Errorf("failed to generate proof for %s: %w", entry.Key, err)
		}

		claim := &types.Claim{
			Index:    entry.Index,
			ClaimCap: types.NewHexAmount(entry.Record.ClaimCap),
			Proof:    proof.Proof,
		}
		if d.WithReferral {
			referral := entry.Record.Referral
			claim.Referral = &referral
		}
		claims[entry.Key] = claim
	}

	return &types.ClaimsFile{
		MerkleRoot: d.Tree.Root,
		Claims:     claims,
	}, nil
}

// Build encodes the entries in order and builds their tree.
// Entries must already be in canonical order with Index equal to their position.
func (g *Generator) Build(entries []*Entry) (*Distribution, error) {
	if len(entries) == 0 {
		return nil, ErrNoAllocations
	}

	leaves := make([]common.Hash, len(entries))
	for i, entry := range entries {
		if entry.Index != uint64(i) {
			return nil, fmt.Errorf("entry %s has index %d at position %d", entry.Key, entry.Index, i)
		}
		node, err := g.encoder.Encode(entry.Index, entry.Record)
		if err != nil {
			return nil, fmt.Errorf("failed to encode leaf for %s: %w", entry.Key, err)
		}
		leaves[i] = node
	}

	// nodes are always paired with the leaf hash, whatever the tree options say
	opts := make([]merkle.Option, 0, len(g.treeOptions)+1)
	opts = append(opts, g.treeOptions...)
	opts = append(opts, merkle.WithHashFunc(g.encoder.HashFunc()))
	tree, err := merkle.BuildMerkleTree(leaves, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build merkle tree: %w", err)
	}

	return &Distribution{
		Entries:      entries,
		Tree:         tree,
		WithReferral: g.encoder.Schema().HasReferral(),
	}, nil
}

// Generate validates rows, builds the tree and returns the claims file.
func (g *Generator) Generate(rows []Row) (*types.ClaimsFile, error) {
	withReferral := g.encoder.Schema().HasReferral()

	entries, err := ParseRows(rows, withReferral)
	if err != nil {
		return nil, err
	}
	g.logger.Sugar().Debugw("Validated allocations", "rows", len(rows), "with_referral", withReferral)

	dist, err := g.Build(entries)
	if err != nil {
		return nil, err
	}

	file, err := dist.ClaimsFile()
	if err != nil {
		return nil, err
	}

	g.logger.Sugar().Infow("Generated claims",
		"merkle_root", dist.Root().Hex(),
		"claims", len(file.Claims),
		"depth", dist.Tree.Depth(),
		"schema", g.encoder.Schema().String(),
	)
	return file, nil
}
