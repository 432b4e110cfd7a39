package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/allocation"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/claims"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/config"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/merkle"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/types"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "claims-generator",
		Usage: "Build a merkle claims file from an allocation list",
		Description: `Reads an allocation list (JSON, YAML or CSV with address, claimCap and optional referral columns),
validates every row, orders the allocations canonically and writes the claims file: the merkle root plus
each claim's index, claimCap and proof.

Supported distributions: ` + config.GetSupportedDistributionsString(),
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Allocation list (.json, .yaml, .yml or .csv)",
				EnvVars:  []string{config.EnvClaimsInput},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Path of the claims file to write",
				EnvVars:  []string{config.EnvClaimsOutput},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "variant",
				Usage:   "Leaf layout: standard or referral",
				EnvVars: []string{config.EnvClaimsVariant},
			},
			&cli.StringFlag{
				Name:    "distribution",
				Aliases: []string{"d"},
				Usage:   "Distribution name, implies the variant",
				EnvVars: []string{config.EnvClaimsDistribution},
			},
			&cli.StringFlag{
				Name:    "hash",
				Usage:   "Hash algorithm: keccak256 or sha3-256",
				Value:   config.HashAlgorithm_Keccak256.String(),
				EnvVars: []string{config.EnvClaimsHash},
			},
			&cli.IntFlag{
				Name:    "parallelism",
				Usage:   "Goroutines used to hash large tree levels (0 or 1 builds sequentially)",
				EnvVars: []string{config.EnvClaimsParallelism},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvClaimsVerbose},
			},
		},
		Action: runGenerator,
	}
}

func runGenerator(c *cli.Context) error {
	cfg := &config.GeneratorConfig{
		InputPath:    c.String("input"),
		OutputPath:   c.String("output"),
		Variant:      config.Variant(c.String("variant")),
		Distribution: config.Distribution(c.String("distribution")),
		Hash:         config.HashAlgorithm(c.String("hash")),
		Parallelism:  c.Int("parallelism"),
		Debug:        c.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	file, err := generateClaims(cfg, l)
	if err != nil {
		return err
	}

	l.Sugar().Infow("Wrote claims file",
		"output", cfg.OutputPath,
		"merkle_root", file.MerkleRoot.Hex(),
		"claims", len(file.Claims),
	)
	return nil
}

// generateClaims runs a validated config end to end: load rows, build the tree, write the file.
func generateClaims(cfg *config.GeneratorConfig, l *zap.Logger) (*types.ClaimsFile, error) {
	encoder, err := config.NewEncoder(cfg.Variant, cfg.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to create leaf encoder: %w", err)
	}

	rows, err := allocation.LoadRows(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	l.Sugar().Infow("Loaded allocations",
		"input", cfg.InputPath,
		"rows", len(rows),
		"variant", cfg.Variant,
		"distribution", cfg.Distribution,
		"hash", cfg.Hash,
	)

	generator := allocation.NewGenerator(encoder,
		allocation.WithLogger(l),
		allocation.WithTreeOptions(merkle.WithParallelism(cfg.Parallelism)),
	)
	file, err := generator.Generate(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to generate claims: %w", err)
	}

	if err := claims.Save(cfg.OutputPath, file); err != nil {
		return nil, err
	}
	return file, nil
}
