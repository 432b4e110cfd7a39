package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/claims"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/config"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "verify-merkle-root",
		Usage: "Audit a distributed claims file",
		Description: `Checks every claim's proof against the file's merkle root, then rebuilds the tree from the
raw claim fields alone and compares the two roots.

Exits non-zero if any claim fails to verify or the rebuilt root differs.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Claims file to audit",
				EnvVars:  []string{config.EnvClaimsInput},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "variant",
				Usage:   "Leaf layout: auto, standard or referral",
				Value:   config.VariantAuto.String(),
				EnvVars: []string{config.EnvClaimsVariant},
			},
			&cli.StringFlag{
				Name:    "hash",
				Usage:   "Hash algorithm: keccak256 or sha3-256",
				Value:   config.HashAlgorithm_Keccak256.String(),
				EnvVars: []string{config.EnvClaimsHash},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvClaimsVerbose},
			},
		},
		Action: runVerifier,
	}
}

func runVerifier(c *cli.Context) error {
	cfg := &config.VerifierConfig{
		InputPath: c.String("input"),
		Variant:   config.Variant(c.String("variant")),
		Hash:      config.HashAlgorithm(c.String("hash")),
		Debug:     c.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	report, err := auditFile(cfg, l)
	if err != nil {
		return err
	}
	if !report.Passed() {
		return cli.Exit(fmt.Sprintf("audit %s failed: %d of %d claims did not verify, root matches: %v",
			report.AuditID, report.FailedEntries, len(report.Entries), report.RootMatches), 1)
	}
	return nil
}

// auditFile loads the claims file, resolves its variant and runs both audit checks.
func auditFile(cfg *config.VerifierConfig, l *zap.Logger) (*claims.AuditReport, error) {
	file, err := claims.Load(cfg.InputPath)
	if err != nil {
		return nil, err
	}

	variant := cfg.Variant
	if variant == config.VariantAuto {
		variant = config.VariantStandard
		if claims.HasReferrals(file) {
			variant = config.VariantReferral
		}
	}

	encoder, err := config.NewEncoder(variant, cfg.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to create leaf encoder: %w", err)
	}

	l.Sugar().Infow("Auditing claims file",
		"input", cfg.InputPath,
		"variant", variant,
		"hash", cfg.Hash,
		"claims", len(file.Claims),
		"merkle_root", file.MerkleRoot.Hex(),
	)
	return claims.NewAuditor(encoder, l).Audit(file)
}
