package main

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/allocation"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/claims"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/config"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/leaf"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/types"
)

const (
	accountA  = "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA1"
	accountB  = "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB2"
	checksumA = "0xAaAAAaaAAAAAAaaAAAaaaaAaAaAAAAaAAaAaAaA1"
)

func writeClaims(t *testing.T, enc leaf.Encoder, rows []allocation.Row) (string, *types.ClaimsFile) {
	t.Helper()
	file, err := allocation.NewGenerator(enc).Generate(rows)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "claims.json")
	require.NoError(t, claims.Save(path, file))
	return path, file
}

func referralRows() []allocation.Row {
	return []allocation.Row{
		{Address: accountA, ClaimCap: "5", Referral: "alice"},
		{Address: accountA, ClaimCap: "7", Referral: "bob"},
		{Address: accountB, ClaimCap: "1"},
	}
}

func TestAuditFile_AutoVariant(t *testing.T) {
	standardPath, _ := writeClaims(t, leaf.NewStandardEncoder(), []allocation.Row{
		{Address: accountA, ClaimCap: "2"},
		{Address: accountB, ClaimCap: "2"},
	})
	referralPath, _ := writeClaims(t, leaf.NewReferralEncoder(), referralRows())

	for _, path := range []string{standardPath, referralPath} {
		cfg := &config.VerifierConfig{InputPath: path}
		require.NoError(t, cfg.Validate())

		report, err := auditFile(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.True(t, report.Passed(), path)
	}
}

func TestAuditFile_WrongVariant(t *testing.T) {
	path, _ := writeClaims(t, leaf.NewReferralEncoder(), referralRows())

	cfg := &config.VerifierConfig{InputPath: path, Variant: config.VariantStandard}
	require.NoError(t, cfg.Validate())

	report, err := auditFile(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Equal(t, 3, report.FailedEntries)
}

func TestAuditFile_WrongHash(t *testing.T) {
	path, _ := writeClaims(t, leaf.NewReferralEncoder(), referralRows())

	cfg := &config.VerifierConfig{InputPath: path, Hash: config.HashAlgorithm_SHA3256}
	require.NoError(t, cfg.Validate())

	report, err := auditFile(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, report.Passed())
	assert.False(t, report.RootMatches)
}

func TestAuditFile_LogsPerEntry(t *testing.T) {
	enc := leaf.NewStandardEncoder()
	file, err := allocation.NewGenerator(enc).Generate([]allocation.Row{
		{Address: accountA, ClaimCap: "2"},
		{Address: accountB, ClaimCap: "2"},
	})
	require.NoError(t, err)
	file.Claims[checksumA].ClaimCap = types.NewHexAmount(big.NewInt(3))

	path := filepath.Join(t.TempDir(), "claims.json")
	require.NoError(t, claims.Save(path, file))

	core, logs := observer.New(zapcore.InfoLevel)
	cfg := &config.VerifierConfig{InputPath: path}
	require.NoError(t, cfg.Validate())

	report, err := auditFile(cfg, zap.New(core))
	require.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Equal(t, 1, report.FailedEntries)
	assert.False(t, report.RootMatches)

	assert.Equal(t, 1, logs.FilterMessage("Verified proof").Len())
	assert.Equal(t, 1, logs.FilterMessage("Verification failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Failed validation for 1 or more proofs").Len())

	reconciled := logs.FilterMessage("Reconstructed merkle root").All()
	require.Len(t, reconciled, 1)
	assert.Equal(t, false, reconciled[0].ContextMap()["matches"])
	assert.Equal(t, report.AuditID, reconciled[0].ContextMap()["audit_id"])
}

func TestAuditFile_MissingInput(t *testing.T) {
	cfg := &config.VerifierConfig{InputPath: filepath.Join(t.TempDir(), "missing.json")}
	require.NoError(t, cfg.Validate())

	_, err := auditFile(cfg, zap.NewNop())
	require.Error(t, err)
}

func TestApp_ExitCode(t *testing.T) {
	path, file := writeClaims(t, leaf.NewStandardEncoder(), []allocation.Row{
		{Address: accountA, ClaimCap: "2"},
		{Address: accountB, ClaimCap: "2"},
	})

	run := func() error {
		app := newApp()
		app.ExitErrHandler = func(*cli.Context, error) {}
		return app.Run([]string{"verify-merkle-root", "--input", path})
	}

	require.NoError(t, run())

	file.Claims[checksumA].ClaimCap = types.NewHexAmount(big.NewInt(3))
	require.NoError(t, claims.Save(path, file))

	err := run()
	require.Error(t, err)
	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, err.Error(), "1 of 2 claims did not verify")
}
