package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/leaf"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/merkle"
)

func TestDistributionToVariant(t *testing.T) {
	for _, d := range GetSupportedDistributions() {
		_, ok := DistributionToVariant[d]
		assert.True(t, ok, d)
	}
	assert.Len(t, DistributionToVariant, len(GetSupportedDistributions()))
	assert.Equal(t, VariantReferral, DistributionToVariant[Distribution_PublicReferral])
	assert.Equal(t, VariantStandard, DistributionToVariant[Distribution_Team])
	assert.Contains(t, GetSupportedDistributionsString(), "public-referral (referral)")
}

func TestVariant_Schema(t *testing.T) {
	schema, err := VariantStandard.Schema()
	require.NoError(t, err)
	assert.Equal(t, leaf.StandardSchema, schema)

	schema, err = VariantReferral.Schema()
	require.NoError(t, err)
	assert.True(t, schema.HasReferral())

	_, err = VariantAuto.Schema()
	require.Error(t, err)
}

func TestHashAlgorithm_HashFunc(t *testing.T) {
	data := []byte("claims")

	h, err := HashAlgorithm_Keccak256.HashFunc()
	require.NoError(t, err)
	assert.Equal(t, merkle.Keccak256(data), h(data))

	h, err = HashAlgorithm("").HashFunc()
	require.NoError(t, err)
	assert.Equal(t, merkle.Keccak256(data), h(data))

	h, err = HashAlgorithm_SHA3256.HashFunc()
	require.NoError(t, err)
	assert.Equal(t, merkle.SHA3256(data), h(data))

	_, err = HashAlgorithm("sha256").HashFunc()
	require.Error(t, err)
}

func TestNewEncoder(t *testing.T) {
	enc, err := NewEncoder(VariantReferral, HashAlgorithm_SHA3256)
	require.NoError(t, err)
	assert.True(t, enc.Schema().HasReferral())

	_, err = NewEncoder(VariantAuto, HashAlgorithm_Keccak256)
	require.Error(t, err)
	_, err = NewEncoder(VariantStandard, "md5")
	require.Error(t, err)
}

func TestGeneratorConfig_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         GeneratorConfig
		wantVariant Variant
		wantErrs    []string
	}{
		{
			name:        "distribution resolves variant",
			cfg:         GeneratorConfig{InputPath: "alloc.csv", OutputPath: "claims.json", Distribution: Distribution_PublicReferral},
			wantVariant: VariantReferral,
		},
		{
			name:        "explicit variant",
			cfg:         GeneratorConfig{InputPath: "alloc.yaml", OutputPath: "claims.json", Variant: VariantStandard, Hash: HashAlgorithm_SHA3256, Parallelism: 4},
			wantVariant: VariantStandard,
		},
		{
			name:        "matching variant and distribution",
			cfg:         GeneratorConfig{InputPath: "alloc.json", OutputPath: "claims.json", Variant: VariantStandard, Distribution: Distribution_Team},
			wantVariant: VariantStandard,
		},
		{
			name:     "missing everything",
			cfg:      GeneratorConfig{},
			wantErrs: []string{"inputPath", "outputPath", "variant"},
		},
		{
			name:     "conflicting variant",
			cfg:      GeneratorConfig{InputPath: "alloc.csv", OutputPath: "claims.json", Variant: VariantReferral, Distribution: Distribution_Team},
			wantErrs: []string{"variant"},
		},
		{
			name:     "unknown distribution",
			cfg:      GeneratorConfig{InputPath: "alloc.csv", OutputPath: "claims.json", Distribution: "seed"},
			wantErrs: []string{"distribution"},
		},
		{
			name:     "auto is not a generator variant",
			cfg:      GeneratorConfig{InputPath: "alloc.csv", OutputPath: "claims.json", Variant: VariantAuto},
			wantErrs: []string{"variant"},
		},
		{
			name:     "bad input extension and hash",
			cfg:      GeneratorConfig{InputPath: "alloc.txt", OutputPath: "claims.json", Variant: VariantStandard, Hash: "blake2"},
			wantErrs: []string{"inputPath", "hash"},
		},
		{
			name:     "output overwrites input",
			cfg:      GeneratorConfig{InputPath: "./alloc.json", OutputPath: "alloc.json", Variant: VariantStandard},
			wantErrs: []string{"outputPath"},
		},
		{
			name:     "negative parallelism",
			cfg:      GeneratorConfig{InputPath: "alloc.csv", OutputPath: "claims.json", Variant: VariantStandard, Parallelism: -1},
			wantErrs: []string{"parallelism"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			err := cfg.Validate()
			if len(tc.wantErrs) == 0 {
				require.NoError(t, err)
				assert.Equal(t, tc.wantVariant, cfg.Variant)
				return
			}
			require.Error(t, err)
			for _, want := range tc.wantErrs {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestVerifierConfig_Validate(t *testing.T) {
	cfg := &VerifierConfig{InputPath: "claims.json"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, VariantAuto, cfg.Variant)

	cfg = &VerifierConfig{InputPath: "claims.json", Variant: VariantReferral, Hash: HashAlgorithm_SHA3256}
	require.NoError(t, cfg.Validate())

	cfg = &VerifierConfig{Variant: "legacy", Hash: "crc32"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inputPath")
	assert.Contains(t, err.Error(), "variant")
	assert.Contains(t, err.Error(), "hash")
}
