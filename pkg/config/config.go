package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/allocation"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/leaf"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/merkle"
)

// Environment variable names for the claims tools
const (
	EnvClaimsInput        = "CLAIMS_INPUT"
	EnvClaimsOutput       = "CLAIMS_OUTPUT"
	EnvClaimsVariant      = "CLAIMS_VARIANT"
	EnvClaimsDistribution = "CLAIMS_DISTRIBUTION"
	EnvClaimsHash         = "CLAIMS_HASH"
	EnvClaimsParallelism  = "CLAIMS_PARALLELISM"
	EnvClaimsVerbose      = "CLAIMS_VERBOSE"
)

// Variant selects the leaf layout of a distribution.
type Variant string

func (v Variant) String() string {
	return string(v)
}

const (
	VariantStandard Variant = "standard"
	VariantReferral Variant = "referral"
	// VariantAuto is only meaningful when verifying: the layout is taken from the file itself
	VariantAuto Variant = "auto"
)

// Schema returns the leaf schema for the variant.
func (v Variant) Schema() (leaf.Schema, error) {
	switch v {
	case VariantStandard:
		return leaf.StandardSchema, nil
	case VariantReferral:
		return leaf.ReferralSchema, nil
	default:
		return nil, fmt.Errorf("variant %q has no fixed leaf schema", v)
	}
}

// Distribution names a concrete allocation round.
type Distribution string

func (d Distribution) String() string {
	return string(d)
}

const (
	Distribution_Team             Distribution = "team"
	Distribution_FriendsAndFamily Distribution = "friends-and-family"
	Distribution_EarlyAccess      Distribution = "early-access"
	Distribution_Public           Distribution = "public"
	Distribution_PublicReferral   Distribution = "public-referral"
)

var DistributionToVariant = map[Distribution]Variant{
	Distribution_Team:             VariantStandard,
	Distribution_FriendsAndFamily: VariantStandard,
	Distribution_EarlyAccess:      VariantStandard,
	Distribution_Public:           VariantStandard,
	Distribution_PublicReferral:   VariantReferral,
}

// GetSupportedDistributions returns all distributions in a stable order
func GetSupportedDistributions() []Distribution {
	return []Distribution{
		Distribution_Team,
		Distribution_FriendsAndFamily,
		Distribution_EarlyAccess,
		Distribution_Public,
		Distribution_PublicReferral,
	}
}

// GetSupportedDistributionsString returns supported distributions for CLI help
func GetSupportedDistributionsString() string {
	names := make([]string, 0, len(DistributionToVariant))
	for _, d := range GetSupportedDistributions() {
		names = append(names, fmt.Sprintf("%s (%s)", d, DistributionToVariant[d]))
	}
	return strings.Join(names, ", ")
}

// HashAlgorithm selects the 256-bit hash used for leaves and nodes.
type HashAlgorithm string

func (h HashAlgorithm) String() string {
	return string(h)
}

const (
	HashAlgorithm_Keccak256 HashAlgorithm = "keccak256"
	HashAlgorithm_SHA3256   HashAlgorithm = "sha3-256"
)

func (h HashAlgorithm) HashFunc() (merkle.HashFunc, error) {
	switch h {
	case HashAlgorithm_Keccak256, "":
		return merkle.Keccak256, nil
	case HashAlgorithm_SHA3256:
		return merkle.SHA3256, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", h)
	}
}

// NewEncoder builds the leaf encoder for a fixed variant and hash algorithm.
func NewEncoder(variant Variant, hash HashAlgorithm) (*leaf.PackedEncoder, error) {
	schema, err := variant.Schema()
	if err != nil {
		return nil, err
	}
	hashFunc, err := hash.HashFunc()
	if err != nil {
		return nil, err
	}
	return leaf.NewPackedEncoder(schema, hashFunc)
}

// GeneratorConfig is the configuration of the claims generator
type GeneratorConfig struct {
	InputPath  string `json:"input_path" yaml:"inputPath"`
	OutputPath string `json:"output_path" yaml:"outputPath"`

	// Exactly one of Variant and Distribution is required; Distribution implies its variant
	Variant      Variant      `json:"variant,omitempty" yaml:"variant,omitempty"`
	Distribution Distribution `json:"distribution,omitempty" yaml:"distribution,omitempty"`

	Hash        HashAlgorithm `json:"hash" yaml:"hash"`
	Parallelism int           `json:"parallelism" yaml:"parallelism"`

	Debug bool `json:"debug" yaml:"debug"`
}

// Validate checks the generator configuration and resolves Variant from Distribution.
func (c *GeneratorConfig) Validate() error {
	var allErrors field.ErrorList

	if c.InputPath == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("inputPath"), "input path is required"))
	} else if _, err := allocation.FormatFromPath(c.InputPath); err != nil {
		allErrors = append(allErrors, field.Invalid(field.NewPath("inputPath"), c.InputPath, err.Error()))
	}
	if c.OutputPath == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("outputPath"), "output path is required"))
	} else if c.InputPath != "" && filepath.Clean(c.InputPath) == filepath.Clean(c.OutputPath) {
		allErrors = append(allErrors, field.Invalid(field.NewPath("outputPath"), c.OutputPath, "output would overwrite the input"))
	}

	switch {
	case c.Distribution != "":
		variant, ok := DistributionToVariant[c.Distribution]
		if !ok {
			allErrors = append(allErrors, field.NotSupported(field.NewPath("distribution"), c.Distribution, distributionNames()))
		} else if c.Variant != "" && c.Variant != variant {
			allErrors = append(allErrors, field.Invalid(field.NewPath("variant"), c.Variant,
				fmt.Sprintf("distribution %s uses the %s variant", c.Distribution, variant)))
		} else {
			c.Variant = variant
		}
	case c.Variant == "":
		allErrors = append(allErrors, field.Required(field.NewPath("variant"), "variant or distribution is required"))
	case c.Variant != VariantStandard && c.Variant != VariantReferral:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("variant"), c.Variant,
			[]string{VariantStandard.String(), VariantReferral.String()}))
	}

	if _, err := c.Hash.HashFunc(); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("hash"), c.Hash, hashNames()))
	}
	if c.Parallelism < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("parallelism"), c.Parallelism, "must not be negative"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// VerifierConfig is the configuration of the merkle root verifier
type VerifierConfig struct {
	InputPath string        `json:"input_path" yaml:"inputPath"`
	Variant   Variant       `json:"variant" yaml:"variant"`
	Hash      HashAlgorithm `json:"hash" yaml:"hash"`
	Debug     bool          `json:"debug" yaml:"debug"`
}

// Validate checks the verifier configuration. An empty Variant means VariantAuto.
func (c *VerifierConfig) Validate() error {
	var allErrors field.ErrorList

	if c.InputPath == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("inputPath"), "input path is required"))
	}

	if c.Variant == "" {
		c.Variant = VariantAuto
	}
	switch c.Variant {
	case VariantStandard, VariantReferral, VariantAuto:
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("variant"), c.Variant,
			[]string{VariantAuto.String(), VariantStandard.String(), VariantReferral.String()}))
	}

	if _, err := c.Hash.HashFunc(); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("hash"), c.Hash, hashNames()))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func distributionNames() []string {
	out := make([]string, 0, len(DistributionToVariant))
	for _, d := range GetSupportedDistributions() {
		out = append(out, d.String())
	}
	return out
}

func hashNames() []string {
	return []string{HashAlgorithm_Keccak256.String(), HashAlgorithm_SHA3256.String()}
}
