package main

import (
	"math/big"
	"os"
	"sort"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/allocation"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/claims"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/config"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/types"
)

// Rewrites one claim's claimCap in place without touching any proof, so the verifier
// has something to reject. Usage: CLAIMS_INPUT=claims.json go run ./hack/tamperClaims [key] [claimCap]
func main() {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	path := os.Getenv(config.EnvClaimsInput)
	if path == "" {
		l.Sugar().Fatalf("Environment variable %s is not set", config.EnvClaimsInput)
	}

	file, err := claims.Load(path)
	if err != nil {
		l.Sugar().Fatalf("Failed to load claims file: %v", err)
	}
	if len(file.Claims) == 0 {
		l.Sugar().Fatalf("Claims file %s has no claims", path)
	}

	keys := make([]string, 0, len(file.Claims))
	for key := range file.Claims {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	key := keys[0]
	if len(os.Args) > 1 {
		key = os.Args[1]
	}
	claim, ok := file.Claims[key]
	if !ok || claim == nil {
		l.Sugar().Fatalf("Claim %s not found", key)
	}

	original := claim.ClaimCap.Big()
	tampered := new(big.Int).Add(original, big.NewInt(1))
	if len(os.Args) > 2 {
		tampered, err = allocation.ParseClaimCap(os.Args[2])
		if err != nil {
			l.Sugar().Fatalf("Invalid claimCap %q: %v", os.Args[2], err)
		}
	}
	claim.ClaimCap = types.NewHexAmount(tampered)

	if err := claims.Save(path, file); err != nil {
		l.Sugar().Fatalf("Failed to save claims file: %v", err)
	}
	l.Sugar().Infow("Tampered claim",
		"key", key,
		"index", claim.Index,
		"original_claim_cap", original.String(),
		"claim_cap", tampered.String(),
	)
}
