package claims

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/types"
)

func FuzzParseClaimKey(f *testing.F) {
	f.Add(checksumA, false)
	f.Add(checksumA+"-alice", true)
	f.Add(checksumA+"-", true)
	f.Add(checksumA+"-a-b", true)
	f.Add("0x1234-alice", true)
	f.Add("", true)

	f.Fuzz(func(t *testing.T, key string, withReferral bool) {
		account, referral, err := ParseClaimKey(key, withReferral)
		if err != nil {
			return
		}

		rebuilt := types.ClaimKey(account, referral, withReferral)
		require.Len(t, rebuilt, len(key))
		require.True(t, strings.EqualFold(key[:42], rebuilt[:42]))
		require.Equal(t, key[42:], rebuilt[42:])
	})
}
