package types

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexAmount_Marshal(t *testing.T) {
	huge, ok := new(big.Int).SetString("340282366920938463463374607431768211457", 10) // 2^128 + 1
	require.True(t, ok)

	testCases := []struct {
		name     string
		value    *big.Int
		expected string
	}{
		{"zero", big.NewInt(0), "0"},
		{"nil", nil, "0"},
		{"small", big.NewInt(2), "2"},
		{"lowercase", big.NewInt(0xabcdef), "abcdef"},
		{"beyond uint64", huge, "100000000000000000000000000000001"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := json.Marshal(NewHexAmount(tc.value))
			require.NoError(t, err)
			assert.Equal(t, `"`+tc.expected+`"`, string(out))
		})
	}
}

func TestHexAmount_Unmarshal(t *testing.T) {
	var h HexAmount
	require.NoError(t, json.Unmarshal([]byte(`"ff"`), &h))
	assert.Equal(t, big.NewInt(255), h.Big())

	require.NoError(t, json.Unmarshal([]byte(`"0xFF"`), &h))
	assert.Equal(t, big.NewInt(255), h.Big())

	require.NoError(t, json.Unmarshal([]byte(`"0X1f"`), &h))
	assert.Equal(t, big.NewInt(31), h.Big())

	for _, bad := range []string{`""`, `"-1"`, `"+1"`, `"zz"`, `"0x"`, `"0x0X1f"`, `"0X0x1f"`, `"0x0x1f"`} {
		assert.Error(t, json.Unmarshal([]byte(bad), &h), bad)
	}
}

func TestHexAmount_CopiesValue(t *testing.T) {
	v := big.NewInt(10)
	h := NewHexAmount(v)
	v.SetInt64(11)
	assert.Equal(t, big.NewInt(10), h.Big())

	h.Big().SetInt64(12)
	assert.Equal(t, big.NewInt(10), h.Big())
}

func TestClaimsFile_JSONShape(t *testing.T) {
	referral := "alice"
	file := &ClaimsFile{
		MerkleRoot: common.HexToHash("0x01"),
		Claims: map[string]*Claim{
			"0x00000000000000000000000000000000000000AA-alice": {
				Index:    0,
				ClaimCap: NewHexAmount(big.NewInt(26)),
				Referral: &referral,
				Proof:    []common.Hash{},
			},
		},
	}

	out, err := json.Marshal(file)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"merkleRoot": "0x0000000000000000000000000000000000000000000000000000000000000001",
		"claims": {
			"0x00000000000000000000000000000000000000AA-alice": {
				"index": 0,
				"claimCap": "1a",
				"referral": "alice",
				"proof": []
			}
		}
	}`, string(out))

	var decoded ClaimsFile
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, file.MerkleRoot, decoded.MerkleRoot)
	claim := decoded.Claims["0x00000000000000000000000000000000000000AA-alice"]
	require.NotNil(t, claim)
	assert.Equal(t, big.NewInt(26), claim.ClaimCap.Big())
	require.NotNil(t, claim.Referral)
	assert.Equal(t, "alice", *claim.Referral)
}

func TestClaimsFile_StandardOmitsReferral(t *testing.T) {
	out, err := json.Marshal(&Claim{Index: 3, ClaimCap: NewHexAmount(big.NewInt(1)), Proof: []common.Hash{}})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "referral")
}

func TestAllocationRecord_Key(t *testing.T) {
	rec := &AllocationRecord{
		Account:  common.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"),
		ClaimCap: big.NewInt(1),
		Referral: "Bob",
	}

	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", rec.Key(false))
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed-Bob", rec.Key(true))

	rec.Referral = ""
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed-", rec.Key(true))
}
