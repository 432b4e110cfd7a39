package claims

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/leaf"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/merkle"
	"github.com/Layr-Labs/eigenx-claims-go/pkg/types"
)

// VerifyProof recomputes the leaf for (index, rec), folds the proof into it and compares the
// result with root. Records that cannot be encoded never verify.
func VerifyProof(encoder leaf.Encoder, index uint64, rec *types.AllocationRecord, proof []common.Hash, root common.Hash) bool {
	node, err := encoder.Encode(index, rec)
	if err != nil {
		return false
	}
	return merkle.VerifyProof(encoder.HashFunc(), node, proof, root)
}

// ParseClaimKey splits a claims key into its account and referral tag.
// Standard keys are a bare address; referral keys are address + "-" + tag, where the tag
// may itself contain "-".
func ParseClaimKey(key string, withReferral bool) (common.Address, string, error) {
	const addressLength = 2 + 2*common.AddressLength

	addr, rest := key, ""
	if withReferral {
		if len(key) < addressLength+len(types.ClaimKeySeparator) ||
			!strings.HasPrefix(key[addressLength:], types.ClaimKeySeparator) {
			return common.Address{}, "", fmt.Errorf("claim key %q is not of the form <address>%s<referral>", key, types.ClaimKeySeparator)
		}
		addr, rest = key[:addressLength], key[addressLength+len(types.ClaimKeySeparator):]
	}

	if !strings.HasPrefix(addr, "0x") || !common.IsHexAddress(addr) {
		return common.Address{}, "", fmt.Errorf("claim key %q does not start with a 0x address", key)
	}
	return common.HexToAddress(addr), rest, nil
}

// claimRecord rebuilds the raw allocation behind one claim.
func claimRecord(key string, claim *types.Claim, withReferral bool) (*types.AllocationRecord, error) {
	if claim == nil {
		return nil, fmt.Errorf("claim %s is empty", key)
	}

	account, referral, err := ParseClaimKey(key, withReferral)
	if err != nil {
		return nil, err
	}
	if withReferral && claim.Referral != nil && *claim.Referral != referral {
		return nil, fmt.Errorf("claim %s: referral %q does not match key", key, *claim.Referral)
	}

	return &types.AllocationRecord{
		Account:  account,
		ClaimCap: claim.ClaimCap.Big(),
		Referral: referral,
	}, nil
}

// Auditor re-verifies a distributed claims file without any state from its generation.
type Auditor struct {
	encoder leaf.Encoder
	logger  *zap.Logger
}

// NewAuditor creates an auditor for files produced with the encoder's leaf layout.
func NewAuditor(encoder leaf.Encoder, l *zap.Logger) *Auditor {
	if l == nil {
		l = zap.NewNop()
	}
	return &Auditor{encoder: encoder, logger: l}
}

// EntryResult is the per-claim outcome of an audit.
type EntryResult struct {
	Key      string
	Index    uint64
	Verified bool
	// Err is set when the claim could not be decoded at all
	Err error
}

// AuditReport summarises both audit checks for one claims file.
type AuditReport struct {
	AuditID           string
	ExpectedRoot      common.Hash
	ReconstructedRoot common.Hash
	Entries           []EntryResult
	FailedEntries     int
	RootMatches       bool
	// ReconcileErr is set when the tree could not be rebuilt from the file
	ReconcileErr error
}

// Passed is true only when every proof verified and the rebuilt root matches.
func (r *AuditReport) Passed() bool {
	return r.FailedEntries == 0 && r.RootMatches && r.ReconcileErr == nil
}

// VerifyClaim checks one claim's stored proof against root.
func (a *Auditor) VerifyClaim(key string, claim *types.Claim, root common.Hash) (bool, error) {
	rec, err := claimRecord(key, claim, a.encoder.Schema().HasReferral())
	if err != nil {
		return false, err
	}
	return VerifyProof(a.encoder, claim.Index, rec, claim.Proof, root), nil
}

// ReconcileRoot rebuilds the whole tree from the raw fields of every claim, ignoring the
// stored proofs, and returns its root.
//
// Claims are put in canonical key order and encoded with their stored index, exactly as the
// generator does. A file that verifies claim by claim can still fail here (an extra or missing
// claim), and a file whose proofs were altered consistently can still pass here: the two checks
// are complementary.
func (a *Auditor) ReconcileRoot(file *types.ClaimsFile) (common.Hash, error) {
	if file == nil {
		return common.Hash{}, fmt.Errorf("cannot reconcile nil claims file")
	}
	withReferral := a.encoder.Schema().HasReferral()

	type indexedRecord struct {
		key   string
		index uint64
		rec   *types.AllocationRecord
	}
	records := make([]indexedRecord, 0, len(file.Claims))
	for key, claim := range file.Claims {
		rec, err := claimRecord(key, claim, withReferral)
		if err != nil {
			return common.Hash{}, err
		}
		records = append(records, indexedRecord{
			key:   rec.Key(withReferral),
			index: claim.Index,
			rec:   rec,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].key < records[j].key
	})

	leaves := make([]common.Hash, len(records))
	for i, r := range records {
		node, err := a.encoder.Encode(r.index, r.rec)
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to encode leaf for %s: %w", r.key, err)
		}
		leaves[i] = node
	}

	tree, err := merkle.BuildMerkleTree(leaves, merkle.WithHashFunc(a.encoder.HashFunc()))
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to rebuild merkle tree: %w", err)
	}
	return tree.Root, nil
}

// Audit verifies every claim's proof against the file's root, then rebuilds the root from
// scratch and compares it. Results are logged per claim and returned as a report.
func (a *Auditor) Audit(file *types.ClaimsFile) (*AuditReport, error) {
	if file == nil {
		return nil, fmt.Errorf("cannot audit nil claims file")
	}

	report := &AuditReport{
		AuditID:      uuid.New().String(),
		ExpectedRoot: file.MerkleRoot,
		Entries:      make([]EntryResult, 0, len(file.Claims)),
	}
	l := a.logger.Sugar().With("audit_id", report.AuditID)

	keys := make([]string, 0, len(file.Claims))
	for key := range file.Claims {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		claim := file.Claims[key]
		result := EntryResult{Key: key}
		if claim != nil {
			result.Index = claim.Index
		}

		result.Verified, result.Err = a.VerifyClaim(key, claim, file.MerkleRoot)
		if result.Verified {
			l.Infow("Verified proof", "index", result.Index, "key", key)
		} else {
			report.FailedEntries++
			if result.Err != nil {
				l.Warnw("Verification failed", "index", result.Index, "key", key, "error", result.Err)
			} else {
				l.Warnw("Verification failed", "index", result.Index, "key", key)
			}
		}
		report.Entries = append(report.Entries, result)
	}

	if report.FailedEntries > 0 {
		l.Errorw("Failed validation for 1 or more proofs", "failed", report.FailedEntries, "total", len(keys))
	}

	root, err := a.ReconcileRoot(file)
	if err != nil {
		report.ReconcileErr = err
		l.Errorw("Failed to reconstruct merkle root", "error", err)
		return report, nil
	}
	report.ReconstructedRoot = root
	report.RootMatches = root == file.MerkleRoot

	l.Infow("Reconstructed merkle root",
		"reconstructed_root", root.Hex(),
		"merkle_root", file.MerkleRoot.Hex(),
		"matches", report.RootMatches,
	)
	return report, nil
}
