package claims

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/Layr-Labs/eigenx-claims-go/pkg/types"
)

// Decode reads a claims file from r.
func Decode(r io.Reader) (*types.ClaimsFile, error) {
	var file types.ClaimsFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claims file: %w", err)
	}
	if file.Claims == nil {
		return nil, fmt.Errorf("claims file has no claims object")
	}
	return &file, nil
}

// Encode writes file to w as indented JSON.
func Encode(w io.Writer, file *types.ClaimsFile) error {
	if file == nil {
		return fmt.Errorf("cannot encode nil claims file")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("failed to marshal claims file: %w", err)
	}
	return nil
}

// Load reads a claims file from disk.
func Load(path string) (*types.ClaimsFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open claims file %s", path)
	}
	defer func() { _ = f.Close() }()

	file, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read claims file %s", path)
	}
	return file, nil
}

// Save writes a claims file to disk, replacing any existing file.
func Save(path string, file *types.ClaimsFile) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to create claims file %s", path)
	}
	if err := Encode(f, file); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write claims file %s", path)
	}
	return f.Close()
}

// HasReferrals reports whether the file belongs to a referral distribution,
// i.e. whether any claim carries a referral tag.
func HasReferrals(file *types.ClaimsFile) bool {
	for _, claim := range file.Claims {
		if claim != nil && claim.Referral != nil {
			return true
		}
	}
	return false
}
