package allocation

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Row is one raw allocation as supplied by the distribution owner.
type Row struct {
	Address  string    `json:"address" yaml:"address"`
	ClaimCap RawAmount `json:"claimCap" yaml:"claimCap"`
	Referral string    `json:"referral,omitempty" yaml:"referral,omitempty"`
}

// RawAmount is an unparsed claim cap. Input files carry it either as a string (decimal or
// 0x hex) or as a plain number; validation happens in ParseRows.
type RawAmount string

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (a *RawAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = RawAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("claimCap must be a string or a number: %w", err)
	}
	*a = RawAmount(n.String())
	return nil
}

// UnmarshalYAML keeps the scalar text as written, so large integers are not rounded.
func (a *RawAmount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: claimCap must be a scalar", value.Line)
	}
	*a = RawAmount(value.Value)
	return nil
}

// Format is an allocation input encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// FormatFromPath picks the input format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported allocation file extension %q (expected .json, .yaml, .yml or .csv)", filepath.Ext(path))
	}
}

// LoadRows reads raw allocation rows from a JSON, YAML or CSV file.
func LoadRows(path string) ([]Row, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open allocation file %s", path)
	}
	defer func() { _ = f.Close() }()

	rows, err := DecodeRows(f, format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode allocation file %s", path)
	}
	return rows, nil
}

// DecodeRows decodes raw allocation rows in the given format.
//
// JSON and YAML inputs are a list of {address, claimCap, referral} objects. CSV input has a
// header row naming the address and claimCap columns, and optionally referral.
func DecodeRows(r io.Reader, format Format) ([]Row, error) {
	switch format {
	case FormatJSON:
		var rows []Row
		if err := json.NewDecoder(r).Decode(&rows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON allocations: %w", err)
		}
		return rows, nil
	case FormatYAML:
		var rows []Row
		if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
			if err == io.EOF {
				return []Row{}, nil
			}
			return nil, fmt.Errorf("failed to unmarshal YAML allocations: %w", err)
		}
		return rows, nil
	case FormatCSV:
		return decodeCSV(r)
	default:
		return nil, fmt.Errorf("unsupported allocation format %q", format)
	}
}

func decodeCSV(r io.Reader) ([]Row, error) {
	// referral tags are hashed verbatim, so only address and claimCap cells are trimmed
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := map[string]int{"address": -1, "claimcap": -1, "referral": -1}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := columns[key]; ok {
			columns[key] = i
		}
	}
	if columns["address"] < 0 || columns["claimcap"] < 0 {
		return nil, fmt.Errorf("CSV header must contain address and claimCap columns, got %v", header)
	}

	cell := func(record []string, column string) string {
		i := columns[column]
		if i < 0 || i >= len(record) {
			return ""
		}
		return record[i]
	}

	rows := make([]Row, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		rows = append(rows, Row{
			Address:  strings.TrimSpace(cell(record, "address")),
			ClaimCap: RawAmount(strings.TrimSpace(cell(record, "claimcap"))),
			Referral: cell(record, "referral"),
		})
	}
	return rows, nil
}
