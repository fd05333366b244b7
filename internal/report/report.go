// Package report builds and writes JSON evidence bundles for CI archival.
package report

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	cyberphone "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/dssim-tools/bitcert/internal/errors"
)

// SchemaVersion identifies the report format.
const SchemaVersion = "bitcert.report/v1"

// Bundle is the machine-consumed comparison output artifact.
type Bundle struct {
	SchemaVersion string  `json:"schema_version"`
	RunID         string  `json:"run_id"`
	CreatedAt     string  `json:"created_at"`
	Tool          Tool    `json:"tool"`
	Ref           Source  `json:"ref"`
	GPU           Source  `json:"gpu"`
	Checks        []Check `json:"checks"`
	IssueCount    int     `json:"issue_count"`
	Passed        bool    `json:"passed"`
}

// Tool identifies the producing binary.
type Tool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Source describes one input record file with its digests.
type Source struct {
	Path            string `json:"path"`
	BLAKE3          string `json:"blake3"`
	CanonicalBLAKE3 string `json:"canonical_blake3,omitempty"`
}

// Check is the outcome of one comparison check.
type Check struct {
	Name   string   `json:"name"`
	Key    string   `json:"key,omitempty"`
	Dtype  string   `json:"dtype,omitempty"`
	Passed bool     `json:"passed"`
	Issues []string `json:"issues"`
}

// New creates a Bundle with identity fields filled in.
func New(version string) *Bundle {
	return &Bundle{
		SchemaVersion: SchemaVersion,
		RunID:         uuid.New().String(),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Tool:          Tool{Name: "bitcert", Version: version},
		Checks:        []Check{},
		Passed:        true,
	}
}

// SetSources records both input files with their digests.
func (b *Bundle) SetSources(refPath string, refData []byte, gpuPath string, gpuData []byte) {
	b.Ref = newSource(refPath, refData)
	b.GPU = newSource(gpuPath, gpuData)
}

func newSource(path string, data []byte) Source {
	s := Source{Path: path, BLAKE3: digest(data)}
	// The raw digest is always present; the canonical digest is best effort.
	if canonical, err := cyberphone.Transform(data); err == nil {
		s.CanonicalBLAKE3 = digest(canonical)
	}
	return s
}

func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ScoreCheck builds the score check entry.
func ScoreCheck(issues []string) Check {
	return Check{Name: "score", Issues: issues}
}

// BufferCheck builds a buffer check entry for one debug_dumps key.
// dtype is the requested element type override, empty when the records
// declare it themselves.
func BufferCheck(key, dtype string, issues []string) Check {
	return Check{Name: "buffer:" + key, Key: key, Dtype: dtype, Issues: issues}
}

// AddCheck appends one check outcome and updates the rollup fields.
func (b *Bundle) AddCheck(c Check) {
	if c.Issues == nil {
		c.Issues = []string{}
	}
	c.Passed = len(c.Issues) == 0
	b.Checks = append(b.Checks, c)
	b.IssueCount += len(c.Issues)
	b.Passed = b.IssueCount == 0
}

// Write marshals the bundle and writes it to path.
func Write(path string, b *Bundle) error {
	if b == nil {
		return errors.New("report bundle is nil")
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "write report file")
	}
	return nil
}

// Load reads a bundle back from disk.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &b, nil
}
