// Package plan provides loading and validation for YAML verification plans.
package plan

import (
	"os"

	"github.com/dssim-tools/bitcert/internal/errors"
)

// Load reads and parses a verification plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read plan file")
	}

	p, _, err := LoadWithWarnings(data)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// LoadAndValidate reads a plan file, applies defaults, validates, and returns warnings.
func LoadAndValidate(path string) (*Plan, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read plan file")
	}

	p, unknownWarnings, err := LoadWithWarnings(data)
	if err != nil {
		return nil, nil, err
	}

	applyDefaults(p)

	validationWarnings, err := Validate(p)

	// Combine warnings from both sources.
	allWarnings := make([]string, 0, len(unknownWarnings)+len(validationWarnings))
	allWarnings = append(allWarnings, unknownWarnings...)
	allWarnings = append(allWarnings, validationWarnings...)

	if err != nil {
		return nil, allWarnings, err
	}

	return p, allWarnings, nil
}
