package plan

import (
	"fmt"
	"strings"

	"github.com/dssim-tools/bitcert/pkg/exact"
)

// ValidationError represents a plan validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a plan for errors and returns warnings for non-fatal issues.
// Note: warnings are reserved for future use (deprecated fields, migration hints, etc.)
func Validate(p *Plan) (warnings []string, err error) {
	if p.Version != 0 && p.Version != DefaultVersion {
		return nil, &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported plan version %d (only %d is supported)", p.Version, DefaultVersion),
		}
	}

	if err := validateBuffers(p); err != nil {
		return nil, err
	}

	// A plan that disables the score check and names no buffers checks nothing.
	if !p.ScoreEnabled() && len(p.Buffers) == 0 {
		return nil, &ValidationError{
			Field:   "score",
			Message: "score is disabled and no buffers are listed; the plan verifies nothing",
		}
	}

	return nil, nil
}

func validateBuffers(p *Plan) error {
	seen := make(map[string]bool)
	for i, b := range p.Buffers {
		if b.Key == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("buffers[%d].key", i),
				Message: "is required",
			}
		}
		if seen[b.Key] {
			return &ValidationError{
				Field:   fmt.Sprintf("buffers[%d].key", i),
				Message: fmt.Sprintf("duplicate buffer key %q", b.Key),
			}
		}
		seen[b.Key] = true

		if b.Dtype != "" {
			if _, ok := exact.ParseDType(b.Dtype); !ok {
				return &ValidationError{
					Field:   fmt.Sprintf("buffers[%d].dtype", i),
					Message: fmt.Sprintf("unsupported dtype %q (supported: %s)", b.Dtype, strings.Join(exact.DTypeNames(), ", ")),
				}
			}
		}
	}
	return nil
}
