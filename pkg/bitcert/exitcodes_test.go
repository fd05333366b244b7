package bitcert_test

import (
	"testing"

	"github.com/dssim-tools/bitcert/internal/errors"
	"github.com/dssim-tools/bitcert/pkg/bitcert"
)

// TestExitCodeValues verifies that exit code constants have the documented
// three-tier values.
func TestExitCodeValues(t *testing.T) {
	tests := []struct {
		name     string
		constant int
		expected int
	}{
		{"ExitSuccess", bitcert.ExitSuccess, 0},
		{"ExitMismatch", bitcert.ExitMismatch, 1},
		{"ExitHarnessError", bitcert.ExitHarnessError, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("bitcert.%s = %d, want %d", tt.name, tt.constant, tt.expected)
			}
		})
	}
}

// TestExitCodeConsistency verifies that public exit code constants match
// the internal errors package constants. This prevents drift between
// the public API and internal implementation.
func TestExitCodeConsistency(t *testing.T) {
	tests := []struct {
		name     string
		public   int
		internal int
	}{
		{"Success", bitcert.ExitSuccess, errors.ExitSuccess},
		{"Mismatch", bitcert.ExitMismatch, errors.ExitMismatch},
		{"HarnessError", bitcert.ExitHarnessError, errors.ExitHarnessError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.public != tt.internal {
				t.Errorf("exit code mismatch: bitcert constant = %d, errors constant = %d",
					tt.public, tt.internal)
			}
		})
	}
}
