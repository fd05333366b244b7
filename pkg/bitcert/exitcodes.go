// Package bitcert provides public constants for external tools integrating
// with bitcert.
package bitcert

// Exit codes returned by the bitcert CLI.
// These constants allow CI wrappers to check exit codes symbolically
// rather than using magic numbers.
const (
	// ExitSuccess indicates every comparison matched exactly.
	ExitSuccess = 0

	// ExitMismatch indicates the comparison ran and found discrepancies.
	ExitMismatch = 1

	// ExitHarnessError indicates the run failed before a verdict
	// (unreadable record, malformed score field, usage error, unwritable report).
	ExitHarnessError = 2
)
