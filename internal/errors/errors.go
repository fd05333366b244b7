// Package errors provides structured error types and exit codes for bitcert.
package errors

import (
	"fmt"
)

// Exit codes form the three-tier outcome contract: a clean pass, a
// comparison that found discrepancies, and a harness failure that
// prevented a verdict. CI must be able to tell the tiers apart.
const (
	ExitSuccess      = 0 // All comparisons matched
	ExitMismatch     = 1 // Discrepancies found
	ExitHarnessError = 2 // Run failed before a verdict (also used for usage errors)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	// KindHarness covers failures that prevent a verdict: unreadable or
	// unparseable records, malformed score fields, unwritable reports.
	KindHarness ErrorKind = iota
	// KindUsage covers invocation mistakes: unknown flags, missing
	// arguments, invalid dtype names.
	KindUsage
)

// BitcertError is the base error type for bitcert.
type BitcertError struct {
	Kind    ErrorKind
	Message string
	Context string // Record side or file the failure concerns, if applicable
	Cause   error  // Underlying error
}

func (e *BitcertError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s", e.Context, e.Message)
	}
	return e.Message
}

func (e *BitcertError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error. Both kinds
// land on the harness tier: neither produced a comparison verdict.
func (e *BitcertError) ExitCode() int {
	return ExitHarnessError
}

// New creates a new harness error.
func New(message string) *BitcertError {
	return &BitcertError{
		Kind:    KindHarness,
		Message: message,
	}
}

// Newf creates a new harness error with formatting.
func Newf(format string, args ...any) *BitcertError {
	return New(fmt.Sprintf(format, args...))
}

// Usage creates a new usage error.
func Usage(message string) *BitcertError {
	return &BitcertError{
		Kind:    KindUsage,
		Message: message,
	}
}

// Usagef creates a new usage error with formatting.
func Usagef(format string, args ...any) *BitcertError {
	return Usage(fmt.Sprintf(format, args...))
}

// Wrap wraps an error as a harness failure with additional context.
func Wrap(err error, message string) *BitcertError {
	return &BitcertError{
		Kind:    KindHarness,
		Message: fmt.Sprintf("%s: %v", message, err),
		Cause:   err,
	}
}

// WithContext wraps an error as a harness failure tagged with the file
// or record side it concerns.
func WithContext(context string, err error) *BitcertError {
	return &BitcertError{
		Kind:    KindHarness,
		Message: err.Error(),
		Context: context,
		Cause:   err,
	}
}

// IsUsage reports whether err is a usage error.
func IsUsage(err error) bool {
	be, ok := err.(*BitcertError)
	return ok && be.Kind == KindUsage
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if be, ok := err.(*BitcertError); ok {
		return be.ExitCode()
	}
	return ExitHarnessError
}
