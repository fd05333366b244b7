package exact

import "fmt"

// Report is an ordered list of discrepancy descriptions accumulated by a
// comparison pass. An empty report is the sole pass condition; ordering
// matters for readability, not for the verdict.
type Report []string

// Add appends a formatted discrepancy entry.
func (r *Report) Add(format string, args ...any) {
	*r = append(*r, fmt.Sprintf(format, args...))
}

// Passed reports whether the comparison found no discrepancies.
func (r Report) Passed() bool {
	return len(r) == 0
}
