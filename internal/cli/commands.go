package cli

import (
	"os"

	"github.com/dssim-tools/bitcert/internal/errors"
	"github.com/dssim-tools/bitcert/internal/output"
	"github.com/dssim-tools/bitcert/internal/report"
	"github.com/dssim-tools/bitcert/pkg/exact"
)

// out is the shared output writer for CLI commands.
var out = output.New()

// Help text alignment widths for consistent formatting.
const (
	helpFlagWidthShort   = 10 // Width for short flags like "-h, --help"
	helpFlagWidthGlobal  = 14 // Width for global flags like "--no-color"
	helpFlagWidthCommand = 22 // Width for command flags like "--buffer-dtype <type>"
	helpCommandWidth     = 20 // Width for command names in the command list
)

// applyOutputOptions configures the output writer based on global flags.
func applyOutputOptions(opts *GlobalOptions) {
	out.SetQuiet(opts.Quiet)
	if opts.NoColor {
		out.SetColor(false)
	}
}

// loadRecordFile reads and parses one record file, keeping the raw bytes
// for evidence digests. Failures come back as harness errors so callers
// map them to the right exit tier.
func loadRecordFile(path string) ([]byte, *exact.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read record file")
	}
	rec, err := exact.ParseRecord(data)
	if err != nil {
		return nil, nil, errors.WithContext(path, err)
	}
	return data, rec, nil
}

// newBundle creates an evidence bundle covering both input files.
func newBundle(refPath string, refData []byte, gpuPath string, gpuData []byte) *report.Bundle {
	b := report.New(Version)
	b.SetSources(refPath, refData, gpuPath, gpuData)
	return b
}

// writeBundle writes the evidence bundle when a report path was requested.
// A write failure is a harness error regardless of the comparison verdict.
func writeBundle(path string, b *report.Bundle) int {
	if path == "" {
		return 0
	}
	if err := report.Write(path, b); err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	out.Info("Report written to %s", path)
	return 0
}

// printOutcome prints the final verdict for a combined report and returns
// the exit code for it.
func printOutcome(r exact.Report) int {
	if r.Passed() {
		out.Success("PASS: outputs match exactly.")
		return errors.ExitSuccess
	}
	out.Failure("FAIL:")
	for _, entry := range r {
		out.Issue(entry)
	}
	return errors.ExitMismatch
}
