package cli

import (
	"strings"

	"github.com/dssim-tools/bitcert/internal/errors"
	"github.com/dssim-tools/bitcert/internal/output"
	"github.com/dssim-tools/bitcert/internal/report"
	"github.com/dssim-tools/bitcert/pkg/exact"
)

// compareOptions holds parsed compare command flags.
type compareOptions struct {
	bufferKey   string
	bufferDtype string
	bufferOnly  bool
	reportPath  string
}

// cmdCompare compares a reference record against a GPU record.
func cmdCompare(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printCompareUsage()
		return errors.ExitSuccess
	}

	cOpts, paths, err := parseCompareFlags(args)
	if err != nil {
		out.ErrorPrefix("compare: %v", err)
		out.Hint("Run 'bitcert help compare' for usage.")
		return errors.GetExitCode(err)
	}
	if len(paths) != 2 {
		out.ErrorPrefix("compare: expected <ref.json> and <gpu.json>, got %d argument(s)", len(paths))
		out.Hint("Run 'bitcert help compare' for usage.")
		return errors.ExitHarnessError
	}

	var force exact.DType
	if cOpts.bufferDtype != "" {
		dt, ok := exact.ParseDType(cOpts.bufferDtype)
		if !ok {
			be := errors.Usagef("compare: unsupported dtype %q (supported: %s)",
				cOpts.bufferDtype, strings.Join(exact.DTypeNames(), ", "))
			out.ErrorPrefix("%v", be)
			return errors.GetExitCode(be)
		}
		force = dt
	}

	refPath, gpuPath := paths[0], paths[1]
	refData, ref, err := loadRecordFile(refPath)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	gpuData, gpu, err := loadRecordFile(gpuPath)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	bundle := newBundle(refPath, refData, gpuPath, gpuData)

	var combined exact.Report

	// Skipping the score comparison without naming a buffer would make the
	// run vacuous, so the combination itself is a reported discrepancy
	// rather than a usage crash.
	if cOpts.bufferOnly && cOpts.bufferKey == "" {
		combined.Add("--buffer-only requires --buffer-key")
		bundle.AddCheck(report.Check{Name: "config", Issues: combined})
	}

	if !cOpts.bufferOnly {
		scoreReport, err := exact.CompareScores(ref, gpu)
		if err != nil {
			out.ErrorPrefix("%v", err)
			return errors.ExitHarnessError
		}
		combined = append(combined, scoreReport...)
		bundle.AddCheck(report.ScoreCheck(scoreReport))
	}

	if cOpts.bufferKey != "" {
		bufReport := exact.CompareBuffer(ref, gpu, cOpts.bufferKey, force)
		combined = append(combined, bufReport...)
		bundle.AddCheck(report.BufferCheck(cOpts.bufferKey, cOpts.bufferDtype, bufReport))
	}

	exitCode := printOutcome(combined)
	if code := writeBundle(cOpts.reportPath, bundle); code != 0 {
		return code
	}
	return exitCode
}

// parseCompareFlags parses compare-specific flags, returning the remaining
// positional arguments (the two record paths).
func parseCompareFlags(args []string) (*compareOptions, []string, error) {
	opts := &compareOptions{}
	var paths []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "--buffer-key":
			if i+1 >= len(args) {
				return nil, nil, errors.Usage("--buffer-key requires a value")
			}
			opts.bufferKey = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "--buffer-key="):
			opts.bufferKey = strings.TrimPrefix(arg, "--buffer-key=")
			i++
		case arg == "--buffer-dtype":
			if i+1 >= len(args) {
				return nil, nil, errors.Usage("--buffer-dtype requires a value")
			}
			opts.bufferDtype = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "--buffer-dtype="):
			opts.bufferDtype = strings.TrimPrefix(arg, "--buffer-dtype=")
			i++
		case arg == "--buffer-only":
			opts.bufferOnly = true
			i++
		case arg == "--report":
			if i+1 >= len(args) {
				return nil, nil, errors.Usage("--report requires a value")
			}
			opts.reportPath = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "--report="):
			opts.reportPath = strings.TrimPrefix(arg, "--report=")
			i++
		case strings.HasPrefix(arg, "-"):
			return nil, nil, errors.Usagef("unknown flag %q", arg)
		default:
			paths = append(paths, arg)
			i++
		}
	}

	return opts, paths, nil
}

// printCompareUsage prints the help text for the compare command.
func printCompareUsage() {
	w := output.New()

	w.HelpTitle("bitcert compare - compare two pipeline records bit for bit")

	w.HelpSection("Usage:")
	w.HelpUsage("bitcert compare <ref.json> <gpu.json> [options]")

	w.HelpSection("Description:")
	w.Println("  Compares the reference record against the GPU record. Score fields")
	w.Println("  match by precedence: score_text, then score_bits_u64, then score_f64")
	w.Println("  compared as bit patterns. Any difference is a failure; there is no")
	w.Println("  tolerance.")

	w.HelpSection("Options:")
	w.HelpFlag("--buffer-key <name>", "Also diff this debug_dumps entry", helpFlagWidthCommand)
	w.HelpFlag("--buffer-dtype <type>", "Element type override (u8, u32_le, f32_le, f64_le)", helpFlagWidthCommand)
	w.HelpFlag("--buffer-only", "Skip the score comparison (requires --buffer-key)", helpFlagWidthCommand)
	w.HelpFlag("--report <path>", "Write a JSON evidence report", helpFlagWidthCommand)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthCommand)

	w.HelpSection("Examples:")
	w.HelpExample("bitcert compare ref.json gpu.json", "Compare score fields")
	w.HelpExample("bitcert compare ref.json gpu.json --buffer-key stage0_mu1_f32le", "Score plus one buffer")
	w.HelpExample("bitcert compare ref.json gpu.json --buffer-key raw --buffer-dtype u8 --buffer-only", "Buffer only, forced dtype")
	w.Println("")
}
