package cli

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dssim-tools/bitcert/internal/errors"
	"github.com/dssim-tools/bitcert/internal/output"
	"github.com/dssim-tools/bitcert/internal/plan"
	"github.com/dssim-tools/bitcert/internal/report"
	"github.com/dssim-tools/bitcert/pkg/exact"
)

// verifyOptions holds parsed verify command flags.
type verifyOptions struct {
	planPath   string
	reportPath string
}

// cmdVerify runs every check a verification plan names against one record pair.
func cmdVerify(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printVerifyUsage()
		return errors.ExitSuccess
	}

	vOpts, paths, err := parseVerifyFlags(args)
	if err != nil {
		out.ErrorPrefix("verify: %v", err)
		out.Hint("Run 'bitcert help verify' for usage.")
		return errors.GetExitCode(err)
	}
	if vOpts.planPath == "" {
		out.ErrorPrefix("verify: --plan is required")
		out.Hint("Run 'bitcert help verify' for usage.")
		return errors.ExitHarnessError
	}
	if len(paths) != 2 {
		out.ErrorPrefix("verify: expected <ref.json> and <gpu.json>, got %d argument(s)", len(paths))
		out.Hint("Run 'bitcert help verify' for usage.")
		return errors.ExitHarnessError
	}

	p, warnings, err := plan.LoadAndValidate(vOpts.planPath)
	for _, warning := range warnings {
		out.Warning("%s", warning)
	}
	if err != nil {
		out.ErrorPrefix("%v", err)
		if errors.IsUsage(err) {
			out.Hint("Run 'bitcert help verify' for the plan format.")
		}
		return errors.GetExitCode(err)
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
	titleCase := cases.Title(language.English)

	var combined exact.Report
	totalChecks := 0
	failedChecks := 0

	showCheck := func(kind, detail string, r exact.Report) {
		label := titleCase.String(kind)
		if detail != "" {
			label += " " + detail
		}
		if r.Passed() {
			out.CheckSuccess("%s", label)
			return
		}
		failedChecks++
		out.CheckFailure("%s", label)
		for _, entry := range r {
			out.Issue(entry)
		}
	}

	if p.ScoreEnabled() {
		totalChecks++
		scoreReport, err := exact.CompareScores(ref, gpu)
		if err != nil {
			out.ErrorPrefix("%v", err)
			return errors.ExitHarnessError
		}
		bundle.AddCheck(report.ScoreCheck(scoreReport))
		showCheck("score", "", scoreReport)
		combined = append(combined, scoreReport...)
	}

	for _, b := range p.Buffers {
		totalChecks++
		var force exact.DType
		if b.Dtype != "" {
			// Plan validation already vetted the dtype.
			force, _ = exact.ParseDType(b.Dtype)
		}
		bufReport := exact.CompareBuffer(ref, gpu, b.Key, force)
		bundle.AddCheck(report.BufferCheck(b.Key, b.Dtype, bufReport))
		showCheck("buffer", b.Key, bufReport)
		combined = append(combined, bufReport...)
	}

	out.SummaryHeader("Verification Summary")
	out.SummaryItem("Checks", strconv.Itoa(totalChecks))
	out.SummaryPassed("Passed", strconv.Itoa(totalChecks-failedChecks))
	out.SummaryFailed("Failed", strconv.Itoa(failedChecks))

	var exitCode int
	if combined.Passed() {
		out.Success("PASS: outputs match exactly.")
		exitCode = errors.ExitSuccess
	} else {
		out.Failure("FAIL: %d issue(s) in %d of %d check(s).", len(combined), failedChecks, totalChecks)
		exitCode = errors.ExitMismatch
	}

	if code := writeBundle(vOpts.reportPath, bundle); code != 0 {
		return code
	}
	return exitCode
}

// parseVerifyFlags parses verify-specific flags, returning the remaining
// positional arguments (the two record paths).
func parseVerifyFlags(args []string) (*verifyOptions, []string, error) {
	opts := &verifyOptions{}
	var paths []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "--plan":
			if i+1 >= len(args) {
				return nil, nil, errors.Usage("--plan requires a value")
			}
			opts.planPath = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "--plan="):
			opts.planPath = strings.TrimPrefix(arg, "--plan=")
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

// printVerifyUsage prints the help text for the verify command.
func printVerifyUsage() {
	w := output.New()

	w.HelpTitle("bitcert verify - run the checks named in a verification plan")

	w.HelpSection("Usage:")
	w.HelpUsage("bitcert verify <ref.json> <gpu.json> --plan <plan.yaml> [options]")

	w.HelpSection("Description:")
	w.Println("  Runs the score check and every buffer check the plan lists,")
	w.Println("  accumulating one combined report. A plan is a small YAML file:")
	w.Println("")
	w.Println("    version: 1")
	w.Println("    score: true")
	w.Println("    buffers:")
	w.Println("      - key: stage0_mu1_f32le")
	w.Println("        dtype: f32_le")

	w.HelpSection("Options:")
	w.HelpFlag("--plan <path>", "Verification plan to run (required)", helpFlagWidthCommand)
	w.HelpFlag("--report <path>", "Write a JSON evidence report", helpFlagWidthCommand)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthCommand)

	w.HelpSection("Examples:")
	w.HelpExample("bitcert verify ref.json gpu.json --plan plan.yaml", "Run all planned checks")
	w.HelpExample("bitcert verify ref.json gpu.json --plan plan.yaml --report out.json", "Also archive evidence")
	w.Println("")
}
