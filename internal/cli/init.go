package cli

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dssim-tools/bitcert/internal/errors"
	"github.com/dssim-tools/bitcert/internal/output"
	"github.com/dssim-tools/bitcert/internal/plan"
	"github.com/dssim-tools/bitcert/pkg/exact"
)

// initOptions holds parsed init command options.
type initOptions struct {
	planPath string // Where to write the scaffolded plan
	force    bool   // Overwrite an existing plan file
}

// cmdInit scaffolds a verification plan from a reference record.
// This command is idempotent - an existing plan file is left alone
// unless --force is given.
func cmdInit(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printInitUsage()
		return errors.ExitSuccess
	}

	initOpts, paths, err := parseInitFlags(args)
	if err != nil {
		out.ErrorPrefix("init: %v", err)
		out.Hint("Run 'bitcert help init' for usage.")
		return errors.GetExitCode(err)
	}
	if len(paths) != 1 {
		out.ErrorPrefix("init: expected exactly one record file, got %d", len(paths))
		out.Hint("Usage: bitcert init <record.json> [--plan <path>]")
		return errors.ExitHarnessError
	}

	rec, err := exact.LoadRecord(paths[0])
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	if _, statErr := os.Stat(initOpts.planPath); statErr == nil && !initOpts.force {
		out.Info("Plan file %s already exists (use --force to overwrite)", initOpts.planPath)
		return errors.ExitSuccess
	}

	p := buildPlanFromRecord(rec)

	data, err := yaml.Marshal(p)
	if err != nil {
		be := errors.Newf("failed to encode plan: %v", err)
		out.ErrorPrefix("%v", be)
		return errors.GetExitCode(be)
	}

	if err := os.WriteFile(initOpts.planPath, data, 0644); err != nil {
		be := errors.Wrap(err, "failed to write plan file")
		out.ErrorPrefix("%v", be)
		return errors.GetExitCode(be)
	}

	out.Success("Initialized verification plan: %s", initOpts.planPath)
	if len(p.Buffers) > 0 {
		out.HelpSection("Detected buffers:")
		for _, b := range p.Buffers {
			if b.Dtype != "" {
				out.Println("  - %s (%s)", b.Key, b.Dtype)
			} else {
				out.Println("  - %s", b.Key)
			}
		}
	} else {
		out.Info("Record declares no debug dumps; the plan covers the score check only.")
	}
	printInitNextSteps(paths[0], initOpts.planPath)

	return errors.ExitSuccess
}

// buildPlanFromRecord derives a plan covering every debug dump the record
// declares. A declared element type becomes the buffer's dtype override
// when it names a supported type, so the generated plan always passes
// plan validation.
func buildPlanFromRecord(rec *exact.Record) *plan.Plan {
	scoreOn := true
	p := &plan.Plan{
		Version: 1,
		Score:   &scoreOn,
	}

	for _, key := range rec.DumpKeys() {
		entry, _ := rec.DumpEntry(key)
		check := plan.BufferCheck{Key: key}
		if _, ok := exact.ParseDType(entry.ElemType); ok && entry.ElemType != "" {
			check.Dtype = entry.ElemType
		}
		p.Buffers = append(p.Buffers, check)
	}

	return p
}

// parseInitFlags parses init command flags and returns options plus
// positional arguments.
func parseInitFlags(args []string) (initOptions, []string, error) {
	opts := initOptions{planPath: "plan.yaml"}
	var paths []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--plan":
			if i+1 >= len(args) {
				return opts, nil, errors.Usage("--plan requires a value")
			}
			i++
			opts.planPath = args[i]
		case strings.HasPrefix(arg, "--plan="):
			opts.planPath = strings.TrimPrefix(arg, "--plan=")
		case arg == "--force":
			opts.force = true
		case strings.HasPrefix(arg, "-"):
			return opts, nil, errors.Usagef("unknown flag %q", arg)
		default:
			paths = append(paths, arg)
		}
	}

	if opts.planPath == "" {
		return opts, nil, errors.Usage("--plan requires a non-empty path")
	}

	return opts, paths, nil
}

// printInitNextSteps prints guidance after scaffolding a plan.
func printInitNextSteps(recordPath, planPath string) {
	w := output.New()
	w.HelpSection("Next steps:")
	w.Println("  1. Review %s and drop any checks you do not need", planPath)
	w.Println("  2. Run 'bitcert verify %s <gpu.json> --plan %s'", recordPath, planPath)
	w.Println("")
}

// printInitUsage prints the help text for the init command.
func printInitUsage() {
	w := output.New()

	w.HelpTitle("bitcert init - scaffold a verification plan from a record")

	w.HelpSection("Usage:")
	w.HelpUsage("bitcert init <record.json> [options]")

	w.HelpSection("Description:")
	w.Println("  Reads a reference record and writes a plan that enables the score")
	w.Println("  check and one buffer check per debug_dumps entry. Declared element")
	w.Println("  types are carried into the plan as per-buffer dtype overrides.")

	w.HelpSection("Options:")
	w.HelpFlag("--plan <path>", "Plan file to write (default plan.yaml)", helpFlagWidthCommand)
	w.HelpFlag("--force", "Overwrite an existing plan file", helpFlagWidthCommand)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthCommand)

	w.HelpSection("Examples:")
	w.HelpExample("bitcert init ref.json", "Write plan.yaml in the current directory")
	w.HelpExample("bitcert init ref.json --plan checks.yaml", "Choose the plan path")
	w.HelpExample("bitcert init ref.json --force", "Regenerate an existing plan")
}
