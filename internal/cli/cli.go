// Package cli provides command-line interface functionality for bitcert.
package cli

import (
	"fmt"

	"github.com/dssim-tools/bitcert/internal/errors"
	"github.com/dssim-tools/bitcert/internal/output"
)

// Version is set at build time.
var Version = "dev"

// wantsHelp returns true if args contain -h or --help.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return errors.ExitSuccess
	}

	switch args[0] {
	case "-h", "--help":
		printUsage()
		return errors.ExitSuccess
	case "help":
		return cmdHelp(args[1:])
	case "--version", "version":
		fmt.Printf("bitcert %s\n", Version)
		return errors.ExitSuccess
	}

	opts, remaining := parseGlobalFlags(args)

	// Re-extract command after flag parsing
	if len(remaining) == 0 {
		printUsage()
		return errors.ExitSuccess
	}
	cmd := remaining[0]
	cmdArgs := remaining[1:]

	// Route to command handler
	switch cmd {
	case "compare":
		return cmdCompare(cmdArgs, opts)
	case "verify":
		return cmdVerify(cmdArgs, opts)
	case "validate":
		return cmdValidate(cmdArgs, opts)
	case "init":
		return cmdInit(cmdArgs, opts)
	case "completion":
		return cmdCompletion(cmdArgs)
	default:
		out.ErrorPrefix("unknown command %q", cmd)
		out.Hint("Run 'bitcert help' for usage.")
		return errors.ExitHarnessError
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	Quiet   bool
	NoColor bool
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Manual parsing is used instead of stdlib flag package because:
// - Flags can appear anywhere in the argument list, not just before the command
// - Command-specific flags must survive for per-command parsing
// - Custom error messages with usage hints are needed
// - Flag package doesn't support these use cases cleanly
func parseGlobalFlags(args []string) (*GlobalOptions, []string) {
	opts := &GlobalOptions{}
	var remaining []string

	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			opts.Quiet = true
		case "--no-color":
			opts.NoColor = true
		default:
			remaining = append(remaining, arg)
		}
	}

	// Apply output settings to the shared writer so every command sees
	// consistent quiet and color behavior.
	applyOutputOptions(opts)

	return opts, remaining
}

// cmdHelp prints usage for a specific command, or general usage.
func cmdHelp(args []string) int {
	if len(args) == 0 {
		printUsage()
		return errors.ExitSuccess
	}

	switch args[0] {
	case "compare":
		printCompareUsage()
	case "verify":
		printVerifyUsage()
	case "validate":
		printValidateUsage()
	case "init":
		printInitUsage()
	case "completion":
		printCompletionUsage()
	case "version", "help":
		printUsage()
	default:
		out.ErrorPrefix("help: unknown command %q", args[0])
		out.Hint("Run 'bitcert help' for the command list.")
		return errors.ExitHarnessError
	}
	return errors.ExitSuccess
}

func printUsage() {
	w := output.New()

	w.HelpTitle("bitcert - exact-match verification for DSSIM pipeline records")

	w.HelpSection("Usage:")
	w.HelpUsage("bitcert <command> [arguments] [flags]")

	w.HelpSection("Commands:")
	w.HelpCommand("compare <ref> <gpu>", "Compare two pipeline records bit for bit", helpCommandWidth)
	w.HelpCommand("verify <ref> <gpu>", "Run the checks named in a verification plan", helpCommandWidth)
	w.HelpCommand("validate <record>...", "Check record files against the record schema", helpCommandWidth)
	w.HelpCommand("init <record>", "Scaffold a verification plan from a record", helpCommandWidth)
	w.HelpCommand("version", "Show version information", helpCommandWidth)
	w.HelpCommand("help [command]", "Show help for a command", helpCommandWidth)
	w.HelpCommand("completion <shell>", "Generate shell completion", helpCommandWidth)

	printGlobalFlags(w)

	w.HelpSection("Exit Codes:")
	w.HelpCommand("0", "Records match exactly", 3)
	w.HelpCommand("1", "Discrepancies found", 3)
	w.HelpCommand("2", "Harness or usage error", 3)

	w.HelpSection("Examples:")
	w.HelpExample("bitcert compare ref.json gpu.json", "Compare score fields")
	w.HelpExample("bitcert compare ref.json gpu.json --buffer-key stage0_mu1_f32le", "Also diff one debug buffer")
	w.HelpExample("bitcert verify ref.json gpu.json --plan plan.yaml --report out.json", "Run a plan and archive evidence")
}

func printGlobalFlags(w *output.Writer) {
	w.HelpSection("Global Flags:")
	w.HelpFlag("-q, --quiet", "Minimal output (verdicts and errors only)", helpFlagWidthGlobal)
	w.HelpFlag("--no-color", "Disable colored output", helpFlagWidthGlobal)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthGlobal)
	w.HelpFlag("--version", "Show version", helpFlagWidthGlobal)
}
