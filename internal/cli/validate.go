package cli

import (
	"os"
	"strings"

	"github.com/dssim-tools/bitcert/internal/errors"
	"github.com/dssim-tools/bitcert/internal/output"
	"github.com/dssim-tools/bitcert/internal/schema"
)

// cmdValidate checks record files against the embedded JSON schema.
func cmdValidate(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printValidateUsage()
		return errors.ExitSuccess
	}

	var paths []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			out.ErrorPrefix("validate: unknown flag %q", arg)
			out.Hint("Run 'bitcert help validate' for usage.")
			return errors.ExitHarnessError
		}
		paths = append(paths, arg)
	}
	if len(paths) == 0 {
		out.ErrorPrefix("validate: at least one record file is required")
		out.Hint("Run 'bitcert help validate' for usage.")
		return errors.ExitHarnessError
	}

	exitCode := errors.ExitSuccess
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			be := errors.Wrap(err, "failed to read record file")
			out.ErrorPrefix("%v", be)
			return errors.GetExitCode(be)
		}
		if err := schema.ValidateRecord(data); err != nil {
			out.CheckFailure("%s: %v", path, err)
			exitCode = errors.ExitMismatch
			continue
		}
		out.CheckSuccess("%s: valid", path)
	}

	return exitCode
}

// printValidateUsage prints the help text for the validate command.
func printValidateUsage() {
	w := output.New()

	w.HelpTitle("bitcert validate - check record files against the schema")

	w.HelpSection("Usage:")
	w.HelpUsage("bitcert validate <record.json>...")

	w.HelpSection("Description:")
	w.Println("  Validates each record file against the embedded record schema.")
	w.Println("  Unknown fields are allowed; known fields must have the right shape.")
	w.Println("  Validation failures exit 1, unreadable files exit 2.")

	w.HelpSection("Options:")
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthShort)

	w.HelpSection("Examples:")
	w.HelpExample("bitcert validate ref.json", "Validate one record")
	w.HelpExample("bitcert validate ref.json gpu.json", "Validate both sides")
	w.Println("")
}
