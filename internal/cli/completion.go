package cli

import (
	"fmt"
	"strings"

	"github.com/dssim-tools/bitcert/internal/errors"
	"github.com/dssim-tools/bitcert/internal/output"
	"github.com/dssim-tools/bitcert/pkg/exact"
)

// cmdCompletion generates shell completion scripts.
func cmdCompletion(args []string) int {
	w := output.New()
	shell := ""
	alias := ""

	// Parse arguments
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			printCompletionUsage()
			return errors.ExitSuccess
		case strings.HasPrefix(arg, "--alias="):
			alias = strings.TrimPrefix(arg, "--alias=")
		case arg == "--alias":
			w.ErrorPrefix("completion: --alias requires a value (--alias=<name>)")
			return errors.ExitHarnessError
		case strings.HasPrefix(arg, "-"):
			w.ErrorPrefix("completion: unknown flag: %s", arg)
			printCompletionUsage()
			return errors.ExitHarnessError
		default:
			if shell != "" {
				w.ErrorPrefix("completion: unexpected argument: %s", arg)
				return errors.ExitHarnessError
			}
			shell = arg
		}
	}

	if shell == "" {
		w.ErrorPrefix("completion: shell required (bash, zsh, fish)")
		printCompletionUsage()
		return errors.ExitHarnessError
	}

	// Use "bitcert" as default command name
	cmdName := "bitcert"
	if alias != "" {
		cmdName = alias
	}

	// Scripts go through %s verbatim; they are full of shell % sequences.
	switch shell {
	case "bash":
		w.Print("%s", generateBashCompletion(cmdName))
	case "zsh":
		w.Print("%s", generateZshCompletion(cmdName))
	case "fish":
		w.Print("%s", generateFishCompletion(cmdName))
	default:
		w.ErrorPrefix("completion: unsupported shell %q (use bash, zsh, or fish)", shell)
		return errors.ExitHarnessError
	}

	return errors.ExitSuccess
}

// printCompletionUsage prints the help text for the completion command.
func printCompletionUsage() {
	w := output.New()

	w.HelpTitle("bitcert completion - generate shell completion scripts")

	w.HelpSection("Usage:")
	w.HelpUsage("bitcert completion <shell> [--alias=<name>]")

	w.HelpSection("Arguments:")
	w.HelpFlag("<shell>", "Shell type: bash, zsh, or fish", helpFlagWidthShort)

	w.HelpSection("Options:")
	w.HelpFlag("--alias=<name>", "Generate completion for command alias", helpFlagWidthGlobal)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthGlobal)

	w.HelpSection("Examples:")
	w.HelpExample("bitcert completion bash", "Generate bash completion")
	w.HelpExample("bitcert completion zsh", "Generate zsh completion")
	w.HelpExample("bitcert completion fish", "Generate fish completion")

	w.HelpSection("Installation:")
	w.Println("  Bash:  eval \"$(bitcert completion bash)\"")
	w.Println("  Zsh:   eval \"$(bitcert completion zsh)\"")
	w.Println("  Fish:  bitcert completion fish | source")
	w.Println("")
}

// builtinCommands returns the list of top-level CLI commands.
func builtinCommands() []string {
	return []string{
		"compare",
		"verify",
		"validate",
		"init",
		"version",
		"help",
		"completion",
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []string {
	return []string{
		"--quiet",
		"--no-color",
		"--help",
		"--version",
	}
}

// dtypeValues returns the element types offered for --buffer-dtype.
func dtypeValues() []string {
	return exact.DTypeNames()
}

func generateBashCompletion(cmdName string) string {
	commands := builtinCommands()
	flags := globalFlags()

	// Generate function name from command (replace - with _)
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_") + "_completions"

	var aliasNote string
	if cmdName == "bitcert" {
		aliasNote = `
# Alias support:
# If you use an alias (e.g., alias bc="bitcert"), add completion for it:
#   complete -F _bitcert_completions bc
# Or generate completion directly for your alias:
#   eval "$(bitcert completion bash --alias=bc)"
`
	} else {
		aliasNote = fmt.Sprintf(`
# This completion is generated for the alias "%s"
# Make sure you have the alias defined: alias %s="bitcert"
`, cmdName, cmdName)
	}

	return fmt.Sprintf(`# bitcert bash completion
# Add to ~/.bashrc: eval "$(bitcert completion bash)"
%s
%s() {
    local cur prev words cword
    _init_completion || return

    local commands="%s"
    local flags="%s"
    local dtypes="%s"
    local completion_shells="bash zsh fish"

    case "${prev}" in
        %s)
            COMPREPLY=($(compgen -W "${commands} ${flags}" -- "${cur}"))
            return
            ;;
        help)
            COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "${completion_shells}" -- "${cur}"))
            return
            ;;
        --buffer-dtype)
            COMPREPLY=($(compgen -W "${dtypes}" -- "${cur}"))
            return
            ;;
        --buffer-key)
            return
            ;;
        --plan|--report)
            _filedir
            return
            ;;
    esac

    # Complete flags if current word starts with -
    if [[ "${cur}" == -* ]]; then
        case "${words[1]}" in
            compare)
                COMPREPLY=($(compgen -W "--buffer-key --buffer-dtype --buffer-only --report ${flags}" -- "${cur}"))
                ;;
            verify)
                COMPREPLY=($(compgen -W "--plan --report ${flags}" -- "${cur}"))
                ;;
            init)
                COMPREPLY=($(compgen -W "--plan --force ${flags}" -- "${cur}"))
                ;;
            *)
                COMPREPLY=($(compgen -W "${flags}" -- "${cur}"))
                ;;
        esac
        return
    fi

    # Record and plan arguments are files
    _filedir
}

complete -F %s %s
`, aliasNote, funcName, strings.Join(commands, " "), strings.Join(flags, " "),
		strings.Join(dtypeValues(), " "), cmdName, funcName, cmdName)
}

func generateZshCompletion(cmdName string) string {
	// Generate function name from command (replace - with _)
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_")

	var aliasNote string
	if cmdName == "bitcert" {
		aliasNote = `
# Alias support:
# If you use an alias (e.g., alias bc="bitcert"), add completion for it:
#   compdef _bitcert bc
# Or generate completion directly for your alias:
#   eval "$(bitcert completion zsh --alias=bc)"
`
	} else {
		aliasNote = fmt.Sprintf(`
# This completion is generated for the alias "%s"
# Make sure you have the alias defined: alias %s="bitcert"
`, cmdName, cmdName)
	}

	return fmt.Sprintf(`#compdef %s
# bitcert zsh completion
# Add to ~/.zshrc: eval "$(bitcert completion zsh)"
%s
%s() {
    local -a commands flags compare_flags verify_flags init_flags completion_shells

    commands=(
        'compare:Compare two pipeline records bit for bit'
        'verify:Run the checks named in a verification plan'
        'validate:Check record files against the record schema'
        'init:Scaffold a verification plan from a record'
        'version:Show version information'
        'help:Show help for a command'
        'completion:Generate shell completion'
    )

    flags=(
        '--quiet[Minimal output]'
        '--no-color[Disable colored output]'
        '--help[Show help]'
        '--version[Show version]'
    )

    compare_flags=(
        '--buffer-key=[Debug dump entry to diff]'
        '--buffer-dtype=[Element type override]:dtype:(%s)'
        '--buffer-only[Skip the score comparison]'
        '--report=[Evidence report path]:report:_files'
    )

    verify_flags=(
        '--plan=[Verification plan]:plan:_files'
        '--report=[Evidence report path]:report:_files'
    )

    init_flags=(
        '--plan=[Plan file to write]:plan:_files'
        '--force[Overwrite an existing plan file]'
    )

    completion_shells=(
        'bash:Generate bash completion'
        'zsh:Generate zsh completion'
        'fish:Generate fish completion'
    )

    # Determine current position
    local cur_pos=$((CURRENT - 1))

    if (( cur_pos == 1 )); then
        _describe -t commands 'command' commands
        _arguments -s $flags[@]
        return
    fi

    # Second+ argument: context-sensitive completion based on first word
    case "${words[2]}" in
        compare)
            _arguments -s $compare_flags[@] $flags[@] '*:record:_files -g "*.json"'
            ;;
        verify)
            _arguments -s $verify_flags[@] $flags[@] '*:record:_files -g "*.json"'
            ;;
        validate)
            _arguments -s $flags[@] '*:record:_files -g "*.json"'
            ;;
        init)
            _arguments -s $init_flags[@] $flags[@] '*:record:_files -g "*.json"'
            ;;
        help)
            _describe -t commands 'command' commands
            ;;
        completion)
            _describe -t shells 'shell' completion_shells
            ;;
        *)
            _arguments -s $flags[@]
            ;;
    esac
}

compdef %s %s
`, cmdName, aliasNote, funcName, strings.Join(dtypeValues(), " "), funcName, cmdName)
}

func generateFishCompletion(cmdName string) string {
	var sb strings.Builder

	var aliasNote string
	if cmdName == "bitcert" {
		aliasNote = `# Alias support:
# If you use an alias (e.g., alias bc="bitcert"), add completion for it:
#   complete -c bc -w bitcert
# Or generate completion directly for your alias:
#   bitcert completion fish --alias=bc | source
`
	} else {
		aliasNote = fmt.Sprintf(`# This completion is generated for the alias "%s"
# Make sure you have the alias defined: alias %s="bitcert"
`, cmdName, cmdName)
	}

	// File completion stays enabled: records, plans, and reports are paths.
	sb.WriteString(fmt.Sprintf(`# bitcert fish completion
# Add to config: bitcert completion fish | source

%s
`, aliasNote))

	commandDescs := []struct {
		name string
		desc string
	}{
		{"compare", "Compare two pipeline records bit for bit"},
		{"verify", "Run the checks named in a verification plan"},
		{"validate", "Check record files against the record schema"},
		{"init", "Scaffold a verification plan from a record"},
		{"version", "Show version information"},
		{"help", "Show help for a command"},
		{"completion", "Generate shell completion"},
	}

	for _, c := range commandDescs {
		sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_use_subcommand' -a '%s' -d '%s'\n", cmdName, c.name, c.desc))
	}

	sb.WriteString("\n# Global flags\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -l quiet -s q -d 'Minimal output'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l no-color -d 'Disable colored output'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l help -s h -d 'Show help'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l version -d 'Show version'\n", cmdName))

	sb.WriteString("\n# compare flags\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from compare' -l buffer-key -x -d 'Debug dump entry to diff'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from compare' -l buffer-dtype -xa '%s' -d 'Element type override'\n", cmdName, strings.Join(dtypeValues(), " ")))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from compare' -l buffer-only -d 'Skip the score comparison'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from compare verify' -l report -r -d 'Evidence report path'\n", cmdName))

	sb.WriteString("\n# verify and init flags\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from verify init' -l plan -r -d 'Verification plan'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from init' -l force -d 'Overwrite an existing plan file'\n", cmdName))

	sb.WriteString("\n# help and completion arguments\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from help' -xa '%s' -d 'Command'\n", cmdName, strings.Join(builtinCommands(), " ")))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from completion' -xa 'bash zsh fish' -d 'Shell'\n", cmdName))

	return sb.String()
}
