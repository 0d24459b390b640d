package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathnorm [command] [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rewrites \\( \\), \\[ \\], bare ( ) and [ ] math in Markdown to $ and $$.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  fix          Normalize files, stdin or the clipboard (default)")
	fmt.Fprintln(w, "  preview      Render normalized Markdown to an HTML page")
	fmt.Fprintln(w, "  doctor       Check clipboard and config setup")
	fmt.Fprintln(w, "  config       Create or locate config files")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mathnorm help <command>' for details on a specific command.")
}

// printFixUsage prints usage for the fix command.
func printFixUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathnorm [fix] [paths...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Normalize math delimiters. Input comes from, in order: --clipboard,")
	fmt.Fprintln(w, "file or directory arguments, piped stdin, input.defaultDir, the clipboard.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -i, --in-place            Rewrite input files in place")
	fmt.Fprintln(w, "      --clipboard           Read from and write back to the clipboard")
	fmt.Fprintln(w, "      --include <glob>      Files to process in directories (repeatable)")
	fmt.Fprintln(w, "      --exclude <glob>      Files to skip in directories (repeatable)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Review:")
	fmt.Fprintln(w, "      --check               Exit 1 if any input would change, write nothing")
	fmt.Fprintln(w, "      --diff                Print a unified diff instead of writing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rewriting:")
	fmt.Fprintln(w, "      --conservative        Strict [ ] blocks and fewer ( ) promotions")
	fmt.Fprintln(w, "      --collapse            Join single-line $$ blocks onto one line")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show timing and pipeline passes")
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathnorm preview [file] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Normalize a Markdown file (or piped stdin) and render it to HTML.")
	fmt.Fprintln(w, "Math is emitted as \\( \\) and \\[ \\] spans, ready for MathJax.")
	fmt.Fprintln(w, "Relative images and links point back to the source file's directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output HTML file (default: stdout)")
	fmt.Fprintln(w, "      --title <s>           Page title (default: file name)")
	fmt.Fprintln(w, "      --style <name|file>   Built-in style, .css file, or none (default: default)")
	fmt.Fprintln(w, "      --conservative        Strict [ ] blocks and fewer ( ) promotions")
	fmt.Fprintln(w, "      --collapse            Join single-line $$ blocks onto one line")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show pipeline passes")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathnorm config <init|path> [name] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  init [name]     Write the default config (default name: mathnorm)")
	fmt.Fprintln(w, "    -o, --output <path>   File to write (default: user config directory)")
	fmt.Fprintln(w, "    -f, --force           Overwrite an existing file")
	fmt.Fprintln(w, "  path [name]     List the files searched for a config name (* = exists)")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "fix":
		printFixUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: mathnorm doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check clipboard backend, config files and environment variables.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mathnorm version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mathnorm help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
