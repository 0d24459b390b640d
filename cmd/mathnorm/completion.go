package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mathnorm/internal/assets"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name       string
	Desc       string
	Flags      []flagDef
	TakesFiles bool // accepts Markdown file arguments
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"config": {FileGlob: "*.yaml,*.yml"},
	"output": {IsDir: true},
	"style":  {Values: append(assets.BuiltinStyles(), assets.NoStyle)},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			if len(meta.Values) > 0 {
				fd.Type = flagEnum
				fd.Values = meta.Values
			} else if meta.FileGlob != "" {
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			} else if meta.IsDir {
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:       "fix",
			Desc:       "Normalize math delimiters (default command)",
			Flags:      extractFlagsFromFlagSet(newFixFlagSet(&fixFlags{})),
			TakesFiles: true,
		},
		{
			Name:       "preview",
			Desc:       "Render normalized Markdown to HTML",
			Flags:      extractFlagsFromFlagSet(newPreviewFlagSet(&previewFlags{})),
			TakesFiles: true,
		},
		{
			Name:  "doctor",
			Desc:  "Check clipboard and config setup",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "output as JSON"}},
		},
		{Name: "config", Desc: "Create or locate config files"},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		generateBash(w, getCommands())
	case ShellZsh:
		generateZsh(w, getCommands())
	case ShellFish:
		generateFish(w, getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	return nil
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// flagWords lists "--long" and "-s" spellings of flags.
func flagWords(flags []flagDef) []string {
	words := make([]string, 0, len(flags)*2)
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

func generateBash(w io.Writer, cmds []commandDef) {
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}

	fmt.Fprintln(w, "# bash completion for mathnorm")
	fmt.Fprintln(w, "_mathnorm() {")
	fmt.Fprintln(w, "    local cur prev cmd")
	fmt.Fprintln(w, `    cur="${COMP_WORDS[COMP_CWORD]}"`)
	fmt.Fprintln(w, `    prev="${COMP_WORDS[COMP_CWORD-1]}"`)
	fmt.Fprintln(w, `    cmd="${COMP_WORDS[1]}"`)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    if [[ ${COMP_CWORD} -eq 1 ]]; then")
	fmt.Fprintf(w, "        COMPREPLY=($(compgen -W \"%s\" -f -X '!*.@(md|markdown)' -- \"$cur\"))\n", strings.Join(names, " "))
	fmt.Fprintln(w, "        return")
	fmt.Fprintln(w, "    fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    case "$prev" in`)
	fmt.Fprintln(w, "        --config|-c)")
	fmt.Fprintln(w, "            COMPREPLY=($(compgen -f -X '!*.@(yaml|yml)' -- \"$cur\"))")
	fmt.Fprintln(w, "            return ;;")
	fmt.Fprintln(w, "        --output|-o)")
	fmt.Fprintln(w, "            COMPREPLY=($(compgen -d -- \"$cur\"))")
	fmt.Fprintln(w, "            return ;;")
	fmt.Fprintln(w, "    esac")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    case "$cmd" in`)
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(w, "        %s)\n", c.Name)
		fmt.Fprintf(w, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(flagWords(c.Flags), " "))
		if c.TakesFiles {
			fmt.Fprintln(w, "            COMPREPLY+=($(compgen -f -X '!*.@(md|markdown)' -- \"$cur\"))")
		}
		fmt.Fprintln(w, "            ;;")
	}
	fmt.Fprintln(w, "        completion)")
	fmt.Fprintln(w, "            COMPREPLY=($(compgen -W \"bash zsh fish\" -- \"$cur\")) ;;")
	fmt.Fprintln(w, "        *)")
	fmt.Fprintln(w, "            COMPREPLY=($(compgen -f -X '!*.@(md|markdown)' -- \"$cur\")) ;;")
	fmt.Fprintln(w, "    esac")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "shopt -s extglob")
	fmt.Fprintln(w, "complete -o filenames -F _mathnorm mathnorm")
}

// zshEscape escapes characters special inside a _arguments spec.
func zshEscape(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`, ":", `\:`, "'", `'\''`).Replace(s)
}

func generateZsh(w io.Writer, cmds []commandDef) {
	fmt.Fprintln(w, "#compdef mathnorm")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "_mathnorm() {")
	fmt.Fprintln(w, "    local -a commands")
	fmt.Fprintln(w, "    commands=(")
	for _, c := range cmds {
		fmt.Fprintf(w, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	fmt.Fprintln(w, "    )")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    if (( CURRENT == 2 )); then")
	fmt.Fprintln(w, "        _describe 'command' commands")
	fmt.Fprintln(w, "        _files -g '*.(md|markdown)'")
	fmt.Fprintln(w, "        return")
	fmt.Fprintln(w, "    fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    case ${words[2]} in")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(w, "        %s)\n", c.Name)
		fmt.Fprintln(w, "            _arguments \\")
		for _, f := range c.Flags {
			fmt.Fprintf(w, "                '--%s[%s]%s' \\\n", f.Long, zshEscape(f.Desc), zshAction(f))
		}
		if c.TakesFiles {
			fmt.Fprintln(w, "                '*:file:_files -g \"*.(md|markdown)\"'")
		} else {
			fmt.Fprintln(w, "                '*: :'")
		}
		fmt.Fprintln(w, "            ;;")
	}
	fmt.Fprintln(w, "        completion)")
	fmt.Fprintln(w, "            _values 'shell' bash zsh fish ;;")
	fmt.Fprintln(w, "    esac")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `_mathnorm "$@"`)
}

// zshAction returns the value completion suffix of a zsh flag spec.
func zshAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		return ":value:(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		globs := strings.ReplaceAll(f.FileGlob, ",", "|")
		return ":file:_files -g \"" + globs + "\""
	case flagDir:
		return ":directory:_files -/"
	default:
		return ":value:"
	}
}

func generateFish(w io.Writer, cmds []commandDef) {
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	all := strings.Join(names, " ")

	fmt.Fprintln(w, "# fish completion for mathnorm")
	fmt.Fprintln(w, "complete -c mathnorm -f")
	for _, c := range cmds {
		fmt.Fprintf(w, "complete -c mathnorm -n 'not __fish_seen_subcommand_from %s' -a %s -d '%s'\n",
			all, c.Name, fishEscape(c.Desc))
	}
	for _, c := range cmds {
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c mathnorm -n '__fish_seen_subcommand_from %s' -l %s", c.Name, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			default:
				line += " -r -F"
			}
			fmt.Fprintf(w, "%s -d '%s'\n", line, fishEscape(f.Desc))
		}
		if c.TakesFiles {
			fmt.Fprintf(w, "complete -c mathnorm -n '__fish_seen_subcommand_from %s' -a '(__fish_complete_suffix .md)'\n", c.Name)
		}
	}
	fmt.Fprintln(w, "complete -c mathnorm -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'")
}

// fishEscape escapes single quotes for a fish single-quoted string.
func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mathnorm completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mathnorm completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(mathnorm completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mathnorm completion fish > ~/.config/fish/completions/mathnorm.fish")
}
