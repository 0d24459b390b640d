package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// normalizeFlags holds the rewriting switches shared by fix and preview.
type normalizeFlags struct {
	conservative bool
	collapse     bool
}

// fixFlags holds all flags for the fix command.
type fixFlags struct {
	common    commonFlags
	normalize normalizeFlags
	output    string
	inPlace   bool
	workers   int
	clipboard bool
	check     bool
	diff      bool
	include   []string
	exclude   []string
}

// previewFlags holds all flags for the preview command.
type previewFlags struct {
	common    commonFlags
	normalize normalizeFlags
	output    string
	title     string
	style     string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show timing and pipeline passes")
}

// addNormalizeFlags adds the rewriting switches to a FlagSet.
func addNormalizeFlags(fs *flag.FlagSet, f *normalizeFlags) {
	fs.BoolVar(&f.conservative, "conservative", false, "strict [ ] blocks and fewer ( ) promotions")
	fs.BoolVar(&f.collapse, "collapse", false, "join single-line $$ blocks onto one line")
}

// newFixFlagSet registers every fix flag into f.
// Shared by parsing and completion so both see the same flags.
func newFixFlagSet(f *fixFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("fix", flag.ContinueOnError)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.BoolVarP(&f.inPlace, "in-place", "i", false, "rewrite input files in place")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.clipboard, "clipboard", false, "read from and write back to the clipboard")
	fs.StringSliceVar(&f.include, "include", nil, "glob of files to process in directories (repeatable)")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "glob of files to skip in directories (repeatable)")

	// Review flags
	fs.BoolVar(&f.check, "check", false, "exit 1 if any input would change, write nothing")
	fs.BoolVar(&f.diff, "diff", false, "print a unified diff instead of writing")

	addNormalizeFlags(fs, &f.normalize)
	addCommonFlags(fs, &f.common)

	return fs
}

// newPreviewFlagSet registers every preview flag into f.
func newPreviewFlagSet(f *previewFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output HTML file (default: stdout)")
	fs.StringVar(&f.title, "title", "", "page title (default: file name)")
	fs.StringVar(&f.style, "style", "", "style name, .css file, or none")

	addNormalizeFlags(fs, &f.normalize)
	addCommonFlags(fs, &f.common)

	return fs
}

// parseFixFlags parses fix command flags and returns positional args.
func parseFixFlags(args []string, usage io.Writer) (*fixFlags, []string, error) {
	f := &fixFlags{}
	fs := newFixFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printFixUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parsePreviewFlags parses preview command flags and returns positional args.
func parsePreviewFlags(args []string, usage io.Writer) (*previewFlags, []string, error) {
	f := &previewFlags{}
	fs := newPreviewFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printPreviewUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
