package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	mathnorm "github.com/alnah/go-mathnorm"
	"github.com/alnah/go-mathnorm/internal/config"
	"github.com/alnah/go-mathnorm/internal/fileutil"
	"github.com/alnah/go-mathnorm/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrInputUnavailable   = errors.New("no input available")
	ErrReadInput          = errors.New("failed to read input")
	ErrWriteOutput        = errors.New("failed to write output")
	ErrClipboard          = errors.New("clipboard access failed")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrWouldChange        = errors.New("input would change")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Normalizer is the interface for the normalization service.
type Normalizer interface {
	Normalize(ctx context.Context, input string) (string, error)
}

// Compile-time interface implementation check.
var _ Normalizer = (*mathnorm.Normalizer)(nil)

// source is where fix reads its input from.
type source int

const (
	sourceFiles source = iota
	sourceStdin
	sourceClipboard
)

func (s source) String() string {
	switch s {
	case sourceStdin:
		return "stdin"
	case sourceClipboard:
		return "clipboard"
	default:
		return "files"
	}
}

// input is the resolved input of one fix run: paths for sourceFiles,
// text otherwise.
type input struct {
	source source
	paths  []string
	text   string
}

// runFix orchestrates the fix command.
func runFix(ctx context.Context, args []string, env *Environment) error {
	flags, paths, err := parseFixFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if flags.inPlace && flags.output != "" {
		return fmt.Errorf("%w: --in-place and --output are mutually exclusive", ErrUsage)
	}
	if flags.clipboard && len(paths) > 0 {
		return fmt.Errorf("%w: --clipboard takes no file arguments", ErrUsage)
	}

	// Load configuration: flags > env > file > defaults
	envCfg := loadEnvConfig()
	cfg, err := resolveConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFixFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}

	normalizer, err := newNormalizer(cfg, env.logger(flags.common.verbose))
	if err != nil {
		return err
	}

	in, err := selectInput(flags, paths, cfg, env)
	if err != nil {
		return err
	}

	if in.source == sourceFiles {
		return fixFiles(ctx, normalizer, in.paths, flags, cfg, mathnorm.ResolveWorkers(workers), env)
	}
	return fixText(ctx, normalizer, in, flags, env)
}

// mergeFixFlags merges CLI flags into config. CLI values override config values.
func mergeFixFlags(flags *fixFlags, cfg *config.Config) {
	mergeNormalizeFlags(flags.normalize, cfg)

	if len(flags.include) > 0 {
		cfg.Input.Include = flags.include
	}
	if len(flags.exclude) > 0 {
		cfg.Input.Exclude = flags.exclude
	}
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
		cfg.Output.InPlace = false
	}
	if flags.inPlace {
		cfg.Output.InPlace = true
		cfg.Output.DefaultDir = ""
	}
}

// mergeNormalizeFlags applies the rewriting switches shared by fix and preview.
func mergeNormalizeFlags(flags normalizeFlags, cfg *config.Config) {
	if flags.conservative {
		cfg.Normalize.BracketBlocks = config.BracketBlocksStrict
		cfg.Normalize.Strictness = config.StrictnessConservative
	}
	if flags.collapse {
		cfg.Normalize.CollapseSingleLineDisplay = true
	}
}

// newNormalizer builds a library Normalizer from the merged config.
func newNormalizer(cfg *config.Config, logger *slog.Logger, extra ...mathnorm.Option) (*mathnorm.Normalizer, error) {
	strictness, err := mathnorm.ParseStrictness(cfg.Normalize.Strictness)
	if err != nil {
		return nil, err
	}

	opts := []mathnorm.Option{
		mathnorm.WithPermissiveBracketBlocks(cfg.Normalize.PermissiveBracketBlocks()),
		mathnorm.WithStrictness(strictness),
		mathnorm.WithCollapseSingleLineDisplay(cfg.Normalize.CollapseSingleLineDisplay),
	}
	if logger != nil {
		opts = append(opts, mathnorm.WithLogger(logger))
	}
	opts = append(opts, extra...)

	return mathnorm.NewNormalizer(opts...)
}

// selectInput picks the input source. Order: --clipboard, file arguments,
// piped stdin, input.defaultDir, then the clipboard.
func selectInput(flags *fixFlags, paths []string, cfg *config.Config, env *Environment) (input, error) {
	if flags.clipboard {
		text, err := env.Clipboard.Read()
		if err != nil {
			return input{}, fmt.Errorf("%w: %v%s", ErrClipboard, err, hints.ForClipboard())
		}
		return input{source: sourceClipboard, text: text}, nil
	}

	if len(paths) > 0 {
		return input{source: sourceFiles, paths: paths}, nil
	}

	if !env.StdinTTY() {
		data, err := io.ReadAll(env.Stdin)
		if err != nil {
			return input{}, fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
		}
		if len(data) > 0 {
			return input{source: sourceStdin, text: string(data)}, nil
		}
	}

	if cfg.Input.DefaultDir != "" {
		return input{source: sourceFiles, paths: []string{cfg.Input.DefaultDir}}, nil
	}

	text, err := env.Clipboard.Read()
	if err != nil {
		return input{}, fmt.Errorf("%w: no files given, nothing piped, and the clipboard is unreadable (%v)%s",
			ErrInputUnavailable, err, hints.ForClipboard())
	}
	return input{source: sourceClipboard, text: text}, nil
}

// fixText normalizes stdin or clipboard text and sends it back: to -o when
// given, else to stdout for stdin and to the clipboard for the clipboard.
func fixText(ctx context.Context, n Normalizer, in input, flags *fixFlags, env *Environment) error {
	if in.source == sourceClipboard && in.text == "" {
		if !flags.common.quiet {
			fmt.Fprintln(env.Stderr, "clipboard is empty; nothing to do")
		}
		return nil
	}

	out, err := n.Normalize(ctx, in.text)
	if err != nil {
		return fmt.Errorf("normalizing %s: %w", in.source, err)
	}
	changed := out != in.text

	if flags.check || flags.diff {
		if flags.diff {
			fmt.Fprint(env.Stdout, unifiedDiff(in.source.String(), in.text, out))
		}
		if flags.check && changed {
			if !flags.common.quiet {
				fmt.Fprintf(env.Stderr, "%s would change%s\n", in.source, hints.ForWouldChange())
			}
			return ErrWouldChange
		}
		return nil
	}

	if flags.output != "" {
		if err := writeOutputFile(flags.output, []byte(out), filePermissions); err != nil {
			return err
		}
		if !flags.common.quiet && in.source == sourceClipboard {
			fmt.Fprintf(env.Stdout, "Created %s\n", flags.output)
		}
		return nil
	}

	if in.source == sourceStdin {
		_, err := io.WriteString(env.Stdout, out)
		if err != nil {
			return fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
		}
		return nil
	}

	if !changed {
		if !flags.common.quiet {
			fmt.Fprintln(env.Stdout, "Clipboard already normalized")
		}
		return nil
	}
	if err := env.Clipboard.Write(out); err != nil {
		return fmt.Errorf("%w: %v%s", ErrClipboard, err, hints.ForClipboard())
	}
	if !flags.common.quiet {
		fmt.Fprintln(env.Stdout, "Normalized clipboard")
	}
	return nil
}

// writeOutputFile creates the parent directory and replaces path atomically.
func writeOutputFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: creating output directory: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}
	if err := fileutil.WriteFileAtomic(path, data, perm); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > mathnorm.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, mathnorm.MaxWorkers)
	}
	return nil
}
