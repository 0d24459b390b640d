package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	mathnorm "github.com/alnah/go-mathnorm"
	"github.com/alnah/go-mathnorm/internal/assets"
	"github.com/alnah/go-mathnorm/internal/config"
)

// runPreview renders one Markdown input, normalized, to an HTML page.
// The input is a file argument, or piped stdin when none is given.
func runPreview(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parsePreviewFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: preview takes one file, got %d", ErrUsage, len(positional))
	}

	envCfg := loadEnvConfig()
	cfg, err := resolveConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeNormalizeFlags(flags.normalize, cfg)
	if flags.style != "" {
		cfg.Preview.Style = flags.style
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	css, err := loadPreviewStyle(cfg.Preview)
	if err != nil {
		return err
	}

	markdown, name, baseDir, err := readPreviewInput(positional, env)
	if err != nil {
		return err
	}

	// Title: flag > config > file name
	title := flags.title
	if title == "" {
		title = cfg.Preview.Title
	}
	if title == "" {
		title = name
	}

	n, err := newNormalizer(cfg, env.logger(flags.common.verbose),
		mathnorm.WithPreviewTitle(title),
		mathnorm.WithPreviewStyle(css),
		mathnorm.WithPreviewBaseDir(baseDir),
	)
	if err != nil {
		return err
	}

	page, err := n.Preview(ctx, markdown)
	if err != nil {
		return err
	}

	if flags.output == "" {
		if _, err := env.Stdout.Write(page); err != nil {
			return fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
		}
		return nil
	}

	if err := writeOutputFile(flags.output, page, filePermissions); err != nil {
		return err
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", flags.output)
	}
	return nil
}

// readPreviewInput returns the Markdown to render, a name for the title and
// the directory relative references resolve against ("" for stdin).
func readPreviewInput(positional []string, env *Environment) (markdown, name, baseDir string, err error) {
	if len(positional) == 1 && positional[0] != "-" {
		path := positional[0]
		if err := validateMarkdownExtension(path); err != nil {
			return "", "", "", err
		}
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
		if err != nil {
			return "", "", "", fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		base := filepath.Base(path)
		return string(data), strings.TrimSuffix(base, filepath.Ext(base)), filepath.Dir(path), nil
	}

	if len(positional) == 0 && env.StdinTTY() {
		return "", "", "", fmt.Errorf("%w: preview needs a file argument or piped input", ErrInputUnavailable)
	}

	data, err := io.ReadAll(env.Stdin)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
	}
	return string(data), "", "", nil
}

// loadPreviewStyle returns the CSS selected by the preview config: a .css
// file, or a named style from styleDir or the built-in set.
func loadPreviewStyle(p config.PreviewConfig) (string, error) {
	if p.StyleIsFile() {
		data, err := os.ReadFile(p.Style) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("%w: style: %w", ErrReadInput, err)
		}
		return string(data), nil
	}

	resolver, err := assets.NewResolver(p.StyleDir)
	if err != nil {
		return "", fmt.Errorf("preview.styleDir: %w", err)
	}

	name := p.Style
	if name == "" {
		name = assets.DefaultStyleName
	}
	return resolver.LoadStyle(name)
}
