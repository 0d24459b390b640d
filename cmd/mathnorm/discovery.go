package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-mathnorm/internal/fileutil"
	"github.com/alnah/go-mathnorm/internal/hints"
)

// fileJob represents a single file to process.
type fileJob struct {
	InputPath  string
	OutputPath string // "" = stdout; equal to InputPath when in place
}

// discoveryOptions controls directory walking and output placement.
type discoveryOptions struct {
	OutputDir string
	InPlace   bool
	Include   []string // doublestar globs relative to each walked directory
	Exclude   []string
}

// discoverFiles expands file and directory arguments into jobs.
// Explicit files must be Markdown; directories are walked and filtered with
// the include and exclude globs. Hidden directories and the output directory
// are skipped. A file reached twice yields one job.
func discoverFiles(inputs []string, opts discoveryOptions) ([]fileJob, error) {
	var jobs []fileJob
	seen := make(map[string]bool)

	add := func(path, baseDir string) {
		key := filepath.Clean(path)
		if seen[key] {
			return
		}
		seen[key] = true

		outPath := resolveOutputPath(path, opts.OutputDir, baseDir)
		if opts.InPlace {
			outPath = path
		}
		jobs = append(jobs, fileJob{InputPath: path, OutputPath: outPath})
	}

	skipDir := ""
	if opts.OutputDir != "" && !opts.InPlace && !fileutil.IsMarkdown(opts.OutputDir) {
		if abs, err := filepath.Abs(opts.OutputDir); err == nil {
			skipDir = abs
		}
	}

	for _, inputPath := range inputs {
		info, err := os.Stat(inputPath)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		if !info.IsDir() {
			if err := validateMarkdownExtension(inputPath); err != nil {
				return nil, err
			}
			add(inputPath, "")
			continue
		}

		root := inputPath
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if path == root {
					return nil
				}
				if strings.HasPrefix(d.Name(), ".") || matchesAny(opts.Exclude, rel) || isDir(path, skipDir) {
					return filepath.SkipDir
				}
				return nil
			}

			if !includes(opts.Include, rel) || matchesAny(opts.Exclude, rel) {
				return nil
			}
			add(path, root)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return jobs, nil
}

// includes reports whether rel passes the include globs. Without globs
// every Markdown file is included.
func includes(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		return fileutil.IsMarkdown(rel)
	}
	return matchesAny(patterns, rel)
}

// matchesAny reports whether rel matches one of the doublestar patterns.
// Patterns are validated with the config, so match errors count as no match.
func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// isDir reports whether path resolves to the absolute directory target.
func isDir(path, target string) bool {
	if target == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	return err == nil && abs == target
}

// resolveOutputPath determines where the normalized copy of inputPath goes.
// Returns "" when there is no output directory (stdout).
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	if outputDir == "" {
		return ""
	}

	if fileutil.IsMarkdown(outputDir) {
		return outputDir
	}

	if baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, relPath)
		}
	}

	return filepath.Join(outputDir, filepath.Base(inputPath))
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !fileutil.IsMarkdown(path) {
		return fmt.Errorf("%w: got %q%s", ErrInvalidExtension, filepath.Ext(path), hints.ForExtension(fileutil.MarkdownExtensions))
	}
	return nil
}
