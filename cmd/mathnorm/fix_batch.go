package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/alnah/go-mathnorm/internal/config"
	"github.com/alnah/go-mathnorm/internal/fileutil"
	"github.com/alnah/go-mathnorm/internal/hints"
)

// batchOptions controls what fixFile does with the normalized text.
type batchOptions struct {
	Workers int
	Review  bool // --check or --diff: never write
	Diff    bool
}

// FileResult holds the outcome of a single file.
type FileResult struct {
	InputPath  string
	OutputPath string // "" when the result goes to stdout
	Changed    bool
	Written    bool
	Output     string // normalized text, kept only for stdout results
	Diff       string
	Err        error
	Duration   time.Duration
}

// fixFiles discovers the Markdown files under paths and normalizes them.
func fixFiles(ctx context.Context, n Normalizer, paths []string, flags *fixFlags, cfg *config.Config, workers int, env *Environment) error {
	jobs, err := discoverFiles(paths, discoveryOptions{
		OutputDir: cfg.Output.DefaultDir,
		InPlace:   cfg.Output.InPlace,
		Include:   cfg.Input.Include,
		Exclude:   cfg.Input.Exclude,
	})
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("%w: no markdown files found in %v", ErrInputUnavailable, paths)
	}

	review := flags.check || flags.diff
	if !review && len(jobs) > 1 {
		if jobs[0].OutputPath == "" {
			return fmt.Errorf("%w: %d files found; use --output <dir> or --in-place", ErrUsage, len(jobs))
		}
		if !cfg.Output.InPlace && fileutil.IsMarkdown(cfg.Output.DefaultDir) {
			return fmt.Errorf("%w: --output %s names a file but %d files were found", ErrUsage, cfg.Output.DefaultDir, len(jobs))
		}
	}

	results := fixBatch(ctx, n, jobs, batchOptions{Workers: workers, Review: review, Diff: flags.diff})

	summary := printResults(results, flags, env)
	if ctx.Err() != nil {
		return fmt.Errorf("interrupted: %w", ctx.Err())
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed", summary.Failed)
	}
	if flags.check && summary.Changed > 0 {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stderr, "%d file(s) would change%s\n", summary.Changed, hints.ForWouldChange())
		}
		return ErrWouldChange
	}
	return nil
}

// fixBatch processes files concurrently with a bounded set of workers.
// Results keep the order of jobs.
func fixBatch(ctx context.Context, n Normalizer, jobs []fileJob, opts batchOptions) []FileResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := max(1, min(opts.Workers, len(jobs)))

	results := make([]FileResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = FileResult{
						InputPath: jobs[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = fixFile(ctx, n, jobs[idx], opts)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// fixFile processes a single file and returns the result.
func fixFile(ctx context.Context, n Normalizer, job fileJob, opts batchOptions) FileResult {
	start := time.Now()
	result := FileResult{
		InputPath:  job.InputPath,
		OutputPath: job.OutputPath,
	}
	done := func(err error) FileResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(job.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return done(fmt.Errorf("%w: %v", ErrReadInput, err))
	}

	out, err := n.Normalize(ctx, string(content))
	if err != nil {
		return done(err)
	}
	result.Changed = out != string(content)

	if opts.Diff && result.Changed {
		result.Diff = unifiedDiff(job.InputPath, string(content), out)
	}
	if opts.Review {
		return done(nil)
	}

	if job.OutputPath == "" {
		result.Output = out
		return done(nil)
	}

	perm := os.FileMode(filePermissions)
	if job.OutputPath == job.InputPath {
		if !result.Changed {
			return done(nil)
		}
		if info, err := os.Stat(job.InputPath); err == nil {
			perm = info.Mode().Perm()
		}
	}

	if err := writeOutputFile(job.OutputPath, []byte(out), perm); err != nil {
		return done(err)
	}
	result.Written = true
	return done(nil)
}

// ResultSummary holds the counts of a batch.
type ResultSummary struct {
	Changed   int
	Unchanged int
	Failed    int
}

// countResults tallies changed, unchanged and failed files.
func countResults(results []FileResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.Changed:
			summary.Changed++
		default:
			summary.Unchanged++
		}
	}
	return summary
}

// printResults outputs batch results and returns the tally.
// Normalized text and diffs go to Stdout; failures go to Stderr.
func printResults(results []FileResult, flags *fixFlags, env *Environment) ResultSummary {
	summary := countResults(results)
	review := flags.check || flags.diff
	quiet := flags.common.quiet

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if r.Diff != "" {
			fmt.Fprint(env.Stdout, r.Diff)
		}
		if !review && r.OutputPath == "" {
			_, _ = io.WriteString(env.Stdout, r.Output)
			continue
		}

		if quiet {
			continue
		}

		switch {
		case flags.check && !flags.diff && r.Changed:
			fmt.Fprintf(env.Stdout, "would fix %s\n", r.InputPath)
		case r.Written && flags.common.verbose:
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		case r.Written:
			fmt.Fprintf(env.Stdout, "Wrote %s\n", r.OutputPath)
		case !review && flags.common.verbose:
			fmt.Fprintf(env.Stdout, "Unchanged %s\n", r.InputPath)
		}
	}

	if !quiet && len(results) > 1 {
		w := env.Stdout
		if flags.diff {
			w = env.Stderr
		}
		fmt.Fprintf(w, "\n%d changed, %d unchanged, %d failed\n", summary.Changed, summary.Unchanged, summary.Failed)
	}

	return summary
}
