package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	mdtex "github.com/alnah/go-mdtex"
	"github.com/alnah/go-mdtex/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrReadMarkdown  = errors.New("failed to read markdown file")
	ErrWriteHTML     = errors.New("failed to write HTML file")
	ErrConverterInit = errors.New("failed to initialize converter")
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input mdtex.Input) (*mdtex.Result, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*mdtex.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CLIConverter, error)
	Release(CLIConverter)
	Size() int
}

// poolAdapter bridges mdtex.ConverterPool to the CLI Pool interface.
type poolAdapter struct {
	pool *mdtex.ConverterPool
}

// Compile-time interface implementation check.
var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire() (CLIConverter, error) {
	return a.pool.Acquire()
}

// Release panics on a foreign type: the adapter only ever hands out
// *mdtex.Converter, so anything else is a programmer error.
func (a *poolAdapter) Release(c CLIConverter) {
	conv, ok := c.(*mdtex.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", c))
	}
	a.pool.Release(conv)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

// renderParams groups per-batch settings shared by all workers.
type renderParams struct {
	standalone   bool
	rewritePaths bool
}

// RenderResult holds the outcome of a single file render.
type RenderResult struct {
	InputPath  string
	OutputPath string
	Stats      mdtex.RenderStats
	Warning    string
	Err        error
	Duration   time.Duration
}

// renderBatch processes files concurrently using the converter pool.
func renderBatch(ctx context.Context, pool Pool, files []FileToRender, params *renderParams) []RenderResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]RenderResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = RenderResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %v", ErrConverterInit, err),
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = RenderResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = renderFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderFile processes a single file and returns the result.
func renderFile(ctx context.Context, conv CLIConverter, f FileToRender, params *renderParams) RenderResult {
	start := time.Now()
	result := RenderResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		result.Duration = time.Since(start)
		return result
	}

	input := mdtex.Input{Markdown: string(content)}
	if params.standalone {
		input.Title = documentTitle(string(content), f.InputPath)
	}
	if params.rewritePaths {
		input.SourceDir = filepath.Dir(f.InputPath)
	}

	res, err := conv.Convert(ctx, input)
	if err != nil {
		if res == nil || !errors.Is(err, mdtex.ErrCacheSave) {
			result.Err = err
			result.Duration = time.Since(start)
			return result
		}
		// The HTML is complete; only cache persistence failed. Degrade to
		// a warning so the output is not lost.
		result.Warning = err.Error() + hints.ForCacheWrite()
	}

	result.Stats = res.Stats

	outDir := filepath.Dir(f.OutputPath)
	if err := os.MkdirAll(outDir, dirPermissions); err != nil {
		result.Err = fmt.Errorf("creating output directory: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	// #nosec G306 -- rendered HTML is meant to be readable
	if err := os.WriteFile(f.OutputPath, res.HTML, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteHTML, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Duration = time.Since(start)
	return result
}

// firstHeadingPattern matches the first # heading in markdown content.
var firstHeadingPattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// documentTitle picks the standalone document title: the first heading,
// falling back to the file name without extension.
func documentTitle(markdown, path string) string {
	if m := firstHeadingPattern.FindStringSubmatch(markdown); len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// printResults outputs render results using the environment writers and
// returns the failure count. Warnings print regardless of quiet: they
// signal degraded behavior the user should know about.
func printResults(results []RenderResult, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
			continue
		}

		succeeded++
		if r.Warning != "" {
			fmt.Fprintf(env.Stderr, "warning: %s\n", r.Warning)
		}
		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v, %d expressions: %d cached, %d compiled, %d failed)\n",
				r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond),
				r.Stats.Expressions, r.Stats.CacheHits, r.Stats.Compiled, r.Stats.Failed)
			if r.Stats.SkippedCacheLines > 0 {
				fmt.Fprintf(env.Stderr, "warning: %s: skipped %d malformed cache line(s)\n",
					r.InputPath, r.Stats.SkippedCacheLines)
			}
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}
