package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	revista "github.com/larabashadi/Revista-2"
)

// Importer is the slice of revista.Converter the import command needs.
type Importer interface {
	Import(ctx context.Context, data []byte, opts revista.ImportOptions) (*revista.ImportResult, error)
}

// Compile-time interface implementation check.
var _ Importer = (*revista.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() Importer
	Release(Importer)
	Size() int
}

// poolAdapter exposes a *revista.ConverterPool as a Pool.
type poolAdapter struct {
	pool *revista.ConverterPool
}

var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire() Importer {
	conv := a.pool.Acquire()
	if conv == nil {
		return nil
	}
	return conv
}

func (a *poolAdapter) Release(imp Importer) {
	conv, ok := imp.(*revista.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", imp))
	}
	a.pool.Release(conv)
}

func (a *poolAdapter) Size() int { return a.pool.Size() }

// importJob is one PDF to import.
type importJob struct {
	InputPath  string
	OutputPath string
}

// ImportFileResult holds the outcome of a single import.
type ImportFileResult struct {
	InputPath  string
	OutputPath string
	Pages      int
	Assets     int
	Warnings   []revista.Warning
	Err        error
	Duration   time.Duration
}

// runImport implements "revista import".
func runImport(ctx context.Context, args []string, env *Environment) error {
	f, files, err := parseImportFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		printImportUsage(env.Stderr)
		return ErrNoInput
	}

	s, err := newSession(f.common, f.store, env)
	if err != nil {
		return err
	}
	opts := s.importOptions(f)
	if err := opts.Preset.Validate(); err != nil {
		return err
	}

	workers := f.workers
	if workers == 0 {
		workers = s.cfg.Workers
	}
	size := revista.ResolvePoolSize(workers)
	if size > len(files) {
		size = len(files)
	}
	pool, err := revista.NewConverterPool(size, s.converterOptions(0)...)
	if err != nil {
		return err
	}
	defer pool.Close()
	s.log.Debug("pool ready", revista.Int("size", size))

	jobs := make([]importJob, len(files))
	for i, in := range files {
		jobs[i] = importJob{InputPath: in, OutputPath: importOutputPath(in, f.outDir)}
	}

	results := importBatch(ctx, &poolAdapter{pool: pool}, jobs, opts)
	return reportImport(env, f.common, results)
}

// importOptions merges flags over config.
func (s *session) importOptions(f *importFlags) revista.ImportOptions {
	opts := revista.ImportOptions{
		Preset:      revista.Preset(s.cfg.Import.Preset),
		Mode:        s.cfg.Import.Mode,
		StoreSource: s.cfg.Import.KeepSource || f.keepSource,
	}
	if f.preset != "" {
		opts.Preset = revista.Preset(f.preset)
	}
	if f.mode != "" {
		opts.Mode = f.mode
	}
	return opts
}

// importOutputPath places <name>.json next to the input, or in outDir.
func importOutputPath(input, outDir string) string {
	out := outputPath(input, "", ".json")
	if outDir != "" {
		out = filepath.Join(outDir, filepath.Base(out))
	}
	return out
}

// importBatch imports files concurrently using the converter pool.
func importBatch(ctx context.Context, pool Pool, jobs []importJob, opts revista.ImportOptions) []ImportFileResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(jobs) {
		concurrency = len(jobs)
	}

	results := make([]ImportFileResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			imp := pool.Acquire()
			if imp == nil {
				for idx := range queue {
					results[idx] = ImportFileResult{InputPath: jobs[idx].InputPath, Err: ErrConverterInit}
				}
				return
			}
			defer pool.Release(imp)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = ImportFileResult{InputPath: jobs[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = importFile(ctx, imp, jobs[idx], opts)
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

// importFile imports one PDF and writes its document JSON.
func importFile(ctx context.Context, imp Importer, job importJob, opts revista.ImportOptions) ImportFileResult {
	start := time.Now()
	result := ImportFileResult{InputPath: job.InputPath, OutputPath: job.OutputPath}
	done := func(err error) ImportFileResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	data, err := readInput(job.InputPath)
	if err != nil {
		return done(err)
	}

	res, err := imp.Import(ctx, data, opts)
	if err != nil {
		return done(err)
	}
	result.Pages = len(res.Document.Pages)
	result.Assets = len(res.Assets)
	result.Warnings = res.Warnings

	var buf bytes.Buffer
	if err := res.Document.Encode(&buf); err != nil {
		return done(fmt.Errorf("encoding document: %w", err))
	}
	return done(writeOutput(job.OutputPath, buf.Bytes()))
}

// ImportSummary holds the count of succeeded and failed imports.
type ImportSummary struct {
	Succeeded int
	Failed    int
}

// countImports tallies succeeded and failed imports.
func countImports(results []ImportFileResult) ImportSummary {
	var summary ImportSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// reportImport prints per-file results and returns the first error when
// any import failed.
func reportImport(env *Environment, common commonFlags, results []ImportFileResult) error {
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", r.InputPath, r.Err)
			}
			continue
		}
		printWarnings(env.Stderr, r.InputPath, r.Warnings)
		if !common.quiet {
			fmt.Fprintf(env.Stdout, "Created %s (%d pages, %d assets, %s)\n",
				r.OutputPath, r.Pages, r.Assets, r.Duration.Round(time.Millisecond))
		}
	}

	if len(results) > 1 && !common.quiet {
		summary := countImports(results)
		fmt.Fprintf(env.Stdout, "%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}
	return firstErr
}

// printWarnings prints one line per warning, prefixed with the source path.
func printWarnings(w io.Writer, path string, warnings []revista.Warning) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "warning: %s: %v\n", path, warn)
	}
}
