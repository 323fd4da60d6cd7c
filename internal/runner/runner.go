// Package runner drives analysis and enrichment across a source tree
// with bounded parallelism.
//
// Two independent knobs control concurrency: Workers caps how many
// files are processed at once, and FileFanout caps concurrent symbol
// enrichments within one file so a single huge file cannot starve the
// rate-limiter budget. The rate limiter itself is the only throttle on
// external calls.
//
// Each file is a bulkhead: an analysis failure is recorded on that
// file's model and the others proceed. On cancellation, in-flight files
// are given a grace period; a file that cannot finish is discarded
// rather than emitted half-filled.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ladoc-dev/ladoc/internal/aggregate"
	"github.com/ladoc-dev/ladoc/internal/analyzer"
	"github.com/ladoc-dev/ladoc/internal/cache"
	"github.com/ladoc-dev/ladoc/internal/enrich"
	"github.com/ladoc-dev/ladoc/pkg/types"
)

// Config controls a documentation run
type Config struct {
	// Workers is the maximum number of files processed concurrently.
	// Defaults to runtime.NumCPU().
	Workers int

	// FileFanout is the maximum concurrent symbol enrichments within
	// one file. Defaults to 4.
	FileFanout int

	// Deadline bounds the whole run. Zero means no deadline.
	Deadline time.Duration

	// GracePeriod is how long in-flight work may keep running after
	// cancellation before being abandoned. Defaults to 5s.
	GracePeriod time.Duration

	// IncludeTests includes test files in discovery
	IncludeTests bool

	// IncludeVendor includes vendor directories in discovery
	IncludeVendor bool
}

// DefaultFileFanout caps per-file symbol enrichment concurrency
const DefaultFileFanout = 4

// DefaultGracePeriod bounds how long in-flight work may run after cancel
const DefaultGracePeriod = 5 * time.Second

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.FileFanout <= 0 {
		c.FileFanout = DefaultFileFanout
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = DefaultGracePeriod
	}
}

// Runner coordinates the pipeline: discover -> analyze -> enrich ->
// aggregate. Shared state (cache, limiter via the enricher) is injected
// at construction.
type Runner struct {
	registry *analyzer.Registry
	enricher *enrich.Enricher
	store    cache.Store
	logger   *slog.Logger
}

// New creates a Runner
func New(registry *analyzer.Registry, enricher *enrich.Enricher, store cache.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		registry: registry,
		enricher: enricher,
		store:    store,
		logger:   logger,
	}
}

// Run analyzes and enriches every supported file under projectPath and
// returns the aggregated project model. A completed run always
// produces a ProjectModel, possibly with placeholders and an error
// list; only discovery of an unreadable root fails outright.
func (r *Runner) Run(ctx context.Context, projectPath string, cfg Config) (*types.ProjectModel, error) {
	cfg.applyDefaults()
	start := time.Now()

	if cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Deadline)
		defer cancel()
	}

	files, err := r.discoverFiles(projectPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	r.logger.Info("run starting", "project", projectPath, "files", len(files), "workers", cfg.Workers)

	models, runErrs := r.processFiles(ctx, projectPath, files, cfg)

	stats := types.Statistics{
		Elapsed: time.Since(start),
		Errors:  runErrs,
	}
	cacheStats := r.store.Stats()
	stats.CacheHits = cacheStats.Hits
	stats.CacheMisses = cacheStats.Misses
	enrichStats := r.enricher.Stats()
	stats.ExternalCalls = enrichStats.ExternalCalls.Load()
	stats.Placeholders = enrichStats.Placeholders.Load()

	model := aggregate.Aggregate(filepath.Base(projectPath), models, stats)

	if err := r.store.Flush(); err != nil {
		r.logger.Warn("cache flush at end of run failed", "error", err)
	}

	r.logger.Info("run complete",
		"files", model.Stats.FileCount,
		"symbols", model.Stats.SymbolCount,
		"cache_hits", model.Stats.CacheHits,
		"external_calls", model.Stats.ExternalCalls,
		"elapsed", model.Stats.Elapsed)

	return model, nil
}

// processFiles fans out file work across the worker pool. Completed
// FileModels are collected regardless of what happens to other files;
// files still in flight at cancellation get the grace period and are
// dropped if they cannot finish.
func (r *Runner) processFiles(ctx context.Context, root string, files []string, cfg Config) ([]types.FileModel, []string) {
	var (
		mu      sync.Mutex
		models  []types.FileModel
		runErrs []string
	)

	// workCtx outlives the run context by the grace period, so
	// in-flight external calls may finish after a cancel without
	// running forever
	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWork()
	stopGrace := context.AfterFunc(ctx, func() {
		time.AfterFunc(cfg.GracePeriod, cancelWork)
	})
	defer stopGrace()

	var g errgroup.Group
	g.SetLimit(cfg.Workers)

	for _, filePath := range files {
		if ctx.Err() != nil {
			// Cancelled: stop dispatching new work
			break
		}

		g.Go(func() error {
			model, err := r.processFile(workCtx, root, filePath, cfg)
			if err != nil {
				// Cancellation mid-file: discard partial model
				return nil
			}

			mu.Lock()
			models = append(models, *model)
			if model.Failed() {
				runErrs = append(runErrs, fmt.Sprintf("%s: %s", model.Path, *model.AnalysisError))
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return models, runErrs
}

// processFile analyzes one file and enriches its symbols. Analysis
// failure produces a FileModel with AnalysisError set and no symbols.
// A non-nil error means cancellation; the partial model is discarded.
func (r *Runner) processFile(ctx context.Context, root, filePath string, cfg Config) (*types.FileModel, error) {
	relPath, err := filepath.Rel(root, filePath)
	if err != nil {
		relPath = filePath
	}
	relPath = filepath.ToSlash(relPath)

	a, ok := r.registry.ForFile(filePath)
	if !ok {
		// discoverFiles only emits supported files
		return nil, fmt.Errorf("no analyzer for %s", filePath)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return failedModel(relPath, a.Language(), fmt.Sprintf("read failed: %v", err)), nil
	}

	model, err := a.Analyze(relPath, content)
	if err != nil {
		r.logger.Warn("analysis failed", "file", relPath, "error", err)
		return failedModel(relPath, a.Language(), err.Error()), nil
	}

	if err := r.enrichSymbols(ctx, model, cfg); err != nil {
		return nil, err
	}

	return model, nil
}

// enrichSymbols runs symbol enrichment for one file with the per-file
// fan-out limit
func (r *Runner) enrichSymbols(ctx context.Context, model *types.FileModel, cfg Config) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.FileFanout)

	for i := range model.Symbols {
		sym := &model.Symbols[i]
		g.Go(func() error {
			desc, _, err := r.enricher.Describe(gctx, sym, model.Language)
			if err != nil {
				return err
			}
			// Each goroutine owns exactly one record; no coordination
			// needed for the write
			sym.SetDescription(desc)
			return nil
		})
	}

	return g.Wait()
}

// failedModel builds the bulkhead model for a file that could not be
// analyzed
func failedModel(relPath, language, msg string) *types.FileModel {
	return &types.FileModel{
		Path:          relPath,
		Language:      language,
		Symbols:       []types.SymbolRecord{},
		AnalysisError: &msg,
	}
}

// discoverFiles walks the tree collecting files the registry supports,
// skipping hidden and vendor directories
func (r *Runner) discoverFiles(root string, cfg Config) ([]string, error) {
	var files []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			name := info.Name()
			if !cfg.IncludeVendor && (name == "vendor" || name == "node_modules") {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := r.registry.ForFile(path); !ok {
			return nil
		}
		if !cfg.IncludeTests && isTestFile(path) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// isTestFile recognizes conventional test files across languages
func isTestFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, "_test.go") ||
		strings.HasPrefix(base, "test_") ||
		strings.HasSuffix(base, "_test.py")
}
