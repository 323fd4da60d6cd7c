package main

import (
	"log/slog"

	"github.com/ladoc-dev/ladoc/internal/analyzer"
	"github.com/ladoc-dev/ladoc/internal/cache"
	"github.com/ladoc-dev/ladoc/internal/config"
	"github.com/ladoc-dev/ladoc/internal/enrich"
	"github.com/ladoc-dev/ladoc/internal/llm"
	"github.com/ladoc-dev/ladoc/internal/ratelimit"
	"github.com/ladoc-dev/ladoc/internal/runner"
)

// pipeline bundles the wired components behind the CLI commands
type pipeline struct {
	Runner    *runner.Runner
	Store     cache.Store
	RunConfig runner.Config
	client    llm.Client
}

// buildPipeline wires cache, limiter, client, enricher, and runner from
// a validated config. Shared state is constructed once here and passed
// down by reference.
func buildPipeline(cfg *config.Config) (*pipeline, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(ratelimit.Config{
		CallsPerMinute: cfg.RateLimit.CallsPerMinute,
		Burst:          cfg.RateLimit.Burst,
		AcquireTimeout: cfg.AcquireTimeout(),
	})

	client, err := llm.New(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.Timeout(),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	enricher := enrich.New(store, limiter, client, cfg.LLM.Temperature, enrich.Options{})

	registry := analyzer.NewDefaultRegistry()

	return &pipeline{
		Runner: runner.New(registry, enricher, store, slog.Default()),
		Store:  store,
		RunConfig: runner.Config{
			Workers:       cfg.Run.Workers,
			FileFanout:    cfg.Run.FileFanout,
			Deadline:      cfg.Deadline(),
			GracePeriod:   cfg.Grace(),
			IncludeTests:  cfg.Run.IncludeTests,
			IncludeVendor: cfg.Run.IncludeVendor,
		},
		client: client,
	}, nil
}

// Close releases the pipeline's resources
func (p *pipeline) Close() {
	if err := p.Store.Close(); err != nil {
		slog.Warn("cache close failed", "error", err)
	}
	_ = p.client.Close()
}

// openStore opens the configured cache backend
func openStore(cfg *config.Config) (cache.Store, error) {
	path := cfg.Cache.Path
	if path == "" {
		path = config.DefaultCachePath
	}

	if cfg.Cache.Backend == config.BackendSQLite {
		return cache.OpenSQLiteStore(path, slog.Default())
	}

	opts := []cache.FileStoreOption{}
	if cfg.Cache.FlushEvery > 0 {
		opts = append(opts, cache.WithFlushEvery(cfg.Cache.FlushEvery))
	}
	return cache.OpenFileStore(path, opts...)
}
