// Package enrich obtains natural-language descriptions for extracted
// symbols, via the cache when possible and the external generation
// service otherwise.
//
// The contract is deliberately forgiving: Describe always returns a
// usable description. A cache hit skips the rate limiter and the
// external call entirely; a miss acquires a limiter slot, calls the
// service with bounded retries, and falls back to a placeholder when
// every attempt fails. A failed symbol never aborts the run.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ladoc-dev/ladoc/internal/cache"
	"github.com/ladoc-dev/ladoc/internal/fingerprint"
	"github.com/ladoc-dev/ladoc/internal/llm"
	"github.com/ladoc-dev/ladoc/internal/ratelimit"
	"github.com/ladoc-dev/ladoc/pkg/types"
)

// Placeholder is substituted when generation permanently fails for a
// symbol, so the pipeline never stalls on one record.
const Placeholder = "Description unavailable."

// ValidateFunc decides whether a sanitized response is acceptable.
// What counts as invalid versus acceptable short output is policy, not
// a fixed rule; swap the predicate to tighten or loosen it.
type ValidateFunc func(text string) error

// DefaultValidate accepts any non-empty sanitized response
func DefaultValidate(text string) error {
	if text == "" {
		return errors.New("empty description")
	}
	return nil
}

// Stats counts enrichment outcomes. All fields are incremented
// atomically by concurrent callers.
type Stats struct {
	ExternalCalls atomic.Int64
	Placeholders  atomic.Int64
	Failures      atomic.Int64
}

// Enricher runs the per-symbol enrichment pipeline. Shared state (the
// cache and the limiter) is injected, never ambient, so tests can
// substitute in-memory fakes.
type Enricher struct {
	store    cache.Store
	limiter  *ratelimit.Limiter
	client   llm.Client
	identity fingerprint.Identity
	retry    RetryConfig
	validate ValidateFunc
	logger   *slog.Logger
	stats    Stats
}

// Options configures optional Enricher behavior
type Options struct {
	Retry    *RetryConfig
	Validate ValidateFunc
	Logger   *slog.Logger
}

// New creates an Enricher. The fingerprint identity is derived from the
// client so cached entries are keyed to the exact generation setup.
func New(store cache.Store, limiter *ratelimit.Limiter, client llm.Client, temperature float32, opts Options) *Enricher {
	e := &Enricher{
		store:   store,
		limiter: limiter,
		client:  client,
		identity: fingerprint.Identity{
			Provider:      client.Provider(),
			Model:         client.Model(),
			Temperature:   temperature,
			PromptVersion: PromptVersion,
		},
		retry:    DefaultRetryConfig(),
		validate: DefaultValidate,
		logger:   slog.Default(),
	}
	if opts.Retry != nil {
		e.retry = *opts.Retry
	}
	if opts.Validate != nil {
		e.validate = opts.Validate
	}
	if opts.Logger != nil {
		e.logger = opts.Logger
	}
	return e
}

// Identity returns the generation identity used for fingerprinting
func (e *Enricher) Identity() fingerprint.Identity {
	return e.identity
}

// Stats returns the enricher's outcome counters
func (e *Enricher) Stats() *Stats {
	return &e.stats
}

// Describe returns a description for the symbol and whether it came
// from cache. It never returns an error for generation failures; those
// degrade to a placeholder. The only error cause is context
// cancellation, in which case the caller discards the result.
func (e *Enricher) Describe(ctx context.Context, sym *types.SymbolRecord, language string) (string, bool, error) {
	fp := fingerprint.Compute(sym, e.identity)

	if desc, ok := e.store.Get(fp); ok {
		return desc, true, nil
	}

	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	desc, err := e.generate(ctx, sym, language)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		e.stats.Failures.Add(1)
		e.stats.Placeholders.Add(1)
		e.logger.Warn("description generation failed, using placeholder",
			"symbol", sym.Name, "file", sym.Span.File, "error", err)
		return Placeholder, false, nil
	}

	e.store.Put(fp, desc)
	return desc, false, nil
}

// generate performs the rate-limited external call with retries. Every
// attempt, including retries, acquires its own limiter slot: the
// limiter bounds actual external calls, not symbols.
func (e *Enricher) generate(ctx context.Context, sym *types.SymbolRecord, language string) (string, error) {
	prompt := BuildPrompt(sym, language)
	invalidRetried := false

	text, err := retryWithBackoff(ctx, e.retry, func() (string, error) {
		if err := e.limiter.Acquire(ctx); err != nil {
			if errors.Is(err, ratelimit.ErrAcquireTimeout) {
				return "", fmt.Errorf("%w: %v", types.ErrRateLimitTimeout, err)
			}
			return "", err
		}

		e.stats.ExternalCalls.Add(1)
		raw, err := e.client.Generate(ctx, prompt)
		if err != nil {
			return "", err
		}
		clean := Sanitize(raw)
		if err := e.validate(clean); err != nil {
			return "", fmt.Errorf("%w: %v", llm.ErrInvalidResponse, err)
		}
		return clean, nil
	}, func(err error) bool {
		if errors.Is(err, types.ErrRateLimitTimeout) {
			return false
		}
		if errors.Is(err, llm.ErrInvalidResponse) {
			// Invalid payloads get exactly one more try
			if invalidRetried {
				return false
			}
			invalidRetried = true
			return true
		}
		return errors.Is(err, llm.ErrUnavailable) || errors.Is(err, llm.ErrTimeout)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGeneration, err)
	}

	return text, nil
}
