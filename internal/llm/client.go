// Package llm is the boundary to the external text-generation service.
//
// The pipeline consumes a single Client interface and treats every
// failure as one of three classified kinds: ErrUnavailable and
// ErrTimeout are retried with backoff by the enrichment pipeline,
// ErrInvalidResponse is retried once and then downgraded to a
// placeholder. Retry policy lives in the caller, not here.
package llm

import (
	"context"
	"errors"
	"time"
)

// Classified failure kinds. Providers wrap their transport errors in
// exactly one of these so the pipeline can decide retry behavior
// without knowing the provider.
var (
	// ErrUnavailable indicates the service could not be reached or
	// returned a server-side failure
	ErrUnavailable = errors.New("generation service unavailable")

	// ErrTimeout indicates the call exceeded its deadline
	ErrTimeout = errors.New("generation call timed out")

	// ErrInvalidResponse indicates the service answered but the payload
	// was empty or malformed
	ErrInvalidResponse = errors.New("invalid generation response")
)

// Provider names
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Defaults
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultOllamaModel = "qwen2.5-coder:7b"
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.2
)

// Config selects and parameterizes a provider
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Client generates text for a prompt. Implementations must be safe for
// concurrent use; the rate limiter upstream is the only throttle on
// call concurrency.
type Client interface {
	// Generate returns the generated text, or an error wrapping one of
	// ErrUnavailable, ErrTimeout, ErrInvalidResponse
	Generate(ctx context.Context, prompt string) (string, error)

	// Provider returns the provider name
	Provider() string

	// Model returns the model identifier
	Model() string

	// Close releases any resources held by the client
	Close() error
}
