package llm

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by NewFromEnv
const (
	EnvProvider  = "LADOC_LLM_PROVIDER"
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvOllamaURL = "OLLAMA_BASE_URL"
)

// New creates a client with explicit configuration
func New(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg)
	case ProviderOllama:
		return NewOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: %s, %s)",
			cfg.Provider, ProviderOpenAI, ProviderOllama)
	}
}

// NewFromEnv creates a client from environment variables.
// Priority:
// 1. LADOC_LLM_PROVIDER (openai, ollama)
// 2. OPENAI_API_KEY present -> openai
// 3. Default to ollama (local, no key needed)
func NewFromEnv() (Client, error) {
	cfg := Config{
		Provider:    DetectProvider(),
		APIKey:      os.Getenv(EnvOpenAIKey),
		BaseURL:     os.Getenv(EnvOllamaURL),
		Temperature: DefaultTemperature,
	}
	return New(cfg)
}

// DetectProvider returns the provider NewFromEnv would select
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvOpenAIKey) != "" {
		return ProviderOpenAI
	}
	return ProviderOllama
}
