// Package config loads and validates the ladoc configuration file.
//
// Configuration errors are the only fatal error class in the pipeline:
// a run refuses to start on a bad config rather than degrading.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ladoc-dev/ladoc/internal/llm"
	"github.com/ladoc-dev/ladoc/pkg/types"
)

// Cache backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Defaults
const (
	DefaultCachePath      = ".ladoc-cache.json"
	DefaultCallsPerMinute = 20
	DefaultAcquireTimeout = 2 * time.Minute
)

// LLM configures the generation client
type LLM struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_seconds"`
}

// RateLimit configures the external-call budget
type RateLimit struct {
	CallsPerMinute     int `yaml:"calls_per_minute"`
	Burst              int `yaml:"burst"`
	AcquireTimeoutSecs int `yaml:"acquire_timeout_seconds"`
}

// Cache configures the description store
type Cache struct {
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	FlushEvery int    `yaml:"flush_every"`
}

// Run configures the worker pool
type Run struct {
	Workers       int  `yaml:"workers"`
	FileFanout    int  `yaml:"file_fanout"`
	DeadlineSecs  int  `yaml:"deadline_seconds"`
	GraceSecs     int  `yaml:"grace_seconds"`
	IncludeTests  bool `yaml:"include_tests"`
	IncludeVendor bool `yaml:"include_vendor"`
}

// Config is the full configuration document
type Config struct {
	LLM       LLM       `yaml:"llm"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Cache     Cache     `yaml:"cache"`
	Run       Run       `yaml:"run"`
}

// Default returns the configuration used when no file is present.
// Temperature is resolved here, not in the clients: the enrichment
// fingerprint records the configured value, so the value the client
// generates with has to be the same one.
func Default() *Config {
	return &Config{
		LLM: LLM{
			Provider:    "ollama",
			Temperature: llm.DefaultTemperature,
		},
		RateLimit: RateLimit{
			CallsPerMinute:     DefaultCallsPerMinute,
			AcquireTimeoutSecs: int(DefaultAcquireTimeout.Seconds()),
		},
		Cache: Cache{
			Backend: BackendFile,
			Path:    DefaultCachePath,
		},
		Run: Run{
			IncludeTests: false,
		},
	}
}

// Load reads the config file at path, merging it over defaults. A
// missing path ("" or nonexistent file with allowMissing) yields the
// defaults. Environment variables override the API key and provider.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot read %s: %v", types.ErrInvalidConfig, path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: cannot parse %s: %v", types.ErrInvalidConfig, path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets environment variables override file values
func applyEnv(cfg *Config) {
	if v := os.Getenv("LADOC_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = v
	}
}

// Validate checks the configuration. Every failure wraps
// types.ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			errs = append(errs, errors.New("llm.api_key is required for the openai provider"))
		}
	case "ollama":
	case "":
		errs = append(errs, errors.New("llm.provider is required"))
	default:
		errs = append(errs, fmt.Errorf("unknown llm.provider %q", c.LLM.Provider))
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature %v out of range [0, 2]", c.LLM.Temperature))
	}

	if c.RateLimit.CallsPerMinute < 0 {
		errs = append(errs, errors.New("rate_limit.calls_per_minute cannot be negative"))
	}

	switch c.Cache.Backend {
	case BackendFile, BackendSQLite, "":
	default:
		errs = append(errs, fmt.Errorf("unknown cache.backend %q", c.Cache.Backend))
	}

	if c.Run.Workers < 0 || c.Run.FileFanout < 0 {
		errs = append(errs, errors.New("run.workers and run.file_fanout cannot be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", types.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Timeout returns the LLM request timeout
func (c *Config) Timeout() time.Duration {
	if c.LLM.TimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(c.LLM.TimeoutSecs) * time.Second
}

// AcquireTimeout returns the rate limiter wait budget
func (c *Config) AcquireTimeout() time.Duration {
	if c.RateLimit.AcquireTimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(c.RateLimit.AcquireTimeoutSecs) * time.Second
}

// Deadline returns the overall run deadline
func (c *Config) Deadline() time.Duration {
	if c.Run.DeadlineSecs <= 0 {
		return 0
	}
	return time.Duration(c.Run.DeadlineSecs) * time.Second
}

// Grace returns the cancellation grace period
func (c *Config) Grace() time.Duration {
	if c.Run.GraceSecs <= 0 {
		return 0
	}
	return time.Duration(c.Run.GraceSecs) * time.Second
}
