package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaClient generates descriptions through a local Ollama server's
// /api/generate endpoint.
type OllamaClient struct {
	baseURL     string
	model       string
	temperature float32
	maxTokens   int
	httpClient  *http.Client
}

// NewOllamaClient creates a client for a local Ollama instance
func NewOllamaClient(cfg Config) (*OllamaClient, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OllamaClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// Generate implements Client
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	options := map[string]interface{}{
		"temperature": c.temperature,
	}
	if c.maxTokens > 0 {
		options["num_predict"] = c.maxTokens
	}

	reqBody := map[string]interface{}{
		"model":   c.model,
		"prompt":  describeSystemPrompt + "\n\n" + prompt,
		"stream":  false,
		"options": options,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrInvalidResponse, err)
	}

	if strings.TrimSpace(apiResp.Response) == "" {
		return "", fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	return apiResp.Response, nil
}

// Provider implements Client
func (c *OllamaClient) Provider() string { return ProviderOllama }

// Model implements Client
func (c *OllamaClient) Model() string { return c.model }

// Close implements Client
func (c *OllamaClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
