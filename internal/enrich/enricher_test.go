package enrich

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladoc-dev/ladoc/internal/cache"
	"github.com/ladoc-dev/ladoc/internal/llm"
	"github.com/ladoc-dev/ladoc/internal/ratelimit"
	"github.com/ladoc-dev/ladoc/pkg/types"
)

// mockClient returns scripted responses in order, repeating the last
// one once the script runs out
type mockClient struct {
	mu        sync.Mutex
	responses []mockResponse
	calls     int
}

type mockResponse struct {
	text string
	err  error
}

func (m *mockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.calls
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.calls++
	r := m.responses[idx]
	return r.text, r.err
}

func (m *mockClient) Provider() string { return "mock" }
func (m *mockClient) Model() string    { return "mock-model" }
func (m *mockClient) Close() error     { return nil }

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func fastRetry() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func testStore(t *testing.T) cache.Store {
	t.Helper()
	s, err := cache.OpenFileStore(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testEnricher(t *testing.T, client llm.Client) *Enricher {
	t.Helper()
	return New(testStore(t), ratelimit.New(ratelimit.Config{}), client, 0.2, Options{Retry: fastRetry()})
}

func enrichTestSymbol() *types.SymbolRecord {
	return &types.SymbolRecord{
		Name:    "Add",
		Kind:    types.KindFunction,
		Span:    types.SourceSpan{File: "math.go", StartLine: 1, EndLine: 3},
		Snippet: "func Add(a, b int) int {\n\treturn a + b\n}",
	}
}

func TestDescribe_Success(t *testing.T) {
	client := &mockClient{responses: []mockResponse{{text: "Adds two integers."}}}
	e := testEnricher(t, client)

	desc, cached, err := e.Describe(context.Background(), enrichTestSymbol(), "go")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "Adds two integers.", desc)
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, int64(1), e.Stats().ExternalCalls.Load())
}

func TestDescribe_CacheHitSkipsClient(t *testing.T) {
	client := &mockClient{responses: []mockResponse{{text: "Adds two integers."}}}
	e := testEnricher(t, client)

	_, cached, err := e.Describe(context.Background(), enrichTestSymbol(), "go")
	require.NoError(t, err)
	assert.False(t, cached)

	desc, cached, err := e.Describe(context.Background(), enrichTestSymbol(), "go")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "Adds two integers.", desc)
	assert.Equal(t, 1, client.callCount(), "second describe must not call the service")
}

func TestDescribe_SanitizesResponse(t *testing.T) {
	client := &mockClient{responses: []mockResponse{
		{text: "```markdown\nAdds two integers.\n```"},
	}}
	e := testEnricher(t, client)

	desc, _, err := e.Describe(context.Background(), enrichTestSymbol(), "go")
	require.NoError(t, err)
	assert.Equal(t, "Adds two integers.", desc)
}

func TestDescribe_RetriesUnavailableThenSucceeds(t *testing.T) {
	client := &mockClient{responses: []mockResponse{
		{err: llm.ErrUnavailable},
		{err: llm.ErrTimeout},
		{text: "Adds two integers."},
	}}
	e := testEnricher(t, client)

	desc, cached, err := e.Describe(context.Background(), enrichTestSymbol(), "go")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "Adds two integers.", desc)
	assert.Equal(t, 3, client.callCount())
}

func TestDescribe_PlaceholderAfterExhaustedRetries(t *testing.T) {
	client := &mockClient{responses: []mockResponse{{err: llm.ErrUnavailable}}}
	e := testEnricher(t, client)

	desc, cached, err := e.Describe(context.Background(), enrichTestSymbol(), "go")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, Placeholder, desc)
	assert.Equal(t, 3, client.callCount())
	assert.Equal(t, int64(1), e.Stats().Placeholders.Load())
	assert.Equal(t, int64(1), e.Stats().Failures.Load())
}

func TestDescribe_PlaceholderNotCached(t *testing.T) {
	client := &mockClient{responses: []mockResponse{{err: llm.ErrUnavailable}}}
	store := testStore(t)
	e := New(store, ratelimit.New(ratelimit.Config{}), client, 0.2, Options{Retry: fastRetry()})

	desc, _, err := e.Describe(context.Background(), enrichTestSymbol(), "go")
	require.NoError(t, err)
	assert.Equal(t, Placeholder, desc)

	assert.Equal(t, 0, store.Stats().Entries, "failures must not poison the cache")
}

func TestDescribe_InvalidResponseRetriedOnce(t *testing.T) {
	// Empty text fails validation on every attempt; the invalid
	// classification allows exactly one retry
	client := &mockClient{responses: []mockResponse{{text: ""}}}
	e := testEnricher(t, client)

	desc, _, err := e.Describe(context.Background(), enrichTestSymbol(), "go")
	require.NoError(t, err)
	assert.Equal(t, Placeholder, desc)
	assert.Equal(t, 2, client.callCount())
}

func TestDescribe_InvalidThenValid(t *testing.T) {
	client := &mockClient{responses: []mockResponse{
		{text: ""},
		{text: "Adds two integers."},
	}}
	e := testEnricher(t, client)

	desc, _, err := e.Describe(context.Background(), enrichTestSymbol(), "go")
	require.NoError(t, err)
	assert.Equal(t, "Adds two integers.", desc)
	assert.Equal(t, 2, client.callCount())
}

func TestDescribe_RateLimitTimeoutNotRetried(t *testing.T) {
	client := &mockClient{responses: []mockResponse{{text: "never reached"}}}
	store := testStore(t)
	// One token only; second acquire times out immediately
	limiter := ratelimit.New(ratelimit.Config{CallsPerMinute: 1, AcquireTimeout: 10 * time.Millisecond})
	require.NoError(t, limiter.Acquire(context.Background()))

	e := New(store, limiter, client, 0.2, Options{Retry: fastRetry()})

	desc, _, err := e.Describe(context.Background(), enrichTestSymbol(), "go")
	require.NoError(t, err)
	assert.Equal(t, Placeholder, desc)
	assert.Equal(t, 0, client.callCount(), "timed-out acquire must not reach the service")
}

func TestDescribe_ContextCancelledReturnsError(t *testing.T) {
	client := &mockClient{responses: []mockResponse{{text: "unused"}}}
	e := testEnricher(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.Describe(ctx, enrichTestSymbol(), "go")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDescribe_CustomValidate(t *testing.T) {
	client := &mockClient{responses: []mockResponse{{text: "short"}}}
	store := testStore(t)
	validate := func(text string) error {
		if len(text) < 10 {
			return assert.AnError
		}
		return nil
	}
	e := New(store, ratelimit.New(ratelimit.Config{}), client, 0.2, Options{
		Retry:    fastRetry(),
		Validate: validate,
	})

	desc, _, err := e.Describe(context.Background(), enrichTestSymbol(), "go")
	require.NoError(t, err)
	assert.Equal(t, Placeholder, desc)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "A helper.", "A helper."},
		{"whitespace", "  A helper. \n", "A helper."},
		{"code fence", "```\nA helper.\n```", "A helper."},
		{"fence with language", "```text\nA helper.\n```", "A helper."},
		{"triple quotes", `"""A helper."""`, "A helper."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	sym := &types.SymbolRecord{
		Name: "Add",
		Kind: types.KindFunction,
		Signature: []types.Parameter{
			{Name: "a", Type: "int"},
			{Name: "b", Type: "int"},
		},
		ReturnType: "int",
		Snippet:    "func Add(a, b int) int { return a + b }",
	}

	prompt := BuildPrompt(sym, "go")
	assert.Contains(t, prompt, "Name: Add")
	assert.Contains(t, prompt, "(a int, b int) -> int")
	assert.Contains(t, prompt, "func Add(a, b int) int")
	assert.Contains(t, prompt, "go function")
}

func TestBuildPrompt_KindsDiffer(t *testing.T) {
	fn := &types.SymbolRecord{Name: "f", Kind: types.KindFunction, Snippet: "x"}
	class := &types.SymbolRecord{Name: "C", Kind: types.KindClass, Snippet: "x"}
	method := &types.SymbolRecord{Name: "m", Kind: types.KindMethod, Snippet: "x"}

	assert.Contains(t, BuildPrompt(fn, "go"), "function")
	assert.Contains(t, BuildPrompt(class, "go"), "type")
	assert.Contains(t, BuildPrompt(method, "go"), "method")
}
