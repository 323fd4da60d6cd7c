package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid directory", dir, nil},
		{"relative path", "relative/path", ErrPathNotAbsolute},
		{"missing path", filepath.Join(dir, "nope"), ErrPathNotFound},
		{"file not directory", file, ErrNotDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePath(tt.path)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMCPError(t *testing.T) {
	err := newMCPError(ErrorCodeInvalidParams, "bad params", map[string]interface{}{"param": "path"})

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
	assert.Contains(t, mcpErr.Error(), "-32602")
	assert.Contains(t, mcpErr.Error(), "bad params")
}

func TestToolDefinitions(t *testing.T) {
	gen := generateDocsTool()
	assert.Equal(t, "generate_docs", gen.Name)
	assert.Contains(t, gen.InputSchema.Required, "path")
	assert.Contains(t, gen.InputSchema.Properties, "include_tests")

	stats := cacheStatsTool()
	assert.Equal(t, "cache_stats", stats.Name)
	assert.Empty(t, stats.InputSchema.Required)
}

func TestFormatJSON(t *testing.T) {
	out := formatJSON(map[string]interface{}{"entries": 3})
	assert.Contains(t, out, `"entries": 3`)
}
