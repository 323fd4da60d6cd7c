package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladoc-dev/ladoc/pkg/types"
)

func strPtr(s string) *string { return &s }

func testModel() *types.ProjectModel {
	return &types.ProjectModel{
		ProjectName: "demo",
		GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Files: []types.FileModel{
			{
				Path:     "cmd/main.go",
				Language: "go",
				Symbols: []types.SymbolRecord{
					{
						Name:        "main",
						Kind:        types.KindFunction,
						Signature:   []types.Parameter{},
						Description: strPtr("Program entry point."),
					},
				},
			},
			{
				Path:          "util/broken.py",
				Language:      "python",
				AnalysisError: strPtr("syntax error in util/broken.py"),
			},
			{
				Path:     "util/strings.py",
				Language: "python",
				Symbols: []types.SymbolRecord{
					{
						Name:     "shout",
						Kind:     types.KindMethod,
						Receiver: "Formatter",
						Signature: []types.Parameter{
							{Name: "self"},
							{Name: "text", Type: "str", Default: `""`},
						},
						ReturnType:  "str",
						Description: strPtr("Upper-cases the given text."),
					},
				},
			},
		},
		Stats: types.Statistics{FileCount: 3, SymbolCount: 2, FailedFiles: 1},
	}
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown(testModel()))

	assert.Contains(t, out, "# demo\n")
	assert.Contains(t, out, "3 files, 2 symbols (1 files failed analysis).")

	assert.Contains(t, out, "## `cmd/main.go`")
	assert.Contains(t, out, "### function `main`")
	assert.Contains(t, out, "Program entry point.")

	assert.Contains(t, out, "> Analysis failed: syntax error in util/broken.py")

	assert.Contains(t, out, "### method `Formatter.shout`")
	assert.Contains(t, out, "| Parameter | Type | Default |")
	assert.Contains(t, out, "| self | - | - |")
	assert.Contains(t, out, `| text | str | "" |`)
	assert.Contains(t, out, "Returns: `str`")
}

func TestMarkdown_FileOrderFollowsModel(t *testing.T) {
	out := string(Markdown(testModel()))

	first := "## `cmd/main.go`"
	second := "## `util/broken.py`"
	third := "## `util/strings.py`"

	i1 := strings.Index(out, first)
	i2 := strings.Index(out, second)
	i3 := strings.Index(out, third)
	require.GreaterOrEqual(t, i1, 0)
	assert.Less(t, i1, i2)
	assert.Less(t, i2, i3)
}

func TestMarkdown_EmptyModel(t *testing.T) {
	model := &types.ProjectModel{ProjectName: "empty", GeneratedAt: time.Now().UTC()}
	out := string(Markdown(model))

	assert.Contains(t, out, "# empty")
	assert.Contains(t, out, "0 files, 0 symbols.")
}

func TestMarkdown_FileWithoutSymbols(t *testing.T) {
	model := &types.ProjectModel{
		ProjectName: "demo",
		Files:       []types.FileModel{{Path: "empty.go", Language: "go"}},
		Stats:       types.Statistics{FileCount: 1},
	}
	out := string(Markdown(model))

	assert.Contains(t, out, "No documented symbols.")
}
