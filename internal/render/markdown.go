// Package render produces documents from a finished ProjectModel. It
// consumes the model only; it never touches the cache, the limiter, or
// raw source files, and it relies on the model's aggregation order.
package render

import (
	"fmt"
	"strings"

	"github.com/ladoc-dev/ladoc/pkg/types"
)

// Markdown renders the project model as a Markdown document
func Markdown(model *types.ProjectModel) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", model.ProjectName)
	fmt.Fprintf(&b, "Generated at %s.\n\n", model.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "%d files, %d symbols", model.Stats.FileCount, model.Stats.SymbolCount)
	if model.Stats.FailedFiles > 0 {
		fmt.Fprintf(&b, " (%d files failed analysis)", model.Stats.FailedFiles)
	}
	b.WriteString(".\n\n")

	for i := range model.Files {
		renderFile(&b, &model.Files[i])
	}

	return []byte(b.String())
}

func renderFile(b *strings.Builder, file *types.FileModel) {
	fmt.Fprintf(b, "## `%s`\n\n", file.Path)

	if file.Failed() {
		fmt.Fprintf(b, "> Analysis failed: %s\n\n", *file.AnalysisError)
		return
	}

	if len(file.Symbols) == 0 {
		b.WriteString("No documented symbols.\n\n")
		return
	}

	for i := range file.Symbols {
		renderSymbol(b, &file.Symbols[i])
	}
}

func renderSymbol(b *strings.Builder, sym *types.SymbolRecord) {
	title := sym.Name
	if sym.Receiver != "" {
		title = sym.Receiver + "." + sym.Name
	}
	fmt.Fprintf(b, "### %s `%s`\n\n", sym.Kind, title)

	if sym.Description != nil {
		b.WriteString(strings.TrimSpace(*sym.Description))
		b.WriteString("\n\n")
	}

	if len(sym.Signature) > 0 {
		b.WriteString("| Parameter | Type | Default |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, p := range sym.Signature {
			fmt.Fprintf(b, "| %s | %s | %s |\n",
				orDash(p.Name), orDash(p.Type), orDash(p.Default))
		}
		b.WriteString("\n")
	}

	if sym.ReturnType != "" {
		fmt.Fprintf(b, "Returns: `%s`\n\n", sym.ReturnType)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
