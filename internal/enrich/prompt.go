package enrich

import (
	"fmt"
	"strings"

	"github.com/ladoc-dev/ladoc/pkg/types"
)

// PromptVersion identifies the template generation. It participates in
// the fingerprint, so bumping it invalidates every cached description.
const PromptVersion = "describe-v1"

// BuildPrompt renders the description prompt for one symbol
func BuildPrompt(sym *types.SymbolRecord, language string) string {
	var b strings.Builder

	switch sym.Kind {
	case types.KindClass:
		fmt.Fprintf(&b, "Analyze the following %s type and write a concise description of its purpose and responsibilities.\n", language)
	case types.KindMethod:
		fmt.Fprintf(&b, "Analyze the following %s method and write a concise description covering what it does, its parameters, and its return value.\n", language)
	default:
		fmt.Fprintf(&b, "Analyze the following %s function and write a concise description covering what it does, its parameters, and its return value.\n", language)
	}

	b.WriteString("Provide only the description text. Do not enclose it in quotes or a code block.\n\n")

	fmt.Fprintf(&b, "Name: %s\n", sym.Name)
	if sig := formatSignature(sym); sig != "" {
		fmt.Fprintf(&b, "Signature: %s\n", sig)
	}

	fmt.Fprintf(&b, "\nCode:\n```%s\n%s\n```\n", language, sym.Snippet)

	return b.String()
}

// formatSignature renders the parameter list and return type for the prompt
func formatSignature(sym *types.SymbolRecord) string {
	parts := make([]string, 0, len(sym.Signature))
	for _, p := range sym.Signature {
		part := p.Name
		if p.Type != "" {
			part += " " + p.Type
		}
		if p.Default != "" {
			part += " = " + p.Default
		}
		parts = append(parts, part)
	}

	sig := "(" + strings.Join(parts, ", ") + ")"
	if sym.ReturnType != "" {
		sig += " -> " + sym.ReturnType
	}
	return sig
}

// Sanitize cleans common artifacts from generated text: surrounding
// code fences, triple quotes, and stray whitespace.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") {
		text = strings.TrimSuffix(text, "```")
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
		text = strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, `"""`) && strings.HasSuffix(text, `"""`) && len(text) >= 6 {
		text = strings.TrimSpace(text[3 : len(text)-3])
	}

	return text
}
