// Package fingerprint derives content-addressed cache keys for symbol
// descriptions. A fingerprint identifies "this exact symbol content
// under this exact generation configuration"; any semantic change to
// either must produce a different key, while cosmetic whitespace
// differences must not.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ladoc-dev/ladoc/pkg/types"
)

// Identity names the generation configuration inputs that participate
// in the fingerprint. Changing the model, the temperature, or the
// prompt template version invalidates every cached description.
type Identity struct {
	Provider      string
	Model         string
	Temperature   float32
	PromptVersion string
}

// Compute returns a hex-encoded sha256 fingerprint for the symbol under
// the given generation identity. Pure and deterministic.
func Compute(sym *types.SymbolRecord, id Identity) string {
	h := sha256.New()

	h.Write([]byte(Normalize(sym.Snippet)))
	h.Write([]byte{0})
	h.Write([]byte(sym.Kind))
	h.Write([]byte{0})
	h.Write([]byte(signatureKey(sym)))
	h.Write([]byte{0})
	fmt.Fprintf(h, "%s/%s@%.4f#%s", id.Provider, id.Model, id.Temperature, id.PromptVersion)

	return hex.EncodeToString(h.Sum(nil))
}

// Normalize makes source text whitespace-stable: line endings become
// LF, trailing whitespace is stripped per line, and trailing blank
// lines are dropped. Reformatting that only touches these does not
// change the fingerprint; any other byte change does.
func Normalize(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")

	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}

	return strings.Join(lines[:end], "\n")
}

// signatureKey serializes the ordered parameter list and return type.
// Parameter order matters; names, types, and defaults all participate.
func signatureKey(sym *types.SymbolRecord) string {
	var b strings.Builder
	for i, p := range sym.Signature {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Name)
		b.WriteByte(':')
		b.WriteString(p.Type)
		if p.Default != "" {
			b.WriteByte('=')
			b.WriteString(p.Default)
		}
	}
	b.WriteString("->")
	b.WriteString(sym.ReturnType)
	return b.String()
}
