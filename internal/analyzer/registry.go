// Package analyzer extracts language-agnostic symbol models from
// source files.
//
// Each supported language provides an Analyzer; the Registry selects
// one by file extension. Analyzers are side-effect-free and safe to
// call concurrently from multiple files at once.
package analyzer

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/ladoc-dev/ladoc/pkg/types"
)

// Analyzer extracts a FileModel from one source file. Implementations
// hold no shared mutable state across calls.
type Analyzer interface {
	// Language returns the language name (e.g., "go", "python")
	Language() string

	// Extensions returns file extensions this analyzer handles
	Extensions() []string

	// Analyze extracts symbols from source content. relPath is the
	// repo-relative path recorded in spans, content the raw bytes.
	Analyze(relPath string, content []byte) (*types.FileModel, error)
}

// Registry maps extensions to analyzers
type Registry struct {
	analyzers map[string]Analyzer // language name -> analyzer
	extToLang map[string]string   // extension -> language name
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		analyzers: make(map[string]Analyzer),
		extToLang: make(map[string]string),
	}
}

// NewDefaultRegistry creates a registry with all built-in analyzers
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewGoAnalyzer())
	r.Register(NewPythonAnalyzer())
	return r
}

// Register adds an analyzer to the registry
func (r *Registry) Register(a Analyzer) {
	lang := a.Language()
	r.analyzers[lang] = a
	for _, ext := range a.Extensions() {
		r.extToLang[strings.ToLower(ext)] = lang
	}
}

// ForFile returns the analyzer for a filename, if any
func (r *Registry) ForFile(filename string) (Analyzer, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	a, ok := r.analyzers[lang]
	return a, ok
}

// SupportedExtensions returns all registered extensions, sorted
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
