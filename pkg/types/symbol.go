package types

import (
	"errors"
	"fmt"
)

// SymbolKind classifies an extracted symbol
type SymbolKind string

const (
	KindFunction SymbolKind = "function"
	KindMethod   SymbolKind = "method"
	KindClass    SymbolKind = "class"
)

// Parameter is one entry in a symbol's ordered parameter list
type Parameter struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Default string `json:"default,omitempty"`
}

// SourceSpan locates a symbol within its source file
type SourceSpan struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// SymbolRecord is one function, method, or class found in one file.
// Name plus Span uniquely identifies a record within a file. Re-analysis
// of unchanged content must produce byte-identical records, Description
// excluded: Description stays nil until enrichment fills it in.
type SymbolRecord struct {
	Name       string      `json:"name"`
	Kind       SymbolKind  `json:"kind"`
	Signature  []Parameter `json:"signature"`
	ReturnType string      `json:"return_type,omitempty"`
	Receiver   string      `json:"receiver,omitempty"`
	Span       SourceSpan  `json:"span"`
	Snippet    string      `json:"snippet,omitempty"`

	Description *string `json:"description,omitempty"`
}

// ID returns the name+span identity used for uniqueness within a file
func (s *SymbolRecord) ID() string {
	return fmt.Sprintf("%s:%d:%d:%s", s.Span.File, s.Span.StartLine, s.Span.StartCol, s.Name)
}

// Described reports whether enrichment has filled in a description
func (s *SymbolRecord) Described() bool {
	return s.Description != nil
}

// SetDescription fills in the description. Descriptions are write-once
// per run; a second call for the same record is ignored.
func (s *SymbolRecord) SetDescription(desc string) {
	if s.Description != nil {
		return
	}
	s.Description = &desc
}

// Validate checks structural invariants of the record
func (s *SymbolRecord) Validate() error {
	if s.Name == "" {
		return errors.New("symbol name cannot be empty")
	}
	switch s.Kind {
	case KindFunction, KindMethod, KindClass:
	default:
		return fmt.Errorf("invalid symbol kind %q", s.Kind)
	}
	if s.Span.StartLine <= 0 || s.Span.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}
	if s.Span.StartLine > s.Span.EndLine {
		return errors.New("start line must be before or equal to end line")
	}
	return nil
}
