package types

import (
	"errors"
	"time"
)

// FileModel is the result of analyzing one source file. It is immutable
// once produced except for description fill-in on its symbol records.
type FileModel struct {
	// Path is repo-relative with forward slashes, regardless of platform
	Path     string         `json:"path"`
	Language string         `json:"language"`
	Symbols  []SymbolRecord `json:"symbols"`

	// AnalysisError is set when the file could not be analyzed; the
	// symbol list is empty in that case
	AnalysisError *string `json:"analysis_error,omitempty"`
}

// Failed reports whether analysis of this file failed
func (f *FileModel) Failed() bool {
	return f.AnalysisError != nil
}

// Validate checks structural invariants of the file model
func (f *FileModel) Validate() error {
	if f.Path == "" {
		return errors.New("file path cannot be empty")
	}
	if f.AnalysisError != nil && len(f.Symbols) > 0 {
		return errors.New("failed file must have an empty symbol list")
	}
	for i := range f.Symbols {
		if err := f.Symbols[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Statistics summarizes a documentation run
type Statistics struct {
	FileCount     int           `json:"file_count"`
	SymbolCount   int           `json:"symbol_count"`
	FailedFiles   int           `json:"failed_files"`
	CacheHits     int64         `json:"cache_hits"`
	CacheMisses   int64         `json:"cache_misses"`
	ExternalCalls int64         `json:"external_calls"`
	Placeholders  int64         `json:"placeholders"`
	Elapsed       time.Duration `json:"elapsed_ns"`
	Errors        []string      `json:"errors,omitempty"`
}

// ProjectModel is the aggregate document model for one project. Files
// are sorted by Path; the ordering is fixed at aggregation time and is
// independent of task completion order.
type ProjectModel struct {
	ProjectName string      `json:"project_name"`
	Files       []FileModel `json:"files"`
	GeneratedAt time.Time   `json:"generated_at"`
	Stats       Statistics  `json:"statistics"`
}
