// Package types provides shared domain types for the ladoc pipeline.
//
// The central structure is the language-agnostic document object model
// (LADOM): SymbolRecord for one extracted function, method, or class,
// FileModel for one analyzed file, and ProjectModel for the aggregated,
// deterministically ordered project document.
//
// # Core Types
//
// SymbolRecord captures the identity of a symbol as extracted by an
// analyzer, plus the natural-language description filled in by the
// enrichment pipeline:
//
//	sym := types.SymbolRecord{
//	    Name: "LoadConfig",
//	    Kind: types.KindFunction,
//	    Signature: []types.Parameter{{Name: "path", Type: "string"}},
//	    ReturnType: "Config",
//	}
//
// FileModel groups the symbols of one file and carries a nullable
// AnalysisError so a single unparsable file never aborts a run.
//
// ProjectModel is produced exclusively by the aggregator; its file
// ordering is fixed by path sort, never by completion order.
//
// # Error Taxonomy
//
// The sentinel errors in this package mirror the propagation policy of
// the pipeline: ErrInvalidConfig is the only fatal class, everything
// else is degraded to a placeholder description or an error entry in
// the run statistics.
package types
