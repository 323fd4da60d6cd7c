// Package aggregate merges per-file results into the project model.
//
// Aggregate is the single point where final output ordering is fixed:
// it sorts by path regardless of arrival order, so the result is
// byte-identical for any permutation of task completion. No downstream
// renderer may rely on any other ordering.
package aggregate

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/ladoc-dev/ladoc/pkg/types"
)

// Aggregate builds a ProjectModel from file models in any order. Pure
// and deterministic apart from the GeneratedAt stamp.
func Aggregate(projectName string, models []types.FileModel, stats types.Statistics) *types.ProjectModel {
	files := make([]types.FileModel, len(models))
	copy(files, models)

	for i := range files {
		files[i].Path = filepath.ToSlash(files[i].Path)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	stats.FileCount = len(files)
	stats.SymbolCount = 0
	stats.FailedFiles = 0
	for i := range files {
		stats.SymbolCount += len(files[i].Symbols)
		if files[i].Failed() {
			stats.FailedFiles++
		}
	}

	// Error entries arrive in task-completion order; entries are
	// path-prefixed, so a string sort fixes them to path order
	if len(stats.Errors) > 0 {
		errs := make([]string, len(stats.Errors))
		copy(errs, stats.Errors)
		sort.Strings(errs)
		stats.Errors = errs
	}

	return &types.ProjectModel{
		ProjectName: projectName,
		Files:       files,
		GeneratedAt: time.Now().UTC(),
		Stats:       stats,
	}
}
