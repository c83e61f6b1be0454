// Package ranking orders files by how much annotation work they need.
package ranking

import (
	"sort"

	"github.com/phobologic/pythcheck/internal/model"
)

// FileScore summarizes one file for ranking.
type FileScore struct {
	Path       string
	Functions  int
	Violations int
	// Coverage is the fraction of functions with no violations. Files
	// without functions have coverage 1.
	Coverage float64
}

// Score computes the FileScore of a single report.
func Score(fr *model.FileReport) FileScore {
	fs := FileScore{
		Path:       fr.Path,
		Functions:  fr.Functions,
		Violations: len(fr.Violations),
		Coverage:   1,
	}
	if fr.Functions > 0 {
		bad := make(map[model.Position]struct{})
		for i := range fr.Violations {
			bad[fr.Violations[i].FunctionPos] = struct{}{}
		}
		fs.Coverage = float64(fr.Functions-len(bad)) / float64(fr.Functions)
	}
	return fs
}

// WorstFiles returns up to n files with violations, most violations first.
// Ties go to the lower coverage, then to discovery order. If n <= 0 every
// file with violations is returned.
func WorstFiles(rr *model.RunReport, n int) []FileScore {
	var scores []FileScore
	for i := range rr.Files {
		if len(rr.Files[i].Violations) == 0 {
			continue
		}
		scores = append(scores, Score(&rr.Files[i]))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Violations != scores[j].Violations {
			return scores[i].Violations > scores[j].Violations
		}
		return scores[i].Coverage < scores[j].Coverage
	})

	if n > 0 && n < len(scores) {
		scores = scores[:n]
	}
	return scores
}

// SelectFiles returns a new RunReport with the files WorstFiles picks, in
// ranked order, followed by every file that failed to check, in discovery
// order. The summary is carried over unchanged so totals still describe the
// whole run. If n <= 0 the report is returned as is.
func SelectFiles(rr *model.RunReport, n int) *model.RunReport {
	if n <= 0 {
		return rr
	}

	byPath := make(map[string]*model.FileReport, len(rr.Files))
	for i := range rr.Files {
		byPath[rr.Files[i].Path] = &rr.Files[i]
	}

	worst := WorstFiles(rr, n)
	files := make([]model.FileReport, 0, len(worst))
	for _, s := range worst {
		files = append(files, *byPath[s.Path])
	}
	for i := range rr.Files {
		if rr.Files[i].Err != nil {
			files = append(files, rr.Files[i])
		}
	}

	return &model.RunReport{
		Files:   files,
		Summary: rr.Summary,
	}
}
