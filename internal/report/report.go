// Package report merges per-function verdicts into file and run reports.
package report

import (
	"github.com/phobologic/pythcheck/internal/model"
)

// Aggregate builds the report for a file that was checked successfully.
// functions is the number of functions classified in the file.
func Aggregate(path string, functions int, violations []model.Violation) model.FileReport {
	if violations == nil {
		violations = []model.Violation{}
	}
	return model.FileReport{
		Path:       path,
		Functions:  functions,
		Violations: violations,
	}
}

// Failed builds the report for a file that could not be checked.
func Failed(path string, err *model.FileError) model.FileReport {
	return model.FileReport{Path: path, Violations: []model.Violation{}, Err: err}
}

// Merge combines file reports, in the given order, into a run report.
func Merge(files []model.FileReport) *model.RunReport {
	rr := &model.RunReport{Files: make([]model.FileReport, 0, len(files))}
	s := &rr.Summary

	for _, f := range files {
		rr.Files = append(rr.Files, f)
		s.Files++

		if f.Err != nil {
			s.Errors++
			switch f.Err.Kind {
			case model.IOError:
				s.IOErrors++
			case model.ParseError:
				s.ParseErrors++
			case model.EncodingError:
				s.EncodingErrors++
			}
			continue
		}

		s.Functions += f.Functions
		s.FullyAnnotated += f.Functions - violatingFunctions(f.Violations)
		if len(f.Violations) > 0 {
			s.FilesWithViolations++
		}
		for _, v := range f.Violations {
			s.Violations++
			switch v.Kind {
			case model.MissingParameterHint:
				s.MissingParams++
			case model.MissingReturnHint:
				s.MissingReturns++
			}
		}
	}
	return rr
}

// violatingFunctions counts the distinct functions referenced by vs.
// A function is identified by its start position within the file.
func violatingFunctions(vs []model.Violation) int {
	seen := make(map[model.Position]struct{}, len(vs))
	for _, v := range vs {
		seen[v.FunctionPos] = struct{}{}
	}
	return len(seen)
}
