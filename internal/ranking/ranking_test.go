package ranking

import (
	"testing"

	"github.com/phobologic/pythcheck/internal/model"
)

func violations(path string, fnLines ...int) []model.Violation {
	vs := make([]model.Violation, len(fnLines))
	for i, line := range fnLines {
		vs[i] = model.Violation{
			File:        path,
			Function:    "f",
			FunctionPos: model.Position{Line: line, Column: 1},
			Pos:         model.Position{Line: line, Column: 7},
			Kind:        model.MissingParameterHint,
			Param:       "x",
		}
	}
	return vs
}

func makeRunReport() *model.RunReport {
	return &model.RunReport{
		Files: []model.FileReport{
			{Path: "a.py", Functions: 4, Violations: violations("a.py", 1, 5)},
			{Path: "b.py", Functions: 2, Violations: []model.Violation{}},
			{Path: "c.py", Functions: 2, Violations: violations("c.py", 1, 1, 1)},
			{Path: "d.py", Functions: 2, Violations: violations("d.py", 1, 9)},
			{Path: "e.py", Err: &model.FileError{Kind: model.ParseError, Message: "invalid syntax"}},
		},
		Summary: model.Summary{Files: 5, Violations: 7},
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	rr := makeRunReport()

	s := Score(&rr.Files[0])
	if s.Violations != 2 || s.Coverage != 0.5 {
		t.Errorf("a.py: got %+v", s)
	}

	// Three violations in one function.
	s = Score(&rr.Files[2])
	if s.Coverage != 0.5 {
		t.Errorf("c.py coverage: got %v, want 0.5", s.Coverage)
	}

	s = Score(&rr.Files[4])
	if s.Coverage != 1 {
		t.Errorf("file without functions should have coverage 1, got %v", s.Coverage)
	}
}

func TestWorstFilesOrder(t *testing.T) {
	t.Parallel()

	got := WorstFiles(makeRunReport(), 0)
	want := []string{"c.py", "d.py", "a.py"}
	if len(got) != len(want) {
		t.Fatalf("expected %d files, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Path != want[i] {
			t.Errorf("rank %d: got %s, want %s", i, got[i].Path, want[i])
		}
	}
}

func TestWorstFilesLimit(t *testing.T) {
	t.Parallel()

	got := WorstFiles(makeRunReport(), 1)
	if len(got) != 1 || got[0].Path != "c.py" {
		t.Errorf("expected only c.py, got %+v", got)
	}

	got = WorstFiles(makeRunReport(), 10)
	if len(got) != 3 {
		t.Errorf("limit above count should return all 3, got %d", len(got))
	}
}

func TestWorstFilesClean(t *testing.T) {
	t.Parallel()

	rr := &model.RunReport{Files: []model.FileReport{{Path: "ok.py", Functions: 3}}}
	if got := WorstFiles(rr, 5); len(got) != 0 {
		t.Errorf("expected no files, got %+v", got)
	}
}

func TestSelectFilesAll(t *testing.T) {
	t.Parallel()

	rr := makeRunReport()
	if got := SelectFiles(rr, 0); got != rr {
		t.Error("n=0 should return original")
	}
}

func TestSelectFilesSubset(t *testing.T) {
	t.Parallel()

	rr := makeRunReport()
	got := SelectFiles(rr, 2)

	want := []string{"c.py", "d.py", "e.py"}
	if len(got.Files) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(got.Files))
	}
	for i := range want {
		if got.Files[i].Path != want[i] {
			t.Errorf("file %d: got %s, want %s", i, got.Files[i].Path, want[i])
		}
	}
	if got.Summary != rr.Summary {
		t.Errorf("summary should be carried over: got %+v", got.Summary)
	}
}

func TestSelectFilesKeepsErrors(t *testing.T) {
	t.Parallel()

	rr := &model.RunReport{
		Files: []model.FileReport{
			{Path: "broken.py", Err: &model.FileError{Kind: model.ParseError, Message: "invalid syntax"}},
			{Path: "a.py", Functions: 1, Violations: violations("a.py", 1)},
			{Path: "gone.py", Err: &model.FileError{Kind: model.IOError, Message: "reading file"}},
			{Path: "b.py", Functions: 1, Violations: violations("b.py", 1, 1)},
		},
		Summary: model.Summary{Files: 4, Violations: 3, Errors: 2},
	}

	got := SelectFiles(rr, 1)
	want := []string{"b.py", "broken.py", "gone.py"}
	if len(got.Files) != len(want) {
		t.Fatalf("expected %d files, got %+v", len(want), got.Files)
	}
	errored := 0
	for i := range want {
		if got.Files[i].Path != want[i] {
			t.Errorf("file %d: got %s, want %s", i, got.Files[i].Path, want[i])
		}
		if got.Files[i].Err != nil {
			errored++
		}
	}
	if errored != got.Summary.Errors {
		t.Errorf("summary counts %d errors but %d errored files were kept", got.Summary.Errors, errored)
	}
}
