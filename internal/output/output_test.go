package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/pythcheck/internal/model"
)

func sampleReport() *model.RunReport {
	f := model.Position{Line: 1, Column: 1}
	return &model.RunReport{
		Files: []model.FileReport{
			{
				Path:      "a.py",
				Functions: 2,
				Violations: []model.Violation{
					{File: "a.py", Function: "f", FunctionPos: f, Pos: model.Position{Line: 1, Column: 7}, Kind: model.MissingParameterHint, Param: "x"},
					{File: "a.py", Function: "f", FunctionPos: f, Pos: f, Kind: model.MissingReturnHint},
				},
			},
			{
				Path: "b.py",
				Err:  &model.FileError{Kind: model.ParseError, Message: "invalid syntax", Pos: &model.Position{Line: 1, Column: 12}},
			},
			{
				Path: "gone.py",
				Err: model.NewFileError(model.IOError, "reading file",
					&fs.PathError{Op: "open", Path: "gone.py", Err: fs.ErrPermission}),
			},
			{Path: "c.py", Functions: 1, Violations: []model.Violation{}},
		},
		Summary: model.Summary{
			Files:               4,
			FilesWithViolations: 1,
			Functions:           3,
			FullyAnnotated:      2,
			Violations:          2,
			MissingParams:       1,
			MissingReturns:      1,
			Errors:              2,
			IOErrors:            1,
			ParseErrors:         1,
		},
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), Options{Color: ColorNever}))

	want := strings.Join([]string{
		`a.py:1:7: missing type hint for parameter "x" in function "f"`,
		`a.py:1:1: missing return type hint in function "f"`,
		`b.py:1:12: parse error: invalid syntax`,
		`gone.py: io error: reading file: permission denied`,
		`4 files checked, 2 violations in 1 file, 2 file errors (2 of 3 functions fully annotated)`,
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteTextClean(t *testing.T) {
	t.Parallel()

	rr := &model.RunReport{
		Files:   []model.FileReport{{Path: "ok.py", Functions: 1, Violations: []model.Violation{}}},
		Summary: model.Summary{Files: 1, Functions: 1, FullyAnnotated: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rr, Options{Color: ColorNever}))
	assert.Equal(t, "1 file checked, no violations (1 of 1 functions fully annotated)\n", buf.String())
}

func TestWriteTextNoFiles(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &model.RunReport{}, Options{Format: "text"}))
	assert.Equal(t, "0 files checked, no violations\n", buf.String())
}

func TestWriteTextColor(t *testing.T) {
	t.Parallel()

	var plain, colored bytes.Buffer
	require.NoError(t, Write(&plain, sampleReport(), Options{Color: ColorNever}))
	require.NoError(t, Write(&colored, sampleReport(), Options{Color: ColorAlways}))

	assert.NotContains(t, plain.String(), "\x1b[")
	assert.Contains(t, colored.String(), "\x1b[")
	assert.Contains(t, colored.String(), "missing return type hint")
}

func TestWriteTextTop(t *testing.T) {
	t.Parallel()

	rr := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rr, Options{Color: ColorNever, Top: 5}))

	out := buf.String()
	assert.Contains(t, out, "files with the most violations:\n")
	assert.Contains(t, out, fmt.Sprintf("  %4d  %s  %s\n", 2, " 50% annotated", "a.py"))
	assert.NotContains(t, out, "  c.py\n")
	// All violation lines are still listed.
	assert.Contains(t, out, `a.py:1:7: missing type hint`)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), Options{Format: "json"}))

	var got struct {
		Files []struct {
			Path       string `json:"path"`
			Violations []struct {
				Kind  string `json:"kind"`
				Param string `json:"param"`
				Pos   struct {
					Line   int `json:"line"`
					Column int `json:"column"`
				} `json:"pos"`
			} `json:"violations"`
			Error *struct {
				Kind    string `json:"kind"`
				Message string `json:"message"`
			} `json:"error"`
		} `json:"files"`
		Summary struct {
			Violations int `json:"violations"`
			Errors     int `json:"errors"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	require.Len(t, got.Files, 4)
	assert.Equal(t, "a.py", got.Files[0].Path)
	require.Len(t, got.Files[0].Violations, 2)
	assert.Equal(t, "missing-parameter-hint", got.Files[0].Violations[0].Kind)
	assert.Equal(t, 7, got.Files[0].Violations[0].Pos.Column)
	require.NotNil(t, got.Files[1].Error)
	assert.Equal(t, "parse", got.Files[1].Error.Kind)
	assert.Equal(t, 2, got.Summary.Violations)
	assert.Equal(t, 2, got.Summary.Errors)
}

func TestWriteJSONTop(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), Options{Format: "json", Top: 1}))

	var got model.RunReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Files, 3)
	assert.Equal(t, "a.py", got.Files[0].Path)
	assert.Equal(t, "b.py", got.Files[1].Path)
	assert.Equal(t, "gone.py", got.Files[2].Path)
	assert.NotNil(t, got.Files[2].Err)
	assert.Equal(t, 4, got.Summary.Files)
}

func TestWriteTOON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), Options{Format: "toon"}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "files[4]{path,functions,violations,status}:\n"))
	assert.Contains(t, out, "  a.py,1,7,f,missing-parameter-hint,x\n")
	assert.Contains(t, out, "  gone.py,io,\"\",\"\",reading file\n")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	err := Write(&bytes.Buffer{}, sampleReport(), Options{Format: "xml"})
	assert.ErrorContains(t, err, `unknown format "xml"`)
}
