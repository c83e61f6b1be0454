// Package model defines core data structures for pythcheck.
package model

import "fmt"

// Position is a 1-based line and column. Columns count runes, not bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SourceFile is a file handed to the checking pipeline.
type SourceFile struct {
	Path string // Display path
	Text []byte
}

// ParamKind is the syntactic kind of a function parameter.
type ParamKind string

const (
	Positional  ParamKind = "positional"
	KeywordOnly ParamKind = "keyword-only"
	VarArgs     ParamKind = "*args"
	VarKwargs   ParamKind = "**kwargs"
	// Separator marks a bare "/" or "*" in a parameter list.
	Separator ParamKind = "separator"
)

// ParameterNode is one entry of a function's parameter list.
type ParameterNode struct {
	Name       string
	Annotation string // Empty when unannotated
	Kind       ParamKind
	HasDefault bool
	Pos        Position
}

// DisplayName returns the name as written, with the star prefix of
// variadic parameters.
func (p ParameterNode) DisplayName() string {
	switch p.Kind {
	case VarArgs:
		return "*" + p.Name
	case VarKwargs:
		return "**" + p.Name
	}
	return p.Name
}

// Annotated reports whether the parameter carries a type annotation.
func (p ParameterNode) Annotated() bool {
	return p.Annotation != ""
}

// FunctionNode is a function definition extracted from a syntax tree.
type FunctionNode struct {
	Name             string
	Pos              Position
	Params           []ParameterNode
	ReturnAnnotation string // Empty when absent
	Async            bool
	Method           bool // Defined directly in a class body
	Decorators       []string
	Depth            int // Number of enclosing function definitions
}

// HasReturnAnnotation reports whether the function declares a return type.
func (f FunctionNode) HasReturnAnnotation() bool {
	return f.ReturnAnnotation != ""
}

// HasDecorator reports whether name is among the function's decorators.
func (f FunctionNode) HasDecorator(name string) bool {
	for _, d := range f.Decorators {
		if d == name {
			return true
		}
	}
	return false
}

// ViolationKind identifies which annotation slot is missing.
type ViolationKind string

const (
	MissingParameterHint ViolationKind = "missing-parameter-hint"
	MissingReturnHint    ViolationKind = "missing-return-hint"
)

// Violation is one missing-annotation finding.
type Violation struct {
	File        string        `json:"file"`
	Function    string        `json:"function"`
	FunctionPos Position      `json:"function_pos"`
	Pos         Position      `json:"pos"` // Position of the offending slot
	Kind        ViolationKind `json:"kind"`
	Param       string        `json:"param,omitempty"`
}

// Message returns a human-readable description of the violation.
func (v Violation) Message() string {
	if v.Kind == MissingParameterHint {
		return fmt.Sprintf("missing type hint for parameter %q in function %q", v.Param, v.Function)
	}
	return fmt.Sprintf("missing return type hint in function %q", v.Function)
}

// Policy holds the user-selected toggles for a run.
type Policy struct {
	IgnoreHidden bool
	IgnoreTests  bool
	IgnoreReturn bool
	// ExemptParams lists names exempt from the hint rule when they are the
	// first parameter of a function.
	ExemptParams []string
}

// DefaultExemptParams are the conventional receiver names.
var DefaultExemptParams = []string{"self", "cls"}

// FileReport holds the outcome of checking one file.
type FileReport struct {
	Path       string      `json:"path"`
	Functions  int         `json:"functions"`
	Violations []Violation `json:"violations"`
	Err        *FileError  `json:"error,omitempty"`
}

// Clean reports whether the file was checked without errors or violations.
func (r FileReport) Clean() bool {
	return r.Err == nil && len(r.Violations) == 0
}

// Summary aggregates counts across a run.
type Summary struct {
	Files               int `json:"files"`
	FilesWithViolations int `json:"files_with_violations"`
	Functions           int `json:"functions"`
	FullyAnnotated      int `json:"fully_annotated"`
	Violations          int `json:"violations"`
	MissingParams       int `json:"missing_params"`
	MissingReturns      int `json:"missing_returns"`
	Errors              int `json:"errors"`
	IOErrors            int `json:"io_errors"`
	ParseErrors         int `json:"parse_errors"`
	EncodingErrors      int `json:"encoding_errors"`
}

// RunReport is the complete result of a run, in file-discovery order.
type RunReport struct {
	Files   []FileReport `json:"files"`
	Summary Summary      `json:"summary"`
}

// OK reports whether the run found no violations and no file errors.
func (r *RunReport) OK() bool {
	return r.Summary.Violations == 0 && r.Summary.Errors == 0
}
