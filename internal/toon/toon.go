// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/pythcheck/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a RunReport into TOON format.
func Encode(rr *model.RunReport) string {
	var parts []string

	var fileRows [][]string
	for i := range rr.Files {
		fr := &rr.Files[i]
		fileRows = append(fileRows, []string{
			fr.Path,
			strconv.Itoa(fr.Functions),
			strconv.Itoa(len(fr.Violations)),
			status(fr),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "functions", "violations", "status"}, fileRows))

	var violationRows [][]string
	for i := range rr.Files {
		fr := &rr.Files[i]
		for j := range fr.Violations {
			v := &fr.Violations[j]
			violationRows = append(violationRows, []string{
				v.File,
				strconv.Itoa(v.Pos.Line),
				strconv.Itoa(v.Pos.Column),
				v.Function,
				string(v.Kind),
				v.Param,
			})
		}
	}
	parts = append(parts, formatTabular("violations", []string{"file", "line", "column", "function", "kind", "param"}, violationRows))

	var errorRows [][]string
	for i := range rr.Files {
		fr := &rr.Files[i]
		if fr.Err == nil {
			continue
		}
		line, col := "", ""
		if fr.Err.Pos != nil {
			line = strconv.Itoa(fr.Err.Pos.Line)
			col = strconv.Itoa(fr.Err.Pos.Column)
		}
		errorRows = append(errorRows, []string{
			fr.Path,
			string(fr.Err.Kind),
			line,
			col,
			fr.Err.Message,
		})
	}
	parts = append(parts, formatTabular("errors", []string{"file", "kind", "line", "column", "message"}, errorRows))

	s := rr.Summary
	parts = append(parts, formatTabular("summary",
		[]string{"files", "functions", "fully_annotated", "violations", "missing_params", "missing_returns", "errors"},
		[][]string{{
			strconv.Itoa(s.Files),
			strconv.Itoa(s.Functions),
			strconv.Itoa(s.FullyAnnotated),
			strconv.Itoa(s.Violations),
			strconv.Itoa(s.MissingParams),
			strconv.Itoa(s.MissingReturns),
			strconv.Itoa(s.Errors),
		}}))

	return strings.Join(parts, "\n")
}

func status(fr *model.FileReport) string {
	switch {
	case fr.Err != nil:
		return string(fr.Err.Kind) + "-error"
	case len(fr.Violations) > 0:
		return "violations"
	default:
		return "ok"
	}
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
