// Package output renders a RunReport for humans and machines.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/phobologic/pythcheck/internal/model"
	"github.com/phobologic/pythcheck/internal/ranking"
	"github.com/phobologic/pythcheck/internal/toon"
)

// Color modes accepted by Options.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ColorModes lists the accepted values of Options.Color.
var ColorModes = []string{ColorAuto, ColorAlways, ColorNever}

// Options select the rendering.
type Options struct {
	Format string // "text", "toon" or "json"; empty means text
	Color  string // one of ColorModes; empty means auto
	// Top limits machine formats to the N worst files and appends a
	// ranking to text output. Zero disables it.
	Top int
}

// Write renders rr to w.
func Write(w io.Writer, rr *model.RunReport, opts Options) error {
	switch opts.Format {
	case "", "text":
		return writeText(w, rr, opts)
	case "toon":
		_, err := fmt.Fprintln(w, toon.Encode(ranking.SelectFiles(rr, opts.Top)))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ranking.SelectFiles(rr, opts.Top))
	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}
}

type styles struct {
	location lipgloss.Style
	warning  lipgloss.Style
	failure  lipgloss.Style
	success  lipgloss.Style
	faint    lipgloss.Style
}

func newStyles(w io.Writer, mode string) styles {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		location: r.NewStyle().Bold(true),
		warning:  r.NewStyle().Foreground(lipgloss.Color("3")),
		failure:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		success:  r.NewStyle().Foreground(lipgloss.Color("2")),
		faint:    r.NewStyle().Faint(true),
	}
}

func writeText(w io.Writer, rr *model.RunReport, opts Options) error {
	st := newStyles(w, opts.Color)
	var b strings.Builder

	for i := range rr.Files {
		fr := &rr.Files[i]
		if fr.Err != nil {
			b.WriteString(formatFileError(st, fr))
			b.WriteByte('\n')
			continue
		}
		for j := range fr.Violations {
			v := &fr.Violations[j]
			fmt.Fprintf(&b, "%s %s\n",
				st.location.Render(fmt.Sprintf("%s:%s:", v.File, v.Pos)),
				st.warning.Render(v.Message()))
		}
	}

	if opts.Top > 0 {
		writeTop(&b, st, rr, opts.Top)
	}

	b.WriteString(summaryLine(st, &rr.Summary))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func formatFileError(st styles, fr *model.FileReport) string {
	loc := fr.Path + ":"
	if fr.Err.Pos != nil {
		loc = fmt.Sprintf("%s:%s:", fr.Path, fr.Err.Pos)
	}
	msg := fmt.Sprintf("%s error: %s", fr.Err.Kind, fr.Err.Message)
	var pe *fs.PathError
	if errors.As(fr.Err.Err, &pe) {
		msg += ": " + pe.Err.Error()
	}
	return st.location.Render(loc) + " " + st.failure.Render(msg)
}

func writeTop(b *strings.Builder, st styles, rr *model.RunReport, n int) {
	worst := ranking.WorstFiles(rr, n)
	if len(worst) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", st.location.Render("files with the most violations:"))
	for _, s := range worst {
		fmt.Fprintf(b, "  %4d  %s  %s\n",
			s.Violations,
			st.faint.Render(fmt.Sprintf("%3.0f%% annotated", s.Coverage*100)),
			s.Path)
	}
	b.WriteByte('\n')
}

func summaryLine(st styles, s *model.Summary) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s checked", plural(s.Files, "file")))

	if s.Violations == 0 {
		parts = append(parts, st.success.Render("no violations"))
	} else {
		parts = append(parts, st.warning.Render(fmt.Sprintf("%s in %s",
			plural(s.Violations, "violation"), plural(s.FilesWithViolations, "file"))))
	}
	if s.Errors > 0 {
		parts = append(parts, st.failure.Render(plural(s.Errors, "file error")))
	}

	line := strings.Join(parts, ", ")
	if s.Functions > 0 {
		line += st.faint.Render(fmt.Sprintf(" (%d of %d functions fully annotated)", s.FullyAnnotated, s.Functions))
	}
	return line
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
