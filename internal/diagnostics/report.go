package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"
)

// Report is the JSON export shape from spec §6:
// DiagnosticReport{version, file, success, phase, diagnostics, error_count, warning_count}.
type Report struct {
	Version      int                `json:"version"`
	File         string             `json:"file"`
	Success      bool               `json:"success"`
	Phase        string             `json:"phase"`
	Diagnostics  []ReportDiagnostic `json:"diagnostics"`
	ErrorCount   int                `json:"error_count"`
	WarningCount int                `json:"warning_count"`
}

// ReportDiagnostic is one diagnostic entry in the JSON report.
type ReportDiagnostic struct {
	Severity   string           `json:"severity"`
	Code       string           `json:"code"`
	Category   string           `json:"category"`
	Message    string           `json:"message"`
	Primary    SourceLocation   `json:"primary"`
	Labels     []ReportLabel    `json:"labels"`
	Notes      []string         `json:"notes,omitempty"`
	Help       string           `json:"help,omitempty"`
	Suggestion *ReportSuggestion `json:"suggestion,omitempty"`
}

// ReportLabel is a rendered secondary label.
type ReportLabel struct {
	Start   LineCol `json:"start"`
	End     LineCol `json:"end"`
	Message string  `json:"message"`
}

// LineCol mirrors token.LineCol for the JSON surface, keeping the
// diagnostics package's wire schema independent of the token package's
// internal representation (spec §6 lists `LineCol` as part of the
// diagnostic wire shape in its own right).
type LineCol struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ReportSuggestion is a textual fix suggestion.
type ReportSuggestion struct {
	ResultLine  string `json:"result_line"`
	Replacement string `json:"replacement"`
}

// BuildReport assembles a Report from a resolved diagnostic list. Every
// diagnostic must already have had Resolve called on it.
func BuildReport(file string, phase Phase, diags []*DiagnosticError) Report {
	r := Report{Version: 1, File: file, Phase: string(phase)}
	for _, d := range diags {
		rd := ReportDiagnostic{
			Severity: d.Severity.String(),
			Code:     string(d.Code),
			Category: d.Category,
			Message:  d.Message,
			Primary:  d.Primary,
			Notes:    d.Notes,
			Help:     d.Help,
		}
		for _, l := range d.Labels {
			rd.Labels = append(rd.Labels, ReportLabel{
				Start:   LineCol{Line: l.Start.Line, Column: l.Start.Column},
				End:     LineCol{Line: l.End.Line, Column: l.End.Column},
				Message: l.Message,
			})
		}
		if d.Fix != nil {
			rd.Suggestion = &ReportSuggestion{
				ResultLine:  d.Fix.ResultLine,
				Replacement: d.Fix.Replacement,
			}
		}
		r.Diagnostics = append(r.Diagnostics, rd)
		if d.Severity == SeverityError {
			r.ErrorCount++
		} else {
			r.WarningCount++
		}
	}
	r.Success = r.ErrorCount == 0
	return r
}

// Renderer produces the human-readable form: ANSI-colored source-cited
// renderings with primary/secondary labels, notes, and an optional fix.
// Color is enabled only when writing to a real terminal, mirroring the
// teacher's own TTY-detection idiom for its CLI output.
type Renderer struct {
	Color bool
}

// NewRenderer builds a Renderer that auto-detects color support for w.
func NewRenderer(w io.Writer) *Renderer {
	color := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{Color: color}
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
	ansiBlue   = "\x1b[34m"
	ansiReset  = "\x1b[0m"
)

func (r *Renderer) paint(code, s string) string {
	if !r.Color {
		return s
	}
	return code + s + ansiReset
}

// Render writes the human form of a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d *DiagnosticError) {
	sevColor := ansiRed
	if d.Severity == SeverityWarning {
		sevColor = ansiYellow
	}
	fmt.Fprintf(w, "%s: %s[%s]: %s\n",
		r.paint(ansiBold, fmt.Sprintf("%s:%d:%d", d.File, d.Primary.Line, d.Primary.Column)),
		r.paint(sevColor, d.Severity.String()), d.Code, d.Message)

	if d.Primary.SourceLine != "" {
		fmt.Fprintf(w, "  %s\n", d.Primary.SourceLine)
		caretPad := strings.Repeat(" ", max(0, d.Primary.Column-1))
		fmt.Fprintf(w, "  %s%s\n", caretPad, r.paint(sevColor, "^"))
	}
	for _, l := range d.Labels {
		fmt.Fprintf(w, "  %s %s\n", r.paint(ansiBlue, "-->"), l.Message)
	}
	for _, n := range d.Notes {
		fmt.Fprintf(w, "  note: %s\n", n)
	}
	if d.Help != "" {
		fmt.Fprintf(w, "  help: %s\n", d.Help)
	}
	if d.Fix != nil {
		fmt.Fprintf(w, "  suggestion: %s\n", d.Fix.ResultLine)
	}
}

// RenderAll writes every diagnostic in order, each separated by a blank line.
func (r *Renderer) RenderAll(w io.Writer, diags []*DiagnosticError) {
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(w)
		}
		r.Render(w, d)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Collector accumulates diagnostics for one pass and can test the pass's
// "returns Ok iff error list is empty" contract (spec §7).
type Collector struct {
	Diagnostics []*DiagnosticError
}

// Add appends a diagnostic.
func (c *Collector) Add(d *DiagnosticError) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// HasErrors reports whether any accumulated diagnostic is error-severity.
func (c *Collector) HasErrors() bool {
	for _, d := range c.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// SuppressCascades drops error+error Mismatch diagnostics marked as
// downstream of an already-reported Type::Error (spec §7).
func (c *Collector) SuppressCascades() {
	kept := c.Diagnostics[:0]
	for _, d := range c.Diagnostics {
		if !d.CascadeSuppressed() {
			kept = append(kept, d)
		}
	}
	c.Diagnostics = kept
}
