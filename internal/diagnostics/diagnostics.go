// Package diagnostics accumulates and renders compiler/runtime diagnostics,
// grounded on the teacher's diagnostics.Collector but generalized with
// phases, severities, and the two retention modes spec.md requires.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/token"
)

// ErrHasDiagnostics is returned by pipeline stages to signal "diagnostics
// were recorded, stop here" without re-deriving the diagnostic text. It
// mirrors the teacher's diagnostics.COMPILER_ERROR_FOUND sentinel.
var ErrHasDiagnostics = errors.New("diagnostics were recorded")

// Phase identifies which pipeline stage produced a Diag.
type Phase int

const (
	Lex Phase = iota
	Parse
	Resolve
	Typecheck
	Runtime
)

func (p Phase) String() string {
	switch p {
	case Lex:
		return "lex"
	case Parse:
		return "parse"
	case Resolve:
		return "resolve"
	case Typecheck:
		return "typecheck"
	case Runtime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Severity classifies a Diag.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diag is a single accumulated diagnostic record.
type Diag struct {
	Phase    Phase
	Severity Severity
	Span     token.Span
	Message  string
}

// Render formats the diagnostic as `file:line:col: phase: message` followed
// by a one-line source snippet and a caret range, matching spec.md §4.6 and
// §6's stable format.
func (d Diag) Render(source string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s: %s",
		d.Span.Start.Filename, d.Span.Start.Line, d.Span.Start.Column,
		d.Phase, d.Message)

	line := sourceLine(source, d.Span.Start.Line)
	if line != "" {
		b.WriteByte('\n')
		b.WriteString(line)
		b.WriteByte('\n')
		b.WriteString(caretRange(line, d.Span))
	}
	return b.String()
}

func sourceLine(source string, lineNo int) string {
	if lineNo <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNo > len(lines) {
		return ""
	}
	return lines[lineNo-1]
}

func caretRange(line string, span token.Span) string {
	start := span.Start.Column - 1
	if start < 0 {
		start = 0
	}
	width := span.End.Column - span.Start.Column
	if span.End.Line != span.Start.Line || width <= 0 {
		width = 1
	}
	if start > len(line) {
		start = len(line)
	}
	return strings.Repeat(" ", start) + strings.Repeat("^", width)
}

// Mode controls which diagnostics Collector.All returns.
type Mode int

const (
	// ModeAll surfaces every diagnostic recorded, in order.
	ModeAll Mode = iota
	// ModeFirst surfaces only the first diagnostic recorded. Later ones (for
	// example from the type checker, which checks every function) may still
	// be recorded and remain available through Raw.
	ModeFirst
)

// Collector is an append-only diagnostic sink with first-only/all retention
// modes, grounded on diagnostics.Collector (teacher) and collector.Collector
// (duplicate teacher variant) unified into one generalized type.
type Collector struct {
	Mode  Mode
	diags []Diag
}

func New(mode Mode) *Collector {
	return &Collector{Mode: mode}
}

// Report records a diagnostic. Unlike the teacher's ReportAndSave, rendering
// is deferred so ModeFirst can discard everything after the first without
// having already printed it.
func (c *Collector) Report(d Diag) {
	c.diags = append(c.diags, d)
}

// Recorded reports whether any diagnostic has been collected.
func (c *Collector) Recorded() bool {
	return len(c.diags) > 0
}

// HasErrors reports whether any Error-severity diagnostic has been
// collected.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// All returns the diagnostics to surface given the collector's Mode.
func (c *Collector) All() []Diag {
	if c.Mode == ModeFirst && len(c.diags) > 1 {
		return c.diags[:1]
	}
	return c.diags
}

// Raw returns every diagnostic recorded regardless of Mode, useful for
// tests that want to assert on recovery behavior.
func (c *Collector) Raw() []Diag {
	return c.diags
}

// Render renders every surfaced diagnostic (per Mode) against source, one
// per line as spec.md §6 requires.
func (c *Collector) Render(source string) string {
	var b strings.Builder
	for i, d := range c.All() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Render(source))
	}
	return b.String()
}
