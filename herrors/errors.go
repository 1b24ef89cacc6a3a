// Package herrors provides the error model shared by every stage of the HQL
// compiler core. It formats errors with source context and a caret pointing
// at the offending span, the same way the host compiler's own diagnostics
// read.
package herrors

import (
	"fmt"
	"strings"
)

// Kind distinguishes the seven compiler error kinds. The kinds are disjoint;
// a value carries exactly one.
type Kind string

const (
	KindParse      Kind = "ParseError"
	KindValidation Kind = "ValidationError"
	KindMacro      Kind = "MacroError"
	KindTransform  Kind = "TransformError"
	KindCodeGen    Kind = "CodeGenError"
	KindImport     Kind = "ImportError"
	KindRuntime    Kind = "RuntimeError"
)

// Position is a 1-based line, 0-based column pair, matching the column
// convention spec.md fixes for spans.
type Position struct {
	Line   int
	Column int
}

// Span pinpoints a contiguous region of source text within one file.
type Span struct {
	File  string
	Start Position
	End   Position
}

// Contains reports whether p falls within the span's line/column bounds.
func (s Span) Contains(p Position) bool {
	if p.Line < s.Start.Line || p.Line > s.End.Line {
		return false
	}
	if p.Line == s.Start.Line && p.Column < s.Start.Column {
		return false
	}
	if p.Line == s.End.Line && p.Column > s.End.Column {
		return false
	}
	return true
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Start.Line, s.Start.Column)
}

// Error is a single compiler diagnostic: a kind, a message, the span it
// refers to, an optional suggestion, and the source it was raised against
// (used only to render context lines).
type Error struct {
	Kind       Kind
	Message    string
	Span       Span
	Suggestion string
	Source     string // full text of Span.File, for context-line rendering
	Cause      error  // wrapped lower-level error, if this is added context
}

func New(kind Kind, span Span, source, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span, Source: source}
}

// Wrap adds outer context (e.g. "in macro call to foo") to a deeper error
// without discarding it. Used by the macro expander to name the outermost
// offending macro while preserving the original span and kind.
func Wrap(inner *Error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...) + ": " + inner.Message
	return &Error{
		Kind:       inner.Kind,
		Message:    msg,
		Span:       inner.Span,
		Suggestion: inner.Suggestion,
		Source:     inner.Source,
		Cause:      inner,
	}
}

func (e *Error) Error() string { return e.Format() }

func (e *Error) Unwrap() error { return e.Cause }

// Format renders the header line, up to five lines of source context with a
// caret under the error column, and a trailing "hint: " line if a
// suggestion was attached.
func (e *Error) Format() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: %s at %s\n", e.Kind, e.Message, e.Span.String())

	ctx := contextLines(e.Source, e.Span.Start.Line, 5)
	for _, cl := range ctx {
		fmt.Fprintf(&sb, "%4d | %s\n", cl.num, cl.text)
		if cl.num == e.Span.Start.Line {
			sb.WriteString(strings.Repeat(" ", 7+e.Span.Start.Column))
			sb.WriteString("^\n")
		}
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&sb, "hint: %s\n", e.Suggestion)
	}

	return sb.String()
}

type contextLine struct {
	num  int
	text string
}

// contextLines returns up to `max` lines of source centred on `line`,
// preferring the lines at and after the error over lines before it so the
// fixed five-line budget still shows the offending line plus following
// context for short files.
func contextLines(source string, line, max int) []contextLine {
	if source == "" {
		return nil
	}
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return nil
	}

	before := (max - 1) / 2
	start := line - before
	if start < 1 {
		start = 1
	}
	end := start + max - 1
	if end > len(lines) {
		end = len(lines)
		start = end - max + 1
		if start < 1 {
			start = 1
		}
	}

	out := make([]contextLine, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, contextLine{num: n, text: lines[n-1]})
	}
	return out
}

// FormatAll renders a batch of errors, numbering them when there's more
// than one.
func FormatAll(errs []*Error) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "compilation failed with %d error(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[%d/%d] %s", i+1, len(errs), e.Format())
		if i < len(errs)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
