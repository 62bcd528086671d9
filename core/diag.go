package core

import (
	"fmt"
	"log"
)

// Severity classifies a diagnostic
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the string representation of the severity
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic records a non-fatal problem found while loading, together
// with the byte position it was observed at.
type Diagnostic struct {
	Severity Severity
	Pos      int
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at byte %d: %s", d.Severity, d.Pos, d.Message)
}

// Reporter collects diagnostics for one load. It is injected through the
// load call rather than held as global state, so concurrent loads do not
// interleave their diagnostics.
type Reporter struct {
	verbose bool
	diags   []Diagnostic
}

// NewReporter creates a reporter. With verbose set, diagnostics are also
// written to the standard logger as they occur.
func NewReporter(verbose bool) *Reporter {
	return &Reporter{verbose: verbose}
}

// Warnf records a warning at the given byte position.
func (r *Reporter) Warnf(pos int, format string, args ...any) {
	r.add(Diagnostic{Severity: SeverityWarning, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Errorf records a recoverable error at the given byte position.
func (r *Reporter) Errorf(pos int, format string, args ...any) {
	r.add(Diagnostic{Severity: SeverityError, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (r *Reporter) add(d Diagnostic) {
	r.diags = append(r.diags, d)
	if r.verbose {
		log.Printf("vellum: %s", d)
	}
}

// Diagnostics returns all recorded diagnostics in order of occurrence.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// Warnings returns the recorded warnings.
func (r *Reporter) Warnings() []Diagnostic {
	return r.filter(SeverityWarning)
}

// Errors returns the recorded recoverable errors.
func (r *Reporter) Errors() []Diagnostic {
	return r.filter(SeverityError)
}

func (r *Reporter) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.diags {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// ParseError is a fatal condition: the load cannot continue. It carries
// the byte position the parse failed at.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pdf parse error at byte %d: %s", e.Pos, e.Msg)
}

func parseErrorf(pos int, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
