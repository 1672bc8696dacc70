package errors

import (
	"fmt"
	"sort"
	"sync"
)

// Severity classifies a diagnostic
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a problem found while resolving a declaration.
// It is attached to the offending element and never aborts the pass.
type Diagnostic struct {
	Code     ErrorCode
	Severity Severity
	Message  string
	Element  string         // human readable description of the offending declaration
	Loc      SourceLocation // where the declaration lives
	Hints    []string
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	if d.Loc.IsEmpty() {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Loc.String(), d.Severity, d.Message)
}

// ErrorCode returns the diagnostic code
func (d *Diagnostic) ErrorCode() ErrorCode { return d.Code }

// Location returns the location of the offending declaration
func (d *Diagnostic) Location() SourceLocation { return d.Loc }

// Context returns the element description
func (d *Diagnostic) Context() map[string]interface{} {
	return map[string]interface{}{"element": d.Element, "severity": d.Severity.String()}
}

// Suggestions returns helpful suggestions for fixing the problem
func (d *Diagnostic) Suggestions() []string { return d.Hints }

// Unwrap returns nil, diagnostics have no cause
func (d *Diagnostic) Unwrap() error { return nil }

// WithHint appends a suggestion
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hints = append(d.Hints, hint)
	return d
}

// Sink receives diagnostics
type Sink interface {
	Report(d *Diagnostic)
}

// Collector is a thread-safe Sink that keeps every diagnostic in report order
type Collector struct {
	mu          sync.Mutex
	diagnostics []*Diagnostic
	errors      int
	warnings    int
	listeners   []func(*Diagnostic)
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// OnReport registers a callback invoked for every reported diagnostic
func (c *Collector) OnReport(listener func(*Diagnostic)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// Report records a diagnostic
func (c *Collector) Report(d *Diagnostic) {
	c.mu.Lock()
	c.diagnostics = append(c.diagnostics, d)
	switch d.Severity {
	case SeverityError:
		c.errors++
	case SeverityWarning:
		c.warnings++
	}
	listeners := c.listeners
	c.mu.Unlock()

	for _, listener := range listeners {
		listener(d)
	}
}

// Errorf reports a hard error against an element
func (c *Collector) Errorf(code ErrorCode, element string, loc SourceLocation, format string, args ...interface{}) *Diagnostic {
	return c.emit(SeverityError, code, element, loc, format, args...)
}

// Warnf reports a warning against an element
func (c *Collector) Warnf(code ErrorCode, element string, loc SourceLocation, format string, args ...interface{}) *Diagnostic {
	return c.emit(SeverityWarning, code, element, loc, format, args...)
}

// Notef reports an informational note against an element
func (c *Collector) Notef(code ErrorCode, element string, loc SourceLocation, format string, args ...interface{}) *Diagnostic {
	return c.emit(SeverityNote, code, element, loc, format, args...)
}

func (c *Collector) emit(severity Severity, code ErrorCode, element string, loc SourceLocation, format string, args ...interface{}) *Diagnostic {
	d := &Diagnostic{
		Code:     code,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Element:  element,
		Loc:      loc,
	}
	c.Report(d)
	return d
}

// HasErrors reports whether any hard error was recorded
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors > 0
}

// ErrorCount returns the number of hard errors
func (c *Collector) ErrorCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors
}

// WarningCount returns the number of warnings
func (c *Collector) WarningCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warnings
}

// Diagnostics returns a copy of every recorded diagnostic in report order
func (c *Collector) Diagnostics() []*Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Sorted returns the diagnostics ordered by location, for stable output
func (c *Collector) Sorted() []*Diagnostic {
	out := c.Diagnostics()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Loc, out[j].Loc
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// ByCode returns every diagnostic with the given code
func (c *Collector) ByCode(code ErrorCode) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range c.Diagnostics() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Err returns the hard errors as a MultipleErrors, or nil when there are none
func (c *Collector) Err() error {
	multiple := &MultipleErrors{}
	for _, d := range c.Diagnostics() {
		if d.Severity == SeverityError {
			multiple.Errors = append(multiple.Errors, d)
		}
	}
	if multiple.Count() == 0 {
		return nil
	}
	return multiple
}
