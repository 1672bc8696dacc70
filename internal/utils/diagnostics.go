package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// levelStyle is how messages of one level are tagged
type levelStyle struct {
	tag  string
	attr color.Attribute
}

var levelStyles = map[DiagnosticLevel]levelStyle{
	DiagnosticError:   {"ERROR", color.FgRed},
	DiagnosticWarn:    {"WARN", color.FgYellow},
	DiagnosticInfo:    {"INFO", color.FgBlue},
	DiagnosticVerbose: {"VERBOSE", color.FgHiBlack},
	DiagnosticDebug:   {"DEBUG", color.FgMagenta},
}

// DiagnosticSystem is the human-facing output of a run. It is safe for
// concurrent use; resolution workers log through the same instance.
type DiagnosticSystem struct {
	mu        sync.Mutex
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int
}

// NewDiagnosticSystem creates a new diagnostic system
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: shouldUseColors(),
		showTime:  level >= DiagnosticVerbose,
		output:    os.Stdout,
		errorOut:  os.Stderr,
	}
}

// NewQuietDiagnostics creates a diagnostic system that only shows errors
func NewQuietDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticError)
}

// NewVerboseDiagnostics creates a diagnostic system with full output
func NewVerboseDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticVerbose)
}

// SetOutput redirects both streams, disabling colors and timestamps
func (d *DiagnosticSystem) SetOutput(out, errOut io.Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.output = out
	d.errorOut = errOut
	d.useColors = false
	d.showTime = false
}

// Enabled reports whether messages of level are written
func (d *DiagnosticSystem) Enabled(level DiagnosticLevel) bool {
	return d.level >= level
}

// Error writes to the error stream unless silent
func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	d.log(DiagnosticError, format, args...)
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	d.log(DiagnosticWarn, format, args...)
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	d.log(DiagnosticInfo, format, args...)
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	d.log(DiagnosticVerbose, format, args...)
}

// Debug outputs debug messages, used for per-type resolution traces
func (d *DiagnosticSystem) Debug(format string, args ...interface{}) {
	d.log(DiagnosticDebug, format, args...)
}

// List outputs a bulleted list item
func (d *DiagnosticSystem) List(format string, args ...interface{}) {
	if d.Enabled(DiagnosticInfo) {
		d.write(d.output, 0, "%s- %s\n", d.prefix(), fmt.Sprintf(format, args...))
	}
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	d.mu.Lock()
	d.indent++
	d.mu.Unlock()
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	d.mu.Lock()
	if d.indent > 0 {
		d.indent--
	}
	d.mu.Unlock()
}

// Summary prints stats under title, keys sorted
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if !d.Enabled(DiagnosticInfo) {
		return
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", title)
	for _, key := range keys {
		fmt.Fprintf(&b, "   %s: %v\n", key, stats[key])
	}
	d.write(d.output, 0, "%s\n", b.String())
}

// Header outputs the tool header
func (d *DiagnosticSystem) Header(message string) {
	if d.Enabled(DiagnosticInfo) {
		d.write(d.output, color.FgCyan, "scopegen: %s\n", message)
	}
}

// PhaseHeader outputs a phase header
func (d *DiagnosticSystem) PhaseHeader(phase string) {
	if d.Enabled(DiagnosticInfo) {
		d.write(d.output, color.FgBlue, "%s:\n", phase)
	}
}

// PhaseItem outputs a completed phase item
func (d *DiagnosticSystem) PhaseItem(message string) {
	if d.Enabled(DiagnosticInfo) {
		d.write(d.output, color.FgGreen, "✓ %s\n", message)
	}
}

// PhaseProgress outputs a phase progress item; file writes are highlighted
func (d *DiagnosticSystem) PhaseProgress(message string) {
	if !d.Enabled(DiagnosticInfo) {
		return
	}
	if strings.HasPrefix(message, "Writing") {
		d.write(d.output, color.FgMagenta, "✏ %s\n", message)
		return
	}
	d.write(d.output, 0, "- %s\n", message)
}

// GenerationComplete outputs the completion message
func (d *DiagnosticSystem) GenerationComplete() {
	if d.Enabled(DiagnosticInfo) {
		d.write(d.output, color.FgGreen, "\nscopegen: Generation complete!\n")
	}
}

// log writes one tagged line; errors go to the error stream
func (d *DiagnosticSystem) log(level DiagnosticLevel, format string, args ...interface{}) {
	if !d.Enabled(level) {
		return
	}
	style := levelStyles[level]
	w := d.output
	if level == DiagnosticError {
		w = d.errorOut
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var line strings.Builder
	line.WriteString(strings.Repeat("  ", d.indent))
	if d.showTime {
		line.WriteString(time.Now().Format("15:04:05 "))
	}
	tag := "[" + style.tag + "]"
	if d.useColors {
		tag = color.New(style.attr).Sprint(tag)
	}
	line.WriteString(tag)
	line.WriteString(" ")
	fmt.Fprintf(&line, format, args...)
	line.WriteString("\n")
	io.WriteString(w, line.String())
}

// write prints format, colored with attr when colors are on and attr is set
func (d *DiagnosticSystem) write(w io.Writer, attr color.Attribute, format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.useColors && attr != 0 {
		color.New(attr).Fprintf(w, format, args...)
		return
	}
	fmt.Fprintf(w, format, args...)
}

func (d *DiagnosticSystem) prefix() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.Repeat("  ", d.indent)
}

// shouldUseColors honours NO_COLOR and FORCE_COLOR before looking at TERM
func shouldUseColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
