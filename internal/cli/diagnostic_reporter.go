package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/toyz/scopegen/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
	errOut  io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stdout and stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// SetOutput redirects the reporter
func (r *DiagnosticReporter) SetOutput(out, errOut io.Writer) {
	r.out = out
	r.errOut = errOut
}

// Report prints resolution diagnostics. Notes are printed in verbose mode only.
func (r *DiagnosticReporter) Report(diagnostics []*errors.Diagnostic) {
	for _, d := range diagnostics {
		switch d.Severity {
		case errors.SeverityError:
			r.reportDiagnosticError(d)
		case errors.SeverityWarning:
			r.ReportWarning(r.format(d), d.Hints...)
		default:
			if r.verbose {
				fmt.Fprintf(r.errOut, "  note: %s\n", r.format(d))
			}
		}
	}
}

// ReportWarning provides user-friendly warning reporting
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.errOut, "! ")
	fmt.Fprintf(r.errOut, "%s\n", message)
	if r.verbose {
		for _, s := range suggestions {
			fmt.Fprintf(r.errOut, "    hint: %s\n", s)
		}
	}
}

func (r *DiagnosticReporter) reportDiagnosticError(d *errors.Diagnostic) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(r.errOut, "x ")
	fmt.Fprintf(r.errOut, "%s\n", r.format(d))
	if d.Element != "" {
		fmt.Fprintf(r.errOut, "    element: %s\n", d.Element)
	}
	for _, hint := range d.Hints {
		fmt.Fprintf(r.errOut, "    hint: %s\n", hint)
	}
}

// format renders "file:line: [Code] message"
func (r *DiagnosticReporter) format(d *errors.Diagnostic) string {
	var b strings.Builder
	if !d.Loc.IsEmpty() {
		loc := d.Loc
		if !r.verbose {
			loc.File = relative(loc.File)
		}
		b.WriteString(loc.String())
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "[%s] %s", d.Code, d.Message)
	return b.String()
}

// ReportError provides comprehensive error reporting with user-friendly output
func (r *DiagnosticReporter) ReportError(err error) {
	fmt.Fprintf(r.errOut, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.errOut, "=============================\n\n")

	var multiple *errors.MultipleErrors
	var typed errors.ScopegenError
	switch {
	case stderrors.As(err, &multiple):
		fmt.Fprintf(r.errOut, "%d error(s) reported during resolution\n\n", multiple.Count())
	case stderrors.As(err, &typed):
		r.reportScopegenError(typed)
	default:
		fmt.Fprintf(r.errOut, "Message: %s\n\n", err.Error())
	}

	fmt.Fprintf(r.errOut, "For more help:\n")
	fmt.Fprintf(r.errOut, "  - Run with --verbose for more detailed output\n")
	fmt.Fprintf(r.errOut, "  - Run 'scopegen clean' if an earlier run left broken files behind\n\n")
}

func (r *DiagnosticReporter) reportScopegenError(err errors.ScopegenError) {
	header := err.ErrorCode().String()
	fmt.Fprintf(r.errOut, "Type: %s\n", header)
	fmt.Fprintf(r.errOut, "%s\n\n", strings.Repeat("-", len(header)+6))
	fmt.Fprintf(r.errOut, "Message: %s\n\n", err.Error())

	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.errOut, "Location: %s\n\n", loc)
	}

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}

	if r.verbose && err.Unwrap() != nil {
		fmt.Fprintf(r.errOut, "Error Chain:\n")
		level := 1
		for cause := err.Unwrap(); cause != nil; cause = stderrors.Unwrap(cause) {
			fmt.Fprintf(r.errOut, "  %d. %s\n", level, cause.Error())
			level++
		}
		fmt.Fprintf(r.errOut, "\n")
	}
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.errOut, "Context:\n")
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(r.errOut, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintf(r.errOut, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.errOut, "Suggestions:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(r.errOut, "   %d. %s\n", i+1, suggestion)
	}
	fmt.Fprintf(r.errOut, "\n")
}

// ReportSuccess reports successful generation with summary information
func (r *DiagnosticReporter) ReportSuccess(summary GenerationSummary) {
	title := "Code Generation Completed Successfully!"
	if summary.DryRun {
		title = "Dry Run Completed Successfully!"
	}
	fmt.Fprintf(r.out, "\n%s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("=", len(title)))

	fmt.Fprintf(r.out, "Processed %d packages\n", summary.PackagesLoaded)
	fmt.Fprintf(r.out, "Resolved %d types: %d factories, %d member injectors\n",
		summary.TypesResolved, summary.Factories, summary.MemberInjectors)
	if summary.Warnings > 0 {
		fmt.Fprintf(r.out, "Reported %d warnings\n", summary.Warnings)
	}

	if len(summary.GeneratedFiles) > 0 {
		verb := "Generated"
		if summary.DryRun {
			verb = "Would generate"
		}
		fmt.Fprintf(r.out, "\n%s files:\n", verb)
		for _, file := range summary.GeneratedFiles {
			fmt.Fprintf(r.out, "  - %s\n", relative(file))
		}
	}

	if r.verbose {
		fmt.Fprintf(r.out, "\nRun %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
	}
}

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	RunID           string
	Module          string
	PackagesLoaded  int
	TypesResolved   int
	Factories       int
	MemberInjectors int
	Warnings        int
	GeneratedFiles  []string
	DryRun          bool
	Duration        time.Duration
}

// relative shortens path against the working directory when possible
func relative(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
