// Package output renders user-facing progress for a grading run.
//
// The [Printer] interface decouples the workflow from the terminal so tests
// can capture output with [NewPrinterWithWriter]. Styling uses lipgloss; when
// the writer is not a color-capable terminal the styles degrade to plain text.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StepResult is the outcome of one workflow step, used in the run summary.
type StepResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Printer writes progress for a grading run.
type Printer interface {
	// Header prints a boxed banner with a title and optional detail lines.
	Header(title string, lines ...string)

	// StepStart announces step n of total.
	StepStart(n, total int, name string)

	// Field prints a labelled value, e.g. "Env file path: /x/.env".
	Field(label, value string)

	// StatusCode prints the HTTP status of a response.
	StatusCode(code int)

	// Body prints a raw response body.
	Body(body []byte)

	// Written reports that an artifact file was saved.
	Written(path string)

	// Error prints a failure message.
	Error(msg string)

	// Summary prints the per-step outcome of a run.
	Summary(results []StepResult, total time.Duration)
}

type styles struct {
	header  lipgloss.Style
	step    lipgloss.Style
	label   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header: r.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(0, 2).
			Bold(true),
		step: r.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true),
		label:   r.NewStyle().Faint(true),
		success: r.NewStyle().Foreground(lipgloss.Color("10")),
		failure: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// DefaultPrinter is the lipgloss-backed [Printer].
//
// Styles are bound to a renderer for the printer's own writer, so output to a
// file or buffer carries no escape sequences.
type DefaultPrinter struct {
	out   io.Writer
	style styles
}

// NewPrinter creates a [DefaultPrinter] writing to stdout.
func NewPrinter() *DefaultPrinter {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter creates a [DefaultPrinter] writing to w.
func NewPrinterWithWriter(w io.Writer) *DefaultPrinter {
	return &DefaultPrinter{
		out:   w,
		style: newStyles(lipgloss.NewRenderer(w)),
	}
}

// Header prints a boxed title followed by lines.
func (p *DefaultPrinter) Header(title string, lines ...string) {
	content := strings.Join(append([]string{title}, lines...), "\n")
	fmt.Fprintf(p.out, "\n%s\n\n", p.style.header.Render(content))
}

// StepStart prints the "[n/total] name" line that opens a step.
func (p *DefaultPrinter) StepStart(n, total int, name string) {
	fmt.Fprintf(p.out, "%s\n", p.style.step.Render(fmt.Sprintf("[%d/%d] %s", n, total, name)))
}

// Field prints an indented "label: value" line.
func (p *DefaultPrinter) Field(label, value string) {
	fmt.Fprintf(p.out, "  %s %s\n", p.style.label.Render(label+":"), value)
}

// StatusCode prints the status, red when it is not 2xx.
func (p *DefaultPrinter) StatusCode(code int) {
	style := p.style.success
	if code < 200 || code > 299 {
		style = p.style.failure
	}
	fmt.Fprintf(p.out, "  %s %s\n", p.style.label.Render("Response status code:"), style.Render(fmt.Sprintf("%d", code)))
}

// Body prints a response body as received.
func (p *DefaultPrinter) Body(body []byte) {
	fmt.Fprintf(p.out, "  %s %s\n", p.style.label.Render("Response body:"), string(body))
}

// Written reports a saved artifact.
func (p *DefaultPrinter) Written(path string) {
	fmt.Fprintf(p.out, "  %s %s\n", p.style.success.Render("✓ wrote"), path)
}

// Error prints msg with a failure mark.
func (p *DefaultPrinter) Error(msg string) {
	fmt.Fprintf(p.out, "%s %s\n", p.style.failure.Render("✗"), msg)
}

// Summary prints one line per step and the overall outcome in a box.
func (p *DefaultPrinter) Summary(results []StepResult, total time.Duration) {
	var b strings.Builder
	failed := false
	for i, r := range results {
		mark := p.style.success.Render("✓")
		if r.Err != nil {
			mark = p.style.failure.Render("✗")
			failed = true
		}
		fmt.Fprintf(&b, "%s [%d] %-16s %s\n", mark, i+1, r.Name, r.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "Total: %s", total.Round(time.Millisecond))

	title := "✓ RUN COMPLETE"
	if failed {
		title = "✗ RUN FAILED"
	}
	p.Header(title, b.String())
}
