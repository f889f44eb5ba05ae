package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alexanderchan/changeset-release/internal/theme"
	"github.com/muesli/reflow/indent"
)

const blockIndent = 2

// Printer writes user-facing release progress. Diagnostics go to Err.
type Printer struct {
	Out    io.Writer
	Err    io.Writer
	styles theme.Styles
}

// NewPrinter returns a Printer writing progress to out and failures to errOut.
func NewPrinter(out, errOut io.Writer, styles theme.Styles) *Printer {
	return &Printer{Out: out, Err: errOut, styles: styles}
}

// Step announces a delegated step before it runs.
func (p *Printer) Step(format string, args ...any) {
	fmt.Fprintln(p.Out, p.styles.Step.Render(fmt.Sprintf(format, args...)))
}

// Info prints a line in the theme's text colour.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.Out, p.styles.Text.Render(fmt.Sprintf(format, args...)))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.Out, p.styles.Warn.Render(fmt.Sprintf(format, args...)))
}

// Fail prints a precondition failure line to Out, like the other progress lines.
func (p *Printer) Fail(format string, args ...any) {
	fmt.Fprintln(p.Out, p.styles.Error.Render(fmt.Sprintf(format, args...)))
}

// Error prints a fatal error to Err.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.Err, p.styles.Error.Render(fmt.Sprintf(format, args...)))
}

// Success prints a success line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.Out, p.styles.Success.Render(fmt.Sprintf(format, args...)))
}

// Link prints a label followed by a styled URL.
func (p *Printer) Link(label, url string) {
	fmt.Fprintln(p.Out, label+p.styles.Link.Render(url))
}

// Block prints multi-line text indented and muted. Empty text prints nothing.
func (p *Printer) Block(text string) {
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintln(p.Out, p.styles.Muted.Render(indent.String(text, blockIndent)))
}

// Raw writes text exactly as given.
func (p *Printer) Raw(text string) {
	fmt.Fprint(p.Out, text)
}
