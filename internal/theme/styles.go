package theme

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Styles are the rendered text styles for one output stream.
type Styles struct {
	Step    lipgloss.Style
	Text    lipgloss.Style
	Success lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Link    lipgloss.Style
}

// ColorEnabled reports whether w should receive ANSI colours: never when
// noColor or NO_COLOR is set, otherwise only for terminals.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec
}

// NewStyles builds styles for w from t. With color false every style renders
// its input unchanged.
func NewStyles(w io.Writer, t *Theme, color bool) Styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		plain := r.NewStyle()
		return Styles{Step: plain, Text: plain, Success: plain, Warn: plain, Error: plain, Muted: plain, Link: plain}
	}
	if t == nil {
		t = Dracula()
	}
	return Styles{
		Step:    r.NewStyle().Foreground(t.Cyan),
		Text:    r.NewStyle().Foreground(t.TextFg),
		Success: r.NewStyle().Foreground(t.SuccessFg).Bold(true),
		Warn:    r.NewStyle().Foreground(t.WarnFg).Bold(true),
		Error:   r.NewStyle().Foreground(t.ErrorFg).Bold(true),
		Muted:   r.NewStyle().Foreground(t.MutedFg),
		Link:    r.NewStyle().Foreground(t.Accent).Underline(true),
	}
}
