// Package theme provides the colour palettes used for release output.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colours used when printing release progress.
type Theme struct {
	Accent    lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color
	ErrorFg   lipgloss.Color
	Cyan      lipgloss.Color
}

// Theme names.
const (
	DraculaName      = "dracula"
	DraculaLightName = "dracula-light"
	CleanLightName   = "clean-light"
	GruvboxDarkName  = "gruvbox-dark"
	NordName         = "nord"
)

// Dracula returns the Dracula theme (dark background, vibrant colors).
func Dracula() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#BD93F9"), // Purple
		MutedFg:   lipgloss.Color("#6272A4"), // Comment
		TextFg:    lipgloss.Color("#F8F8F2"),
		SuccessFg: lipgloss.Color("#50FA7B"),
		WarnFg:    lipgloss.Color("#FFB86C"),
		ErrorFg:   lipgloss.Color("#FF5555"),
		Cyan:      lipgloss.Color("#8BE9FD"),
	}
}

// DraculaLight returns the Dracula theme adapted for light backgrounds.
func DraculaLight() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#7C3AED"),
		MutedFg:   lipgloss.Color("#6E7781"),
		TextFg:    lipgloss.Color("#24292F"),
		SuccessFg: lipgloss.Color("#059669"),
		WarnFg:    lipgloss.Color("#D97706"),
		ErrorFg:   lipgloss.Color("#DC2626"),
		Cyan:      lipgloss.Color("#0891B2"),
	}
}

// CleanLight returns a GitHub-like light theme.
func CleanLight() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#0969DA"),
		MutedFg:   lipgloss.Color("#6E7781"),
		TextFg:    lipgloss.Color("#24292F"),
		SuccessFg: lipgloss.Color("#1A7F37"),
		WarnFg:    lipgloss.Color("#9A6700"),
		ErrorFg:   lipgloss.Color("#CF222E"),
		Cyan:      lipgloss.Color("#0598BC"),
	}
}

// GruvboxDark returns the Gruvbox dark theme.
func GruvboxDark() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#FABD2F"),
		MutedFg:   lipgloss.Color("#928374"),
		TextFg:    lipgloss.Color("#EBDBB2"),
		SuccessFg: lipgloss.Color("#B8BB26"),
		WarnFg:    lipgloss.Color("#FABD2F"),
		ErrorFg:   lipgloss.Color("#FB4934"),
		Cyan:      lipgloss.Color("#83A598"),
	}
}

// Nord returns the Nord theme.
func Nord() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#88C0D0"),
		MutedFg:   lipgloss.Color("#81A1C1"),
		TextFg:    lipgloss.Color("#E5E9F0"),
		SuccessFg: lipgloss.Color("#A3BE8C"),
		WarnFg:    lipgloss.Color("#EBCB8B"),
		ErrorFg:   lipgloss.Color("#BF616A"),
		Cyan:      lipgloss.Color("#88C0D0"),
	}
}

// GetTheme returns the palette for name, falling back to Dracula.
func GetTheme(name string) *Theme {
	switch name {
	case DraculaLightName:
		return DraculaLight()
	case CleanLightName:
		return CleanLight()
	case GruvboxDarkName:
		return GruvboxDark()
	case NordName:
		return Nord()
	default:
		return Dracula()
	}
}

// NormalizeName returns the canonical theme name if it is supported, or "".
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, known := range AvailableThemes() {
		if name == known {
			return name
		}
	}
	return ""
}

// AvailableThemes returns a list of available theme names.
func AvailableThemes() []string {
	return []string{
		DraculaName,
		DraculaLightName,
		CleanLightName,
		GruvboxDarkName,
		NordName,
	}
}
