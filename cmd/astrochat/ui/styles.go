// Package ui provides the visual styling for the AstroChat terminal
// interface: a dark cosmic palette, cyan through violet to pink over deep
// slate.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Dark palette. Space is dark; this is the default.
	DarkBackground = lipgloss.Color("#020617") // slate-950
	DarkForeground = lipgloss.Color("#cbd5e1") // slate-300
	DarkCard       = lipgloss.Color("#1e293b") // slate-800
	DarkBorder     = lipgloss.Color("#475569") // slate-600
	DarkMuted      = lipgloss.Color("#64748b") // slate-500

	Cyan   = lipgloss.Color("#67e8f9") // cyan-300
	Violet = lipgloss.Color("#a78bfa") // violet-400
	Pink   = lipgloss.Color("#f472b6") // pink-400

	Destructive = lipgloss.Color("#f87171") // red-400
	Warning     = lipgloss.Color("#facc15") // yellow-400
)

// Theme holds the current color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Card       lipgloss.Color
	Border     lipgloss.Color
	Muted      lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Highlight  lipgloss.Color
	IsDark     bool
}

// DarkTheme is the cosmic default.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Card:       DarkCard,
		Border:     DarkBorder,
		Muted:      DarkMuted,
		Primary:    Cyan,
		Accent:     Violet,
		Highlight:  Pink,
		IsDark:     true,
	}
}

// LightTheme keeps the brand hues over a pale background for terminals
// that insist on daylight.
func LightTheme() Theme {
	return Theme{
		Background: lipgloss.Color("#f8fafc"),
		Foreground: lipgloss.Color("#0f172a"),
		Card:       lipgloss.Color("#e2e8f0"),
		Border:     lipgloss.Color("#94a3b8"),
		Muted:      lipgloss.Color("#64748b"),
		Primary:    lipgloss.Color("#0891b2"),
		Accent:     lipgloss.Color("#7c3aed"),
		Highlight:  lipgloss.Color("#db2777"),
		IsDark:     false,
	}
}

// ThemeByName maps a config value to a theme, defaulting dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

// Styles holds every styled component the chat interface uses.
type Styles struct {
	Theme Theme

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	UserLabel  lipgloss.Style
	ModelLabel lipgloss.Style
	UserText   lipgloss.Style

	ErrorBanner lipgloss.Style
	ErrorTitle  lipgloss.Style

	LevelOption   lipgloss.Style
	LevelSelected lipgloss.Style

	TimelineAxis     lipgloss.Style
	TimelineMarker   lipgloss.Style
	TimelineHover    lipgloss.Style
	TimelineSelected lipgloss.Style
	TimelinePane     lipgloss.Style
	InfoBox          lipgloss.Style

	Suggestion lipgloss.Style
	Spinner    lipgloss.Style
	InputBox   lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Bold(true),

		UserLabel: lipgloss.NewStyle().
			Foreground(theme.Highlight).
			Bold(true).
			MarginTop(1),

		ModelLabel: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			MarginTop(1),

		UserText: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		ErrorBanner: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Destructive).
			Foreground(theme.Foreground).
			Padding(0, 1),

		ErrorTitle: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		LevelOption: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 2),

		LevelSelected: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary),

		TimelineAxis: lipgloss.NewStyle().
			Foreground(theme.Border),

		TimelineMarker: lipgloss.NewStyle().
			Foreground(theme.Primary),

		TimelineHover: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		TimelineSelected: lipgloss.NewStyle().
			Foreground(theme.Highlight).
			Bold(true),

		TimelinePane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		InfoBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		Suggestion: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Primary),

		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
	}
}
