// Package ui provides the visual styling for the wastenot terminal dashboard.
// Ships a light and a dark palette with terminal auto-detection.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f6f7f4") // Pale sage
	LightForeground = lipgloss.Color("#1b2b1f") // Deep green-black
	LightPrimary    = lipgloss.Color("#2e7d32") // Forest green
	LightAccent     = lipgloss.Color("#66bb6a") // Fresh green
	LightSecondary  = lipgloss.Color("#e3e8e0")
	LightMuted      = lipgloss.Color("#8a9a8c")
	LightBorder     = lipgloss.Color("#d7ded4")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#121a14")
	DarkForeground = lipgloss.Color("#ecf2ec")
	DarkPrimary    = lipgloss.Color("#81c784") // Fresh green (flipped)
	DarkAccent     = lipgloss.Color("#2e7d32") // Forest green (flipped)
	DarkSecondary  = lipgloss.Color("#1c2820")
	DarkMuted      = lipgloss.Color("#5f7263")
	DarkBorder     = lipgloss.Color("#2c3a30")
	DarkCard       = lipgloss.Color("#18241b")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935") // Red
	Success     = lipgloss.Color("#66bb6a") // Green
	Warning     = lipgloss.Color("#ffb300") // Amber
	Info        = lipgloss.Color("#29b6f6") // Blue

	// Chart Colors
	Chart1 = lipgloss.Color("#66bb6a") // Green
	Chart2 = lipgloss.Color("#4db6ac") // Teal
	Chart3 = lipgloss.Color("#ffd54f") // Yellow
	Chart4 = lipgloss.Color("#ff8a65") // Orange
	Chart5 = lipgloss.Color("#7986cb") // Indigo
)

// ChartColors returns the chart palette in cycling order.
func ChartColors() []lipgloss.Color {
	return []lipgloss.Color{Chart1, Chart2, Chart3, Chart4, Chart5}
}

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// DetectTheme auto-detects based on terminal hints or returns light mode
func DetectTheme() Theme {
	// COLORFGBG is usually "foreground;background": ANSI backgrounds
	// 0-6 and 8 indicate a dark terminal.
	colorTerm := os.Getenv("COLORFGBG")
	if colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}

	// Check for explicit dark mode preference
	if os.Getenv("WASTENOT_DARK_MODE") == "1" {
		return DarkTheme()
	}

	return LightTheme()
}

// ThemeFromName resolves a configured theme name. Anything other than
// "light" or "dark" falls back to terminal detection.
func ThemeFromName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	App    lipgloss.Style
	Header lipgloss.Style
	Footer lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Tabs
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Cards
	Card      lipgloss.Style
	CardLabel lipgloss.Style
	CardValue lipgloss.Style

	// Code
	CodeBlock  lipgloss.Style
	InlineCode lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		// Layout styles
		App: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		// Text styles
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		// Tab styles
		TabActive: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Underline(true).
			Padding(0, 1),

		TabInactive: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		// Status styles
		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		// Card styles
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 2).
			MarginRight(1),

		CardLabel: lipgloss.NewStyle().
			Foreground(theme.Muted),

		CardValue: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		// Code styles
		CodeBlock: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		InlineCode: lipgloss.NewStyle().
			Background(theme.Secondary).
			Foreground(theme.Primary).
			Padding(0, 1),

		// Component styles
		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),
	}
}

// DefaultStyles returns styles with the auto-detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Logo returns the wastenot banner
func Logo(s Styles) string {
	logo := `
█ █ █ ▄▀█ █▀ ▀█▀ █▀▀ █▄ █ █▀█ ▀█▀
▀▄▀▄▀ █▀█ ▄█  █  ██▄ █ ▀█ █▄█  █
`
	return s.Title.Render(logo)
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
