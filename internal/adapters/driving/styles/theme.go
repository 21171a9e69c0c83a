// Package styles provides the colour theme and lipgloss styles for terminal output.
package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Subtitle style for secondary headers.
	Subtitle lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// Success style for success messages.
	Success lipgloss.Style

	// Warning style for warning messages.
	Warning lipgloss.Style

	// Term highlights a keyword or the front of a flashcard.
	Term lipgloss.Style

	// UserLabel and AssistantLabel prefix conversation turns.
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style

	// Card frames one flashcard.
	Card lipgloss.Style
}

// NewStyles creates styles from a theme using the default renderer.
func NewStyles(theme *Theme) *Styles {
	return build(lipgloss.DefaultRenderer(), theme)
}

// NewStylesFor creates styles whose colour profile is detected from w.
// Writers that are not terminals get plain text.
func NewStylesFor(w io.Writer, theme *Theme) *Styles {
	return build(lipgloss.NewRenderer(w), theme)
}

func build(r *lipgloss.Renderer, theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: r.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: r.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: r.NewStyle().
			Foreground(theme.Foreground),

		Muted: r.NewStyle().
			Foreground(theme.Muted),

		Error: r.NewStyle().
			Foreground(theme.Error),

		Success: r.NewStyle().
			Foreground(theme.Success),

		Warning: r.NewStyle().
			Foreground(theme.Warning),

		Term: r.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		UserLabel: r.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		AssistantLabel: r.NewStyle().
			Bold(true).
			Foreground(theme.Success),

		Card: r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
