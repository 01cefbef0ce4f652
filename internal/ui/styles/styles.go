// Package styles defines the visual appearance for the tgauto TUI.
// Using Catppuccin Mocha color palette.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lazyvibe/tgauto/internal/model"
)

// Catppuccin Mocha color palette
var (
	Mauve    = lipgloss.Color("#CBA6F7")
	Red      = lipgloss.Color("#F38BA8")
	Peach    = lipgloss.Color("#FAB387")
	Yellow   = lipgloss.Color("#F9E2AF")
	Green    = lipgloss.Color("#A6E3A1")
	Sapphire = lipgloss.Color("#74C7EC")
	Blue     = lipgloss.Color("#89B4FA")

	Text     = lipgloss.Color("#CDD6F4")
	Subtext0 = lipgloss.Color("#A6ADC8")
	Overlay0 = lipgloss.Color("#6C7086")
	Surface1 = lipgloss.Color("#45475A")
	Surface0 = lipgloss.Color("#313244")
	Base     = lipgloss.Color("#1E1E2E")
	Mantle   = lipgloss.Color("#181825")
)

// Semantic colors (using the palette)
var (
	Primary     = Mauve
	Secondary   = Green
	Accent      = Sapphire
	Danger      = Red
	Warning     = Peach
	Info        = Blue
	TextCol     = Text
	TextMuted   = Subtext0
	Border      = Surface1
	BorderFocus = Mauve
)

// Run posture colors
var (
	StatusRunning = Green
	StatusPaused  = Yellow
	StatusIdle    = Overlay0
)

// Panel styles
var (
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border)

	FocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(BorderFocus)

	PanelTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextCol).
			Padding(0, 1)

	LogoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)
)

// Settings styles
var (
	Label = lipgloss.NewStyle().
		Foreground(TextMuted).
		Width(10)

	Value = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	ValueFrozen = lipgloss.NewStyle().
			Foreground(Overlay0)

	Hint = lipgloss.NewStyle().
		Foreground(Overlay0).
		Italic(true)
)

// Button styles
var (
	Button = lipgloss.NewStyle().
		Foreground(Base).
		Background(Primary).
		Bold(true).
		Padding(0, 2).
		MarginRight(1)

	ButtonDisabled = lipgloss.NewStyle().
			Foreground(Overlay0).
			Background(Surface0).
			Padding(0, 2).
			MarginRight(1)
)

// PostureColor returns the badge color for a run posture.
func PostureColor(p model.Posture) lipgloss.Color {
	switch p {
	case model.PostureRunning:
		return StatusRunning
	case model.PosturePaused:
		return StatusPaused
	default:
		return StatusIdle
	}
}
