// Package statusbar provides the status bar UI component.
package statusbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/lazyvibe/tgauto/internal/model"
	"github.com/lazyvibe/tgauto/internal/ui/keys"
	"github.com/lazyvibe/tgauto/internal/ui/styles"
)

// Model is the status bar component.
type Model struct {
	width   int
	message   string
	isError   bool
	isWarning bool
	keyMap  keys.KeyMap
	posture model.Posture
}

// New creates a new status bar component.
func New() Model {
	return Model{
		keyMap: keys.DefaultKeyMap(),
	}
}

// SetWidth updates the status bar width.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// SetMessage sets a temporary message.
func (m *Model) SetMessage(msg string, isError bool) {
	m.message = msg
	m.isError = isError
	m.isWarning = false
}

// SetWarning sets a temporary message highlighted as a warning.
func (m *Model) SetWarning(msg string) {
	m.message = msg
	m.isError = false
	m.isWarning = true
}

// ClearMessage clears the temporary message.
func (m *Model) ClearMessage() {
	m.message = ""
	m.isError = false
	m.isWarning = false
}

// SetPosture updates the run state badge.
func (m *Model) SetPosture(p model.Posture) {
	m.posture = p
}

// Message returns the current message.
func (m Model) Message() string {
	return m.message
}

// View renders the status bar.
func (m Model) View() string {
	brand := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Render(" tgauto ")

	badge := lipgloss.NewStyle().
		Foreground(styles.Base).
		Background(styles.PostureColor(m.posture)).
		Bold(true).
		Padding(0, 1).
		Render(strings.ToUpper(m.posture.String()))

	helpItems := make([]string, 0, len(m.keyMap.ShortHelp()))
	for _, b := range m.keyMap.ShortHelp() {
		h := b.Help()
		helpItems = append(helpItems, m.renderKey(h.Key, h.Desc))
	}
	help := strings.Join(helpItems, " ")

	leftContent := brand + badge
	rightContent := help

	// Message takes whatever room the badge and help leave.
	room := m.width - lipgloss.Width(leftContent) - lipgloss.Width(rightContent) - 2
	var msgArea string
	if m.message != "" && room > 0 {
		msgStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		switch {
		case m.isError:
			msgStyle = lipgloss.NewStyle().Foreground(styles.Danger).Bold(true)
		case m.isWarning:
			msgStyle = lipgloss.NewStyle().Foreground(styles.Warning).Bold(true)
		}
		msgArea = msgStyle.Render(" " + ansi.Truncate(m.message, room, "…") + " ")
	}

	padding := m.width - lipgloss.Width(leftContent) - lipgloss.Width(rightContent) - lipgloss.Width(msgArea)
	if padding < 0 {
		padding = 0
	}
	leftPad := padding / 2
	rightPad := padding - leftPad

	content := leftContent +
		strings.Repeat(" ", leftPad) +
		msgArea +
		strings.Repeat(" ", rightPad) +
		rightContent

	return lipgloss.NewStyle().
		Background(styles.Mantle).
		Foreground(styles.TextMuted).
		Width(m.width).
		MaxHeight(1).
		Render(content)
}

// renderKey renders a key binding hint.
func (m Model) renderKey(key, desc string) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(styles.Overlay0)
	return keyStyle.Render(key) + descStyle.Render(":"+desc)
}
