// Package setup provides the first-run setup wizard.
package setup

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lazyvibe/tgauto/internal/app"
	"github.com/lazyvibe/tgauto/internal/ui/styles"
)

// Step represents a setup wizard step.
type Step int

const (
	StepWelcome Step = iota
	StepAPIKey
	StepComplete
)

// Model is the setup wizard model.
type Model struct {
	step      Step
	config    *app.Config
	configDir string
	keyInput  textinput.Model
	error     string
	width     int
	height    int
	save      func(configDir string, cfg *app.Config) error
}

// New creates a new setup wizard.
func New(configDir string, config *app.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "SMS-activation API key"
	ti.CharLimit = 128
	ti.Width = 50
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	return Model{
		step:      StepWelcome,
		config:    config,
		configDir: configDir,
		keyInput:  ti,
		save:      app.SaveConfig,
	}
}

// Init initializes the setup wizard.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if msg.String() == "q" && m.step != StepAPIKey {
			return m, tea.Quit
		}

		switch msg.String() {
		case "enter":
			return m.handleEnter()
		case "esc":
			if m.step == StepAPIKey {
				m.step = StepWelcome
				m.keyInput.Blur()
				m.error = ""
				return m, nil
			}
		}
	}

	if m.step == StepAPIKey {
		var cmd tea.Cmd
		m.keyInput, cmd = m.keyInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleEnter processes the enter key for each step.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.step {
	case StepWelcome:
		m.step = StepAPIKey
		m.keyInput.Focus()
		return m, textinput.Blink

	case StepAPIKey:
		apiKey := strings.TrimSpace(m.keyInput.Value())
		if apiKey == "" {
			m.error = "Please enter your API key"
			return m, nil
		}

		m.config.APIKey = apiKey
		if err := m.save(m.configDir, m.config); err != nil {
			m.error = err.Error()
			return m, nil
		}
		m.error = ""
		m.step = StepComplete
		return m, nil

	case StepComplete:
		return m, tea.Quit
	}

	return m, nil
}

// IsComplete returns true if setup is complete.
func (m Model) IsComplete() bool {
	return m.step == StepComplete
}

// Step returns the current step.
func (m Model) Step() Step {
	return m.step
}

// Config returns the configured config.
func (m Model) Config() *app.Config {
	return m.config
}

// View renders the setup wizard.
func (m Model) View() string {
	switch m.step {
	case StepWelcome:
		return m.viewWelcome()
	case StepAPIKey:
		return m.viewAPIKey()
	case StepComplete:
		return m.viewComplete()
	}
	return ""
}

func (m Model) viewWelcome() string {
	title := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Render("Welcome to tgauto!")

	desc := lipgloss.NewStyle().
		Foreground(styles.TextCol).
		Width(60).
		Align(lipgloss.Center).
		Render("tgauto receives verification codes on disposable numbers from an SMS-activation service. It needs your service API key first.")

	hint := lipgloss.NewStyle().
		Foreground(styles.Secondary).
		Bold(true).
		Render("Press Enter to continue...")

	return m.center(lipgloss.JoinVertical(lipgloss.Center, title, "", desc, "", "", hint))
}

func (m Model) viewAPIKey() string {
	title := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Render("Configure API key")

	inputBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary).
		Padding(0, 1).
		Render(m.keyInput.View())

	var errorMsg string
	if m.error != "" {
		errorMsg = lipgloss.NewStyle().
			Foreground(styles.Danger).
			Bold(true).
			Render(m.error)
	}

	hint := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("Press Enter to save • Esc to go back")

	return m.center(lipgloss.JoinVertical(lipgloss.Center, title, "", inputBox, "", errorMsg, "", hint))
}

func (m Model) viewComplete() string {
	title := lipgloss.NewStyle().
		Foreground(styles.Secondary).
		Bold(true).
		Render("Setup complete")

	path := lipgloss.NewStyle().
		Foreground(styles.Accent).
		Render("Saved to " + app.ConfigPath(m.configDir))

	hint := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("Press Enter to start")

	return m.center(lipgloss.JoinVertical(lipgloss.Center, title, "", path, "", hint))
}

func (m Model) center(content string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
