package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/lazyvibe/tgauto/internal/ui/styles"
)

// View renders the entire application.
func (a App) View() string {
	if a.quitting {
		bye := lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Primary).
			Render("Goodbye from tgauto!")
		return lipgloss.NewStyle().
			Width(a.width).
			Height(a.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(bye)
	}

	if !a.ready {
		loading := lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Accent).
			Render("Loading tgauto...")
		return lipgloss.NewStyle().
			Width(a.width).
			Height(a.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(loading)
	}

	if a.windowTooSmall() {
		msg := fmt.Sprintf("Window too small, need at least %dx%d (now %dx%d)", minAppWidth, minAppHeight, a.width, a.height)
		notice := lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Accent).
			Render(msg)
		return lipgloss.NewStyle().
			Width(a.width).
			Height(a.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(notice)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderHeader(),
		a.renderSettings(),
		a.renderConsole(),
		a.statusBar.View(),
	)
}

// renderHeader renders the logo and the three command buttons.
func (a App) renderHeader() string {
	aff := a.posture.Affordances()
	buttons := lipgloss.JoinHorizontal(
		lipgloss.Top,
		renderButton("r", aff.RunLabel, aff.RunEnabled),
		renderButton("p", "Pause", aff.PauseEnabled),
		renderButton("s", "Stop", aff.StopEnabled),
	)
	logo := styles.LogoStyle.Render("tgauto ")
	return lipgloss.NewStyle().
		Width(a.width).
		MaxHeight(headerHeight).
		Render(logo + buttons)
}

func renderButton(hotkey, label string, enabled bool) string {
	text := fmt.Sprintf("%s %s", hotkey, label)
	if !enabled {
		return styles.ButtonDisabled.Render(text)
	}
	return styles.Button.Render(text)
}

// renderSettings renders the country selector and account counter.
func (a App) renderSettings() string {
	valueStyle := styles.Value
	if a.frozen {
		valueStyle = styles.ValueFrozen
	}

	country := "(no countries)"
	if len(a.countries) > 0 {
		country = fmt.Sprintf("◀ %s ▶  %d/%d", a.Country(), a.countryIdx+1, len(a.countries))
	}
	countryRow := styles.Label.Render("Country") + valueStyle.Render(country)

	accountsRow := styles.Label.Render("Accounts") + valueStyle.Render(fmt.Sprintf("− %d +", a.accounts))
	if a.frozen {
		accountsRow += styles.Hint.Render("   locked while a task is active")
	}

	border := styles.FocusedBorderStyle
	if a.frozen {
		border = styles.BorderStyle
	}
	return border.
		Width(a.width - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, countryRow, accountsRow))
}

// renderConsole renders the log tail under its title.
func (a App) renderConsole() string {
	title := styles.PanelTitle.Render(fmt.Sprintf("Console (%d lines)", a.logs.Len()))
	return styles.BorderStyle.
		Width(a.width - 2).
		Height(a.console.Height + consoleTitleHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, a.console.View()))
}
