package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lazyvibe/tgauto/internal/runtime"
)

// Update handles all messages for the application.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeys(msg)

	case SurfaceChangedMsg:
		a.syncSurface()
		return a, WaitForSurface(a.surface.Changes())

	case LogsUpdatedMsg:
		a.refreshConsole()
		return a, WaitForLogs(a.logs.Updates())

	case RunCompletedMsg:
		if msg.Completion.Abandoned {
			a.statusBar.SetWarning(completionMessage(msg.Completion))
		} else {
			a.statusBar.SetMessage(completionMessage(msg.Completion), msg.Completion.Err != nil && !errors.Is(msg.Completion.Err, runtime.ErrTaskStopped))
		}
		return a, WaitForCompletion(a.completions)
	}

	return a, nil
}

func (a App) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	aff := a.posture.Affordances()

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return a, tea.Quit

	case key.Matches(msg, a.keys.Run):
		if !aff.RunEnabled || a.controller == nil {
			return a, nil
		}
		label := aff.RunLabel
		a.pushSettings()
		if err := a.controller.Run(); err != nil {
			a.logger.Error("run failed", "error", err)
			a.statusBar.SetMessage("Run failed: "+err.Error(), true)
			return a, nil
		}
		a.syncSurface()
		if a.frozen {
			a.statusBar.SetMessage(label+": "+a.Country(), false)
		} else {
			a.statusBar.SetMessage("Nothing to run", false)
		}
		return a, nil

	case key.Matches(msg, a.keys.Pause):
		if !aff.PauseEnabled || a.controller == nil {
			return a, nil
		}
		a.controller.Pause()
		a.syncSurface()
		a.statusBar.SetMessage("Pausing after the current account", false)
		return a, nil

	case key.Matches(msg, a.keys.Stop):
		if !aff.StopEnabled || a.controller == nil {
			return a, nil
		}
		a.controller.Stop()
		a.syncSurface()
		a.statusBar.SetMessage("Stopping", false)
		return a, nil

	case key.Matches(msg, a.keys.Up):
		a.moveCountry(-1)
		return a, nil

	case key.Matches(msg, a.keys.Down):
		a.moveCountry(1)
		return a, nil

	case key.Matches(msg, a.keys.More):
		a.changeAccounts(1)
		return a, nil

	case key.Matches(msg, a.keys.Less):
		a.changeAccounts(-1)
		return a, nil

	case key.Matches(msg, a.keys.ScrollUp):
		a.console.HalfViewUp()
		return a, nil

	case key.Matches(msg, a.keys.ScrollDown):
		a.console.HalfViewDown()
		return a, nil
	}

	return a, nil
}

func completionMessage(c runtime.Completion) string {
	switch {
	case c.Abandoned:
		return "Task abandoned: worker did not stop in time"
	case errors.Is(c.Err, runtime.ErrTaskStopped):
		return "Task stopped"
	case c.Err != nil:
		return fmt.Sprintf("Task failed: %v", c.Err)
	default:
		return "Run completed"
	}
}
