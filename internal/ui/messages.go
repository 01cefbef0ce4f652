// Package ui provides the terminal user interface for tgauto.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lazyvibe/tgauto/internal/runtime"
)

// ---------- Controller Messages ----------

// SurfaceChangedMsg is sent when the controller changed posture or freeze state.
type SurfaceChangedMsg struct{}

// RunCompletedMsg is sent after the controller's completion reset.
type RunCompletedMsg struct {
	Completion runtime.Completion
}

// ---------- Console Messages ----------

// LogsUpdatedMsg is sent when new log lines are available.
type LogsUpdatedMsg struct{}

// ---------- Command Functions ----------

// WaitForSurface returns a command that waits for a surface change.
func WaitForSurface(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return SurfaceChangedMsg{}
	}
}

// WaitForLogs returns a command that waits for new console lines.
func WaitForLogs(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return LogsUpdatedMsg{}
	}
}

// WaitForCompletion returns a command that waits for the next completed run.
// A nil or closed channel yields no message.
func WaitForCompletion(done <-chan runtime.Completion) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-done
		if !ok {
			return nil
		}
		return RunCompletedMsg{Completion: c}
	}
}
