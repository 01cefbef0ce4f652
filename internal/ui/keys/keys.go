// Package keys defines keyboard shortcuts for the tgauto TUI.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Controller commands
	Run   key.Binding
	Pause key.Binding
	Stop  key.Binding

	// Settings
	Up   key.Binding
	Down key.Binding
	More key.Binding
	Less key.Binding

	// Console
	ScrollUp   key.Binding
	ScrollDown key.Binding

	Quit key.Binding
}

// DefaultKeyMap returns the default keyboard shortcuts.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Run: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "run"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev country"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next country"),
		),
		More: key.NewBinding(
			key.WithKeys("+", "=", "right", "l"),
			key.WithHelp("+", "more accounts"),
		),
		Less: key.NewBinding(
			key.WithKeys("-", "_", "left", "h"),
			key.WithHelp("-", "fewer accounts"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns short help text for the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Run,
		k.Pause,
		k.Stop,
		k.Up,
		k.More,
		k.Quit,
	}
}

// FullHelp returns complete help text.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Run, k.Pause, k.Stop},
		{k.Up, k.Down, k.More, k.Less},
		{k.ScrollUp, k.ScrollDown, k.Quit},
	}
}
