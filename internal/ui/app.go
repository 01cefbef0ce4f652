package ui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/lazyvibe/tgauto/internal/model"
	"github.com/lazyvibe/tgauto/internal/runtime"
	"github.com/lazyvibe/tgauto/internal/ui/components/statusbar"
	"github.com/lazyvibe/tgauto/internal/ui/keys"
)

const (
	minAppWidth  = 50
	minAppHeight = 12

	maxAccounts = 999

	headerHeight       = 1
	settingsHeight     = 4 // two rows plus border
	consoleTitleHeight = 1
)

// Controller is the command interface the UI drives.
type Controller interface {
	Run() error
	Pause()
	Stop()
}

// Deps holds the collaborators of the application model.
type Deps struct {
	Controller Controller
	Surface    *Surface
	Settings   *Settings
	// Countries is the catalog in service order.
	Countries []string
	Logs      *runtime.LineBuffer
	// Completions delivers completed runs; optional.
	Completions <-chan runtime.Completion
	Logger      *slog.Logger
}

// App is the main application model.
type App struct {
	// Components
	console   viewport.Model
	statusBar statusbar.Model

	// State
	width    int
	height   int
	ready    bool
	quitting bool
	posture  model.Posture
	frozen   bool

	// Settings
	countries  []string
	countryIdx int
	accounts   int

	// Dependencies
	controller  Controller
	surface     *Surface
	settings    *Settings
	logs        *runtime.LineBuffer
	completions <-chan runtime.Completion
	keys        keys.KeyMap
	logger      *slog.Logger
}

// New creates a new application instance.
func New(deps Deps) App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	surface := deps.Surface
	if surface == nil {
		surface = NewSurface()
	}
	settings := deps.Settings
	if settings == nil {
		settings = NewSettings("", 0)
	}
	logs := deps.Logs
	if logs == nil {
		logs = runtime.NewLineBuffer(500)
	}

	country, accounts := settings.Snapshot()
	idx := 0
	for i, name := range deps.Countries {
		if name == country {
			idx = i
			break
		}
	}

	a := App{
		console:     viewport.New(0, 0),
		statusBar:   statusbar.New(),
		countries:   deps.Countries,
		countryIdx:  idx,
		accounts:    clampAccounts(accounts),
		controller:  deps.Controller,
		surface:     surface,
		settings:    settings,
		logs:        logs,
		completions: deps.Completions,
		keys:        keys.DefaultKeyMap(),
		logger:      logger,
	}
	a.syncSurface()
	a.pushSettings()
	return a
}

// Init initializes the application.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		WaitForSurface(a.surface.Changes()),
		WaitForLogs(a.logs.Updates()),
		WaitForCompletion(a.completions),
	)
}

// SetSize updates the window dimensions.
func (a *App) SetSize(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.statusBar.SetWidth(width)

	if a.windowTooSmall() {
		return
	}

	consoleHeight := height - headerHeight - settingsHeight - 1 - 2 - consoleTitleHeight
	if consoleHeight < 1 {
		consoleHeight = 1
	}
	a.console.Width = width - 2
	a.console.Height = consoleHeight
	a.refreshConsole()
}

func (a App) windowTooSmall() bool {
	return a.width < minAppWidth || a.height < minAppHeight
}

// Country returns the selected country, or "" with an empty catalog.
func (a App) Country() string {
	if len(a.countries) == 0 {
		return ""
	}
	return a.countries[a.countryIdx]
}

// Accounts returns the selected account count.
func (a App) Accounts() int {
	return a.accounts
}

// Posture returns the last observed controller posture.
func (a App) Posture() model.Posture {
	return a.posture
}

// Frozen reports whether the settings are locked by an active task.
func (a App) Frozen() bool {
	return a.frozen
}

// syncSurface copies the controller-facing surface into the model.
func (a *App) syncSurface() {
	a.posture, a.frozen = a.surface.Snapshot()
	a.statusBar.SetPosture(a.posture)
}

func (a *App) pushSettings() {
	a.settings.set(a.Country(), a.accounts)
}

func (a *App) moveCountry(delta int) {
	if a.frozen || len(a.countries) == 0 {
		return
	}
	n := len(a.countries)
	a.countryIdx = ((a.countryIdx+delta)%n + n) % n
	a.pushSettings()
	a.statusBar.ClearMessage()
}

func (a *App) changeAccounts(delta int) {
	if a.frozen {
		return
	}
	a.accounts = clampAccounts(a.accounts + delta)
	a.pushSettings()
	a.statusBar.ClearMessage()
}

// refreshConsole re-renders the log tail, keeping the view pinned to the
// bottom unless the operator scrolled up.
func (a *App) refreshConsole() {
	atBottom := a.console.AtBottom()
	width := a.console.Width
	lines := a.logs.Lines()
	if width > 0 {
		for i, line := range lines {
			lines[i] = ansi.Truncate(line, width, "…")
		}
	}
	a.console.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		a.console.GotoBottom()
	}
}

func clampAccounts(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxAccounts {
		return maxAccounts
	}
	return n
}
