// tgauto - SMS-activation driven account verification
// A TUI that runs, pauses and stops automation tasks fed by disposable numbers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lazyvibe/tgauto/internal/app"
	"github.com/lazyvibe/tgauto/internal/logging"
	"github.com/lazyvibe/tgauto/internal/model"
	"github.com/lazyvibe/tgauto/internal/notify"
	"github.com/lazyvibe/tgauto/internal/runtime"
	"github.com/lazyvibe/tgauto/internal/sms"
	"github.com/lazyvibe/tgauto/internal/ui"
	"github.com/lazyvibe/tgauto/internal/ui/components/setup"
)

const (
	appName    = "tgauto"
	appVersion = "0.1.0"

	catalogTimeout = 30 * time.Second
	consoleLines   = 1000
)

func main() {
	var (
		configDir   string
		logLevel    string
		logFile     string
		showVersion bool
	)
	flag.StringVar(&configDir, "config-dir", "", "Directory holding config.json and .env")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&logFile, "log-file", "", "Also append logs to this file")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(appName, appVersion)
		return
	}

	if configDir == "" {
		dir, err := getConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting config directory: %v\n", err)
			os.Exit(1)
		}
		configDir = dir
	}

	config, err := app.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Check if first-run setup is needed
	if !config.Initialized() {
		if err := runSetupWizard(configDir, config); err != nil {
			fmt.Fprintf(os.Stderr, "Error running setup wizard: %v\n", err)
			os.Exit(1)
		}
		config, err = app.Load(configDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reloading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Command-line flags take precedence over file and environment.
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFile != "" {
		config.LogFile = logFile
	}

	if err := run(config); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the activation client, controller and UI, and blocks until the
// operator quits.
func run(config *app.Config) error {
	logs := runtime.NewLineBuffer(consoleLines)
	var out io.Writer = logs
	if config.LogFile != "" {
		f, err := logging.OpenFile(config.LogFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = io.MultiWriter(logs, f)
	}
	logger := logging.New(config.LogLevel, out)

	var httpOpts []sms.HTTPOption
	if config.BaseURL != "" {
		httpOpts = append(httpOpts, sms.WithBaseURL(config.BaseURL))
	}
	ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
	client, err := sms.NewHTTP(ctx, config.APIKey, httpOpts, sms.WithLogger(logger))
	cancel()
	if err != nil {
		return fmt.Errorf("connect to activation service: %w", err)
	}
	logger.Info("country catalog loaded", "countries", len(client.Countries()))

	sink := notify.NewDispatcher().For(config.Notification)
	surface := ui.NewSurface()
	settings := ui.NewSettings(config.Country, config.Accounts)

	registrar := runtime.RegistrarFunc(func(_ context.Context, number model.PhoneNumber, code string) error {
		logger.Info("verification code ready", "number", number.Number, "code", code)
		return nil
	})

	factory := func() (runtime.Task, error) {
		country, accounts := settings.Snapshot()
		if country == "" {
			return nil, errors.New("no country selected")
		}
		return runtime.NewAccountTask(client, registrar, runtime.TaskConfig{
			Country:      country,
			Accounts:     accounts,
			Verification: config.Verification,
			PollInterval: time.Duration(config.PollInterval),
			PollTimeout:  time.Duration(config.PollTimeout),
		}, runtime.WithTaskLogger(logger), runtime.WithNotifier(sink)), nil
	}

	controller := runtime.NewController(factory, surface,
		runtime.WithControllerLogger(logger),
		runtime.WithStopGrace(time.Duration(config.StopGrace)),
	)

	completions := make(chan runtime.Completion, 4)
	controller.OnComplete(func(c runtime.Completion) {
		sink.Notify(context.Background(), completionEvent(c))
		select {
		case completions <- c:
		default:
		}
	})

	application := ui.New(ui.Deps{
		Controller:  controller,
		Surface:     surface,
		Settings:    settings,
		Countries:   client.Countries(),
		Logs:        logs,
		Completions: completions,
		Logger:      logger,
	})

	p := tea.NewProgram(
		application,
		tea.WithAltScreen(),
	)
	_, runErr := p.Run()

	// Give a running task the same grace the stop watchdog allows.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Duration(config.StopGrace)+time.Second)
	defer cancelShutdown()
	if err := controller.Shutdown(shutdownCtx); err != nil {
		logger.Warn("task did not stop before exit", "err", err)
	}

	if runErr != nil {
		return fmt.Errorf("run application: %w", runErr)
	}
	return nil
}

func completionEvent(c runtime.Completion) notify.Event {
	message := "Run completed"
	switch {
	case c.Abandoned:
		message = "Run abandoned after stop"
	case errors.Is(c.Err, runtime.ErrTaskStopped):
		message = "Run stopped"
	case c.Err != nil:
		message = "Run failed: " + c.Err.Error()
	}
	return notify.Event{
		TaskID:    c.TaskID,
		Type:      notify.EventRunCompleted,
		Title:     appName,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// runSetupWizard runs the first-run setup wizard.
func runSetupWizard(configDir string, config *app.Config) error {
	wizard := setup.New(configDir, config)

	p := tea.NewProgram(
		wizard,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if m, ok := finalModel.(setup.Model); ok {
		if !m.IsComplete() {
			// User quit without completing setup
			os.Exit(0)
		}
	}

	return nil
}

// getConfigDir returns the tgauto configuration directory.
func getConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if available, otherwise default to ~/.config
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, appName), nil
}
