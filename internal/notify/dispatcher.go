// Package notify delivers automation events to the operator outside the TUI.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/gen2brain/beeep"
	"github.com/lazyvibe/tgauto/internal/model"
)

// maxMessageWidth bounds the message cells sent to any channel, tail included.
const maxMessageWidth = 800

// EventType represents a notification event type.
type EventType string

const (
	EventCodeReceived EventType = "code_received"
	EventStepFailed   EventType = "step_failed"
	EventRunCompleted EventType = "run_completed"
)

// Event describes a notification event.
type Event struct {
	TaskID    string
	Number    string
	Type      EventType
	Title     string
	Message   string
	Timestamp time.Time
}

// Dispatcher sends notifications to configured channels.
type Dispatcher struct {
	client  *http.Client
	desktop func(title, message string) error
}

// NewDispatcher creates a Dispatcher with sensible defaults.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		desktop: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// Dispatch sends a notification event using the given config.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg model.NotificationConfig, event Event) {
	title := strings.TrimSpace(event.Title)
	if title == "" {
		title = "tgauto"
	}
	message := strings.TrimSpace(event.Message)
	if message == "" {
		message = string(event.Type)
	}
	message = ansi.Truncate(message, maxMessageWidth, "...")
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if cfg.Desktop && d.desktop != nil {
		_ = d.desktop(title, message)
	}

	if cfg.WebhookURL != "" {
		payload := map[string]any{
			"taskId":    event.TaskID,
			"number":    event.Number,
			"event":     event.Type,
			"title":     title,
			"message":   message,
			"timestamp": event.Timestamp.Unix(),
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.WebhookURL, bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := d.client.Do(req)
		if err != nil {
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}

// Sink binds a dispatcher to one notification config.
type Sink struct {
	d   *Dispatcher
	cfg model.NotificationConfig
}

// For returns a sink that dispatches with cfg.
func (d *Dispatcher) For(cfg model.NotificationConfig) *Sink {
	return &Sink{d: d, cfg: cfg}
}

// Notify dispatches the event in the background so callers never wait on
// desktop or webhook delivery.
func (s *Sink) Notify(ctx context.Context, event Event) {
	if !s.cfg.Desktop && s.cfg.WebhookURL == "" {
		return
	}
	go s.d.Dispatch(ctx, s.cfg, event)
}
