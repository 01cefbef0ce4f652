package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lazyvibe/tgauto/internal/model"
	"github.com/lazyvibe/tgauto/internal/notify"
	"github.com/lazyvibe/tgauto/internal/sms"
)

const finalizeTimeout = 5 * time.Second

// ErrTaskStopped is the exit error of a worker whose task was stopped.
var ErrTaskStopped = errors.New("task stopped")

// Task is a unit of automation the controller can drive.
type Task interface {
	// ID returns the task identifier.
	ID() string
	// Run starts or resumes the task. A nil worker means there is nothing to run.
	Run() *Worker
	// Pause suspends the task at its next step boundary.
	Pause()
	// Stop terminates the task permanently.
	Stop()
}

// NumberSource is the part of the activation client a task uses.
type NumberSource interface {
	AcquireNumber(ctx context.Context, country string, verification bool) (model.PhoneNumber, error)
	PollStatus(ctx context.Context, activationID string) (string, error)
	Finalize(ctx context.Context, activationID string, outcome model.Outcome)
}

// Registrar consumes a verified number to create an account.
type Registrar interface {
	Register(ctx context.Context, number model.PhoneNumber, code string) error
}

// RegistrarFunc adapts a function to Registrar.
type RegistrarFunc func(ctx context.Context, number model.PhoneNumber, code string) error

// Register calls f.
func (f RegistrarFunc) Register(ctx context.Context, number model.PhoneNumber, code string) error {
	return f(ctx, number, code)
}

// Notifier receives task events.
type Notifier interface {
	Notify(ctx context.Context, event notify.Event)
}

// TaskConfig holds the parameters of one automation run.
type TaskConfig struct {
	Country      string
	Accounts     int
	Verification bool
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// StepResult is the outcome of one account attempt.
type StepResult struct {
	Index  int
	Number model.PhoneNumber
	Code   string
	Err    error
}

// AccountTask acquires one number per account, waits for its code and hands
// the code to the Registrar. Steps run sequentially on a single worker.
type AccountTask struct {
	id        string
	cfg       TaskConfig
	source    NumberSource
	registrar Registrar
	notifier  Notifier
	logger    *slog.Logger
	parent    context.Context

	mu      sync.Mutex
	state   model.TaskState
	gate    chan struct{} // non-nil while paused
	cancel  context.CancelFunc
	worker  *Worker
	results []StepResult
}

// TaskOption configures an AccountTask.
type TaskOption func(*AccountTask)

// WithTaskLogger sets the task logger.
func WithTaskLogger(logger *slog.Logger) TaskOption {
	return func(t *AccountTask) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithNotifier sets the event sink for step outcomes.
func WithNotifier(n Notifier) TaskOption {
	return func(t *AccountTask) {
		t.notifier = n
	}
}

// WithParentContext sets the context the worker context derives from.
func WithParentContext(ctx context.Context) TaskOption {
	return func(t *AccountTask) {
		if ctx != nil {
			t.parent = ctx
		}
	}
}

// NewAccountTask creates a task that has not started yet.
func NewAccountTask(source NumberSource, registrar Registrar, cfg TaskConfig, opts ...TaskOption) *AccountTask {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	t := &AccountTask{
		id:        uuid.NewString(),
		cfg:       cfg,
		source:    source,
		registrar: registrar,
		logger:    slog.New(slog.DiscardHandler),
		parent:    context.Background(),
		state:     model.TaskNotStarted,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("task_id", t.id)
	return t
}

// ID returns the task identifier.
func (t *AccountTask) ID() string {
	return t.id
}

// State returns the current task state.
func (t *AccountTask) State() model.TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Results returns the outcomes of the steps executed so far.
func (t *AccountTask) Results() []StepResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StepResult, len(t.results))
	copy(out, t.results)
	return out
}

// Run starts the worker, or resumes it when paused.
func (t *AccountTask) Run() *Worker {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case model.TaskNotStarted:
		if t.cfg.Accounts <= 0 || t.source == nil {
			t.logger.Info("nothing to run", "accounts", t.cfg.Accounts)
			return nil
		}
		ctx, cancel := context.WithCancel(t.parent)
		t.cancel = cancel
		t.worker = NewWorker(t.id)
		t.state = model.TaskRunning
		t.logger.Info("task started", "country", t.cfg.Country, "accounts", t.cfg.Accounts)
		go t.loop(ctx)
		return t.worker

	case model.TaskPaused:
		t.state = model.TaskRunning
		close(t.gate)
		t.gate = nil
		t.logger.Info("task resumed")
		return t.worker

	case model.TaskRunning:
		return t.worker

	default:
		t.logger.Warn("run on finished task ignored", "state", t.state.String())
		return nil
	}
}

// Pause requests suspension after the in-flight step.
func (t *AccountTask) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != model.TaskRunning {
		return
	}
	t.state = model.TaskPaused
	t.gate = make(chan struct{})
	t.logger.Info("pause requested")
}

// Stop terminates the task and cancels in-flight service calls.
func (t *AccountTask) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Terminal() {
		return
	}
	t.state = model.TaskStopped
	if t.gate != nil {
		close(t.gate)
		t.gate = nil
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.logger.Info("stop requested")
}

func (t *AccountTask) loop(ctx context.Context) {
	succeeded := 0
	for i := 0; i < t.cfg.Accounts; i++ {
		if !t.checkpoint(ctx) {
			break
		}
		res := t.step(ctx, i)
		if res.Err == nil {
			succeeded++
		}
		t.record(ctx, res)
	}

	t.mu.Lock()
	if t.state != model.TaskStopped {
		t.state = model.TaskCompleted
	}
	state := t.state
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.logger.Info("task finished", "state", state.String(), "succeeded", succeeded, "accounts", t.cfg.Accounts)
	if state == model.TaskStopped {
		t.worker.Finish(ErrTaskStopped)
		return
	}
	t.worker.Finish(nil)
}

// checkpoint blocks while paused and reports whether another step may run.
func (t *AccountTask) checkpoint(ctx context.Context) bool {
	for {
		t.mu.Lock()
		switch t.state {
		case model.TaskStopped:
			t.mu.Unlock()
			return false
		case model.TaskPaused:
			gate := t.gate
			t.mu.Unlock()
			t.logger.Info("task paused")
			select {
			case <-gate:
			case <-ctx.Done():
				return false
			}
		default:
			t.mu.Unlock()
			return ctx.Err() == nil
		}
	}
}

func (t *AccountTask) step(ctx context.Context, index int) StepResult {
	res := StepResult{Index: index}

	number, err := t.source.AcquireNumber(ctx, t.cfg.Country, t.cfg.Verification)
	if err != nil {
		res.Err = fmt.Errorf("acquire number: %w", err)
		return res
	}
	res.Number = number
	t.logger.Info("number acquired", "step", index, "number", number.Number, "activation_id", number.ActivationID)

	code, err := t.awaitCode(ctx, number)
	if err != nil {
		t.finalize(ctx, number, model.OutcomeCanceled)
		res.Err = err
		return res
	}
	res.Code = code

	if t.registrar != nil {
		if err := t.registrar.Register(ctx, number, code); err != nil {
			t.finalize(ctx, number, model.OutcomeCanceled)
			res.Err = fmt.Errorf("register %s: %w", number.Number, err)
			return res
		}
	}
	t.finalize(ctx, number, model.OutcomeConfirmed)
	return res
}

func (t *AccountTask) awaitCode(ctx context.Context, number model.PhoneNumber) (string, error) {
	if t.cfg.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.PollTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		code, err := t.source.PollStatus(ctx, number.ActivationID)
		if err == nil {
			return code, nil
		}
		if !sms.IsRetryable(err) {
			return "", fmt.Errorf("poll status: %w", err)
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for code on %s: %w", number.Number, ctx.Err())
		case <-ticker.C:
		}
	}
}

// finalize reports the outcome even when the task context is already canceled.
func (t *AccountTask) finalize(ctx context.Context, number model.PhoneNumber, outcome model.Outcome) {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()
	t.source.Finalize(fctx, number.ActivationID, outcome)
}

func (t *AccountTask) record(ctx context.Context, res StepResult) {
	t.mu.Lock()
	t.results = append(t.results, res)
	t.mu.Unlock()

	event := notify.Event{
		TaskID:    t.id,
		Number:    res.Number.Number,
		Timestamp: time.Now(),
	}
	if res.Err != nil && errors.Is(res.Err, context.Canceled) && t.State() == model.TaskStopped {
		t.logger.Info("step interrupted by stop", "step", res.Index, "number", res.Number.Number)
		return
	}
	if res.Err != nil {
		t.logger.Warn("step failed", "step", res.Index, "number", res.Number.Number, "err", res.Err)
		event.Type = notify.EventStepFailed
		event.Title = "Step failed"
		event.Message = res.Err.Error()
	} else {
		t.logger.Info("code received", "step", res.Index, "number", res.Number.Number, "code", res.Code)
		event.Type = notify.EventCodeReceived
		event.Title = "Code received"
		event.Message = fmt.Sprintf("%s: %s", res.Number.Number, res.Code)
	}
	if t.notifier != nil {
		t.notifier.Notify(context.WithoutCancel(ctx), event)
	}
}
