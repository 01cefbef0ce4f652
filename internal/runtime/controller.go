package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lazyvibe/tgauto/internal/model"
)

// DefaultStopGrace bounds how long a stopped task may keep its worker alive.
const DefaultStopGrace = 10 * time.Second

// Surface is the operator-facing control surface. Implementations must not
// block: methods are called with the controller lock held.
type Surface interface {
	SetPosture(p model.Posture)
	// Freeze disables interactive settings while a task is active.
	Freeze()
	Unfreeze()
}

// TaskFactory builds the task for a new activation cycle.
type TaskFactory func() (Task, error)

// Completion describes the end of an activation cycle.
type Completion struct {
	CycleID string
	TaskID  string
	// Abandoned is set when the worker outlived the stop grace period.
	Abandoned bool
	// Err is the worker exit error.
	Err error
}

// Status is a consistent snapshot of the controller.
type Status struct {
	State        model.RunState
	ActiveTaskID string
	CycleID      string
	Monitors     int
	Resets       int
}

type cycle struct {
	id       string
	task     Task
	worker   *Worker
	reset    bool
	watchdog *time.Timer
	// settled is closed once the completion reset and its hooks have run.
	settled chan struct{}
}

// Controller receives operator commands and owns at most one active task.
type Controller struct {
	mu         sync.Mutex
	state      model.RunState
	active     Task
	current    *cycle
	monitors   int
	resets     int
	newTask    TaskFactory
	surface    Surface
	logger     *slog.Logger
	stopGrace  time.Duration
	onComplete []func(Completion)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStopGrace sets the stop watchdog period. Zero disables the watchdog.
func WithStopGrace(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.stopGrace = d
	}
}

// NewController creates an idle controller.
func NewController(factory TaskFactory, surface Surface, opts ...ControllerOption) *Controller {
	c := &Controller{
		state:     model.RunStateIdle,
		newTask:   factory,
		surface:   surface,
		logger:    slog.New(slog.DiscardHandler),
		stopGrace: DefaultStopGrace,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnComplete registers a hook called after every completion reset.
func (c *Controller) OnComplete(fn func(Completion)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onComplete = append(c.onComplete, fn)
}

// Run activates a new task when idle, or resumes the active one.
func (c *Controller) Run() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		if worker := c.active.Run(); worker != nil {
			c.apply(EventResumed)
		}
		return nil
	}

	task, err := c.newTask()
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	worker := task.Run()
	if worker == nil {
		c.logger.Info("run ignored, task has no work", "task_id", task.ID())
		return nil
	}

	c.active = task
	c.current = &cycle{
		id:     uuid.NewString(),
		task:    task,
		worker:  worker,
		settled: make(chan struct{}),
	}
	c.logger.Info("task activated", "task_id", task.ID(), "cycle_id", c.current.id)
	c.apply(EventActivated)
	return nil
}

// Pause suspends the active task. No-op when idle.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return
	}
	c.active.Pause()
	c.apply(EventPauseRequested)
}

// Stop terminates the active task. The active reference is cleared by the
// completion reset once the worker finishes, or by the stop watchdog.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// stopLocked stops the active task and arms the watchdog. Caller holds c.mu.
func (c *Controller) stopLocked() {
	if c.active == nil {
		return
	}
	c.active.Stop()
	c.apply(EventStopRequested)

	cy := c.current
	if c.stopGrace > 0 && cy != nil && cy.watchdog == nil {
		grace := c.stopGrace
		cy.watchdog = time.AfterFunc(grace, func() {
			c.logger.Warn("worker did not finish after stop, abandoning", "task_id", cy.task.ID(), "cycle_id", cy.id, "grace", grace)
			c.complete(cy, true)
		})
	}
}

// Snapshot returns the current controller status.
func (c *Controller) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:    c.state,
		Monitors: c.monitors,
		Resets:   c.resets,
	}
	if c.active != nil {
		st.ActiveTaskID = c.active.ID()
	}
	if c.current != nil {
		st.CycleID = c.current.id
	}
	return st
}

// Shutdown stops the active task and waits until its completion reset and
// OnComplete hooks have run, or ctx is done.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	cy := c.current
	if cy == nil {
		c.mu.Unlock()
		return nil
	}
	c.stopLocked()
	c.mu.Unlock()

	select {
	case <-cy.settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// apply runs a transition and its effects. Caller holds c.mu.
func (c *Controller) apply(ev Event) {
	next, effects := Transition(c.state, ev)
	c.logger.Debug("transition", "event", ev.String(), "from", c.state.String(), "to", next.String())
	c.state = next

	for _, eff := range effects {
		switch eff.Kind {
		case EffectSetPosture:
			if c.surface != nil {
				c.surface.SetPosture(eff.Posture)
			}
		case EffectFreeze:
			if c.surface != nil {
				c.surface.Freeze()
			}
		case EffectUnfreeze:
			if c.surface != nil {
				c.surface.Unfreeze()
			}
		case EffectSpawnMonitor:
			c.monitors++
			go c.monitor(c.current)
		}
	}
}

// monitor waits for the cycle's worker and triggers the completion reset.
func (c *Controller) monitor(cy *cycle) {
	<-cy.worker.Done()
	c.complete(cy, false)
}

// complete performs the completion reset once per cycle.
func (c *Controller) complete(cy *cycle, abandoned bool) {
	c.mu.Lock()
	if cy.reset || c.current != cy {
		c.mu.Unlock()
		return
	}
	cy.reset = true
	if cy.watchdog != nil {
		cy.watchdog.Stop()
	}

	c.apply(EventCompleted)
	c.active = nil
	c.current = nil
	c.resets++

	done := Completion{
		CycleID:   cy.id,
		TaskID:    cy.task.ID(),
		Abandoned: abandoned,
	}
	if !abandoned {
		done.Err = cy.worker.Err()
	}
	hooks := make([]func(Completion), len(c.onComplete))
	copy(hooks, c.onComplete)
	c.mu.Unlock()

	c.logger.Info("task completed", "task_id", done.TaskID, "cycle_id", done.CycleID, "abandoned", abandoned)
	for _, fn := range hooks {
		fn(done)
	}
	close(cy.settled)
}
