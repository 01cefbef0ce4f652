package runtime

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazyvibe/tgauto/internal/model"
)

type fakeTask struct {
	mu          sync.Mutex
	id          string
	hasWork     bool
	cooperative bool
	worker      *Worker
	runs        int
	pauses      int
	stops       int
	stopped     bool
}

func (f *fakeTask) ID() string { return f.id }

func (f *fakeTask) Run() *Worker {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	if !f.hasWork || f.stopped {
		return nil
	}
	if f.worker == nil {
		f.worker = NewWorker(f.id)
	}
	return f.worker
}

func (f *fakeTask) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
}

func (f *fakeTask) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.stopped = true
	if f.cooperative && f.worker != nil {
		f.worker.Finish(ErrTaskStopped)
	}
}

func (f *fakeTask) finish() bool {
	f.mu.Lock()
	w := f.worker
	f.mu.Unlock()
	if w == nil {
		return false
	}
	w.Finish(nil)
	return true
}

type fakeSurface struct {
	mu        sync.Mutex
	postures  []model.Posture
	freezes   int
	unfreezes int
}

func (s *fakeSurface) SetPosture(p model.Posture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postures = append(s.postures, p)
}

func (s *fakeSurface) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freezes++
}

func (s *fakeSurface) Unfreeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unfreezes++
}

func (s *fakeSurface) snapshot() ([]model.Posture, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Posture(nil), s.postures...), s.freezes, s.unfreezes
}

func (s *fakeSurface) last() model.Posture {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.postures) == 0 {
		return model.PostureIdle
	}
	return s.postures[len(s.postures)-1]
}

func singleTask(task *fakeTask) TaskFactory {
	return func() (Task, error) { return task, nil }
}

func completions(c *Controller) <-chan Completion {
	ch := make(chan Completion, 8)
	c.OnComplete(func(done Completion) { ch <- done })
	return ch
}

func awaitCompletion(t *testing.T, ch <-chan Completion) Completion {
	t.Helper()
	select {
	case done := <-ch:
		return done
	case <-time.After(2 * time.Second):
		t.Fatal("completion reset did not fire")
		return Completion{}
	}
}

func TestControllerRunWithoutWork(t *testing.T) {
	task := &fakeTask{id: "empty"}
	surface := &fakeSurface{}
	c := NewController(singleTask(task), surface)

	require.NoError(t, c.Run())
	require.NoError(t, c.Run())

	st := c.Snapshot()
	assert.Equal(t, model.RunStateIdle, st.State)
	assert.Empty(t, st.ActiveTaskID)
	assert.Equal(t, 0, st.Monitors)
	assert.Equal(t, 2, task.runs)

	postures, freezes, unfreezes := surface.snapshot()
	assert.Empty(t, postures)
	assert.Zero(t, freezes)
	assert.Zero(t, unfreezes)
}

func TestControllerFactoryError(t *testing.T) {
	c := NewController(func() (Task, error) { return nil, errors.New("no client") }, &fakeSurface{})

	err := c.Run()
	assert.Error(t, err)
	assert.Equal(t, model.RunStateIdle, c.Snapshot().State)
}

func TestControllerSingleStepCycle(t *testing.T) {
	task := &fakeTask{id: "one", hasWork: true}
	surface := &fakeSurface{}
	c := NewController(singleTask(task), surface)
	done := completions(c)

	require.NoError(t, c.Run())
	st := c.Snapshot()
	assert.Equal(t, model.RunStateRunning, st.State)
	assert.Equal(t, "one", st.ActiveTaskID)
	assert.Equal(t, 1, st.Monitors)
	assert.Equal(t, "Resume", surface.last().Affordances().RunLabel)

	task.finish()
	completion := awaitCompletion(t, done)
	assert.Equal(t, "one", completion.TaskID)
	assert.False(t, completion.Abandoned)
	assert.NoError(t, completion.Err)

	st = c.Snapshot()
	assert.Equal(t, model.RunStateIdle, st.State)
	assert.Empty(t, st.ActiveTaskID)
	assert.Equal(t, 1, st.Resets)

	postures, freezes, unfreezes := surface.snapshot()
	assert.Equal(t, []model.Posture{model.PostureRunning, model.PostureIdle}, postures)
	assert.Equal(t, 1, freezes)
	assert.Equal(t, 1, unfreezes)
	aff := surface.last().Affordances()
	assert.Equal(t, "Run", aff.RunLabel)
	assert.True(t, aff.RunEnabled)
	assert.False(t, aff.PauseEnabled)
	assert.False(t, aff.StopEnabled)
}

func TestControllerPauseResumeKeepsMonitor(t *testing.T) {
	task := &fakeTask{id: "pr", hasWork: true}
	surface := &fakeSurface{}
	c := NewController(singleTask(task), surface)
	done := completions(c)

	require.NoError(t, c.Run())
	c.Pause()
	assert.Equal(t, model.RunStatePaused, c.Snapshot().State)
	aff := surface.last().Affordances()
	assert.True(t, aff.RunEnabled)
	assert.False(t, aff.PauseEnabled)
	assert.False(t, aff.StopEnabled)

	require.NoError(t, c.Run())
	st := c.Snapshot()
	assert.Equal(t, model.RunStateRunning, st.State)
	assert.Equal(t, 1, st.Monitors)
	assert.Equal(t, 2, task.runs)
	assert.Equal(t, 1, task.pauses)

	task.finish()
	awaitCompletion(t, done)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, c.Snapshot().Resets)
	assert.Empty(t, done)
}

func TestControllerIdleCommandsAreNoops(t *testing.T) {
	task := &fakeTask{id: "idle", hasWork: true}
	surface := &fakeSurface{}
	c := NewController(singleTask(task), surface)

	c.Pause()
	c.Stop()

	assert.Zero(t, task.pauses)
	assert.Zero(t, task.stops)
	postures, _, _ := surface.snapshot()
	assert.Empty(t, postures)
}

func TestControllerStopCooperative(t *testing.T) {
	task := &fakeTask{id: "coop", hasWork: true, cooperative: true}
	c := NewController(singleTask(task), &fakeSurface{})
	done := completions(c)

	require.NoError(t, c.Run())
	c.Stop()

	completion := awaitCompletion(t, done)
	assert.ErrorIs(t, completion.Err, ErrTaskStopped)
	assert.False(t, completion.Abandoned)
	assert.Equal(t, model.RunStateIdle, c.Snapshot().State)
}

func TestControllerStopDoesNotClearActiveImmediately(t *testing.T) {
	task := &fakeTask{id: "slow", hasWork: true}
	c := NewController(singleTask(task), &fakeSurface{}, WithStopGrace(0))

	require.NoError(t, c.Run())
	c.Stop()

	st := c.Snapshot()
	assert.Equal(t, model.RunStateRunning, st.State)
	assert.Equal(t, "slow", st.ActiveTaskID)
	assert.Equal(t, 1, task.stops)
}

func TestControllerStopGraceAbandonsWorker(t *testing.T) {
	task := &fakeTask{id: "stuck", hasWork: true}
	surface := &fakeSurface{}
	c := NewController(singleTask(task), surface, WithStopGrace(20*time.Millisecond))
	done := completions(c)

	require.NoError(t, c.Run())
	c.Stop()

	completion := awaitCompletion(t, done)
	assert.True(t, completion.Abandoned)
	assert.Equal(t, model.RunStateIdle, c.Snapshot().State)

	task.finish()
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, done)
	assert.Equal(t, 1, c.Snapshot().Resets)
	_, _, unfreezes := surface.snapshot()
	assert.Equal(t, 1, unfreezes)
}

func TestControllerNewTaskPerCycle(t *testing.T) {
	var tasks []*fakeTask
	factory := func() (Task, error) {
		task := &fakeTask{id: "t" + strconv.Itoa(len(tasks)), hasWork: true}
		tasks = append(tasks, task)
		return task, nil
	}
	c := NewController(factory, &fakeSurface{})
	done := completions(c)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Run())
		tasks[i].finish()
		awaitCompletion(t, done)
	}

	st := c.Snapshot()
	assert.Equal(t, 3, st.Monitors)
	assert.Equal(t, 3, st.Resets)
	assert.Len(t, tasks, 3)
}

func TestControllerShutdown(t *testing.T) {
	task := &fakeTask{id: "sd", hasWork: true, cooperative: true}
	c := NewController(singleTask(task), &fakeSurface{})

	require.NoError(t, c.Shutdown(context.Background()))
	require.NoError(t, c.Run())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))
	assert.Equal(t, 1, task.stops)
}

func TestControllerShutdownWaitsForHooks(t *testing.T) {
	task := &fakeTask{id: "hooks", hasWork: true, cooperative: true}
	c := NewController(singleTask(task), &fakeSurface{})

	var got []Completion
	c.OnComplete(func(done Completion) {
		time.Sleep(30 * time.Millisecond)
		got = append(got, done)
	})
	require.NoError(t, c.Run())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))

	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].Err, ErrTaskStopped)
	assert.Equal(t, model.RunStateIdle, c.Snapshot().State)
}

func TestControllerShutdownWaitsForAbandonedReset(t *testing.T) {
	task := &fakeTask{id: "stuck", hasWork: true}
	c := NewController(singleTask(task), &fakeSurface{}, WithStopGrace(20*time.Millisecond))

	var got []Completion
	c.OnComplete(func(done Completion) { got = append(got, done) })
	require.NoError(t, c.Run())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))

	require.Len(t, got, 1)
	assert.True(t, got[0].Abandoned)
	assert.Equal(t, 1, c.Snapshot().Resets)
}

func TestControllerShutdownHonorsContext(t *testing.T) {
	task := &fakeTask{id: "stuck", hasWork: true}
	c := NewController(singleTask(task), &fakeSurface{}, WithStopGrace(0))
	require.NoError(t, c.Run())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Shutdown(ctx), context.DeadlineExceeded)
	assert.True(t, task.finish())
}

func TestControllerActiveIffNotIdle(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var (
		mu    sync.Mutex
		tasks []*fakeTask
	)
	factory := func() (Task, error) {
		mu.Lock()
		defer mu.Unlock()
		task := &fakeTask{
			id:          "r" + strconv.Itoa(len(tasks)),
			hasWork:     rng.Intn(4) != 0,
			cooperative: rng.Intn(2) == 0,
		}
		tasks = append(tasks, task)
		return task, nil
	}
	c := NewController(factory, &fakeSurface{}, WithStopGrace(time.Millisecond))

	for i := 0; i < 300; i++ {
		switch rng.Intn(4) {
		case 0:
			require.NoError(t, c.Run())
		case 1:
			c.Pause()
		case 2:
			c.Stop()
		case 3:
			mu.Lock()
			if n := len(tasks); n > 0 {
				tasks[n-1].finish()
			}
			mu.Unlock()
		}
		if rng.Intn(10) == 0 {
			time.Sleep(2 * time.Millisecond)
		}

		st := c.Snapshot()
		assert.Equal(t, st.ActiveTaskID != "", st.State != model.RunStateIdle, "step %d: %+v", i, st)
		assert.Equal(t, st.CycleID != "", st.State != model.RunStateIdle, "step %d: %+v", i, st)
		assert.LessOrEqual(t, st.Resets, st.Monitors)
	}
}
