// Package runtime drives automation tasks under operator control.
package runtime

import "sync"

// Worker is a joinable handle to a task's background execution.
type Worker struct {
	id   string
	done chan struct{}
	once sync.Once
	mu   sync.RWMutex
	err  error
}

// NewWorker creates an unfinished worker handle.
func NewWorker(id string) *Worker {
	return &Worker{
		id:   id,
		done: make(chan struct{}),
	}
}

// ID returns the identifier of the task the worker executes.
func (w *Worker) ID() string {
	return w.id
}

// Done is closed once the worker has finished.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Finish marks the worker finished. Only the first call has an effect.
func (w *Worker) Finish(err error) {
	w.once.Do(func() {
		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
		close(w.done)
	})
}

// Wait blocks until the worker finishes and returns its exit error.
func (w *Worker) Wait() error {
	<-w.done
	return w.Err()
}

// Err returns the exit error, nil while running.
func (w *Worker) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.err
}
