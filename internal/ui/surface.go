package ui

import (
	"sync"

	"github.com/lazyvibe/tgauto/internal/model"
)

// Surface records the controller's posture for the event loop. Its methods
// never block, so the controller may call them while holding its lock.
type Surface struct {
	mu      sync.Mutex
	posture model.Posture
	frozen  bool
	changes chan struct{}
}

// NewSurface creates an idle, unfrozen surface.
func NewSurface() *Surface {
	return &Surface{
		posture: model.PostureIdle,
		changes: make(chan struct{}, 1),
	}
}

// SetPosture implements runtime.Surface.
func (s *Surface) SetPosture(p model.Posture) {
	s.mu.Lock()
	s.posture = p
	s.mu.Unlock()
	s.signal()
}

// Freeze implements runtime.Surface.
func (s *Surface) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
	s.signal()
}

// Unfreeze implements runtime.Surface.
func (s *Surface) Unfreeze() {
	s.mu.Lock()
	s.frozen = false
	s.mu.Unlock()
	s.signal()
}

// Snapshot returns the current posture and whether settings are frozen.
func (s *Surface) Snapshot() (model.Posture, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posture, s.frozen
}

// Changes signals after any surface update. Signals coalesce.
func (s *Surface) Changes() <-chan struct{} {
	return s.changes
}

func (s *Surface) signal() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Settings holds the task parameters chosen in the UI. The task factory
// reads them from another goroutine.
type Settings struct {
	mu       sync.RWMutex
	country  string
	accounts int
}

// NewSettings creates settings with initial values.
func NewSettings(country string, accounts int) *Settings {
	return &Settings{country: country, accounts: accounts}
}

// Snapshot returns the selected country and account count.
func (s *Settings) Snapshot() (string, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.country, s.accounts
}

func (s *Settings) set(country string, accounts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.country = country
	s.accounts = accounts
}
