package editor

import (
	"sync"
	"time"
)

// DefaultAutosaveIdle is how long the document must sit untouched before an
// armed autosave fires.
const DefaultAutosaveIdle = 30 * time.Second

// AutosaveScheduler is a cancellable debounce timer owned by one editor
// session. Arm resets the countdown on every dirty mutation (last-edit-wins,
// not a queue); Stop cancels a pending fire but never aborts a save already
// in flight.
type AutosaveScheduler struct {
	mu      sync.Mutex
	idle    time.Duration
	fire    func()
	timer   *time.Timer
	stopped bool
}

func NewAutosaveScheduler(idle time.Duration, fire func()) *AutosaveScheduler {
	if idle <= 0 {
		idle = DefaultAutosaveIdle
	}
	return &AutosaveScheduler{idle: idle, fire: fire}
}

// Arm starts the idle countdown, or resets it if already running.
func (a *AutosaveScheduler) Arm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped || a.fire == nil {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.idle, a.fire)
}

// Stop cancels any pending fire. Subsequent Arm calls are ignored, so a
// session being torn down cannot re-arm itself from a racing mutation.
func (a *AutosaveScheduler) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
