package cooldown

import (
	"sync"
	"time"
)

// State is a point-in-time snapshot of a countdown.
type State struct {
	RemainingSeconds int
	Active           bool
}

// Timer counts a fixed number of seconds down to zero. Safe for concurrent
// use. The zero value is not usable; construct with New.
type Timer struct {
	interval time.Duration
	onDone   func()

	mu        sync.Mutex
	remaining int
	active    bool
	cancel    chan struct{}
}

// New creates a stopped Timer. interval is the tick period (one second in
// production; tests shorten it). onDone, when non-nil, fires once each time a
// countdown reaches zero on its own.
func New(interval time.Duration, onDone func()) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{
		interval: interval,
		onDone:   onDone,
	}
}

// Start begins a countdown of the given number of seconds, replacing any
// countdown already in progress. Starting with seconds <= 0 just stops.
func (t *Timer) Start(seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	if seconds <= 0 {
		t.remaining = 0
		return
	}

	t.remaining = seconds
	t.active = true
	t.cancel = make(chan struct{})
	go t.run(t.cancel)
}

func (t *Timer) run(cancel chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if done := t.tick(cancel); done {
				return
			}
		case <-cancel:
			return
		}
	}
}

// tick applies one decrement. Returns true when this run is finished, either
// because the countdown hit zero or because it was replaced.
func (t *Timer) tick(cancel chan struct{}) bool {
	t.mu.Lock()
	if t.cancel != cancel {
		// Replaced by a newer Start while this tick was pending.
		t.mu.Unlock()
		return true
	}

	t.remaining--
	if t.remaining > 0 {
		t.mu.Unlock()
		return false
	}

	t.remaining = 0
	t.active = false
	t.cancel = nil
	onDone := t.onDone
	t.mu.Unlock()

	if onDone != nil {
		onDone()
	}
	return true
}

// Stop cancels the current countdown without firing onDone. Idempotent.
// Owners must call Stop on teardown so no tick outlives them.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.cancel != nil {
		close(t.cancel)
		t.cancel = nil
	}
	t.active = false
}

// Active reports whether a countdown is in progress; this is the blocking
// predicate owners consult before issuing the guarded action.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Remaining returns the seconds left in the current countdown.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Snapshot returns the current State.
func (t *Timer) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		RemainingSeconds: t.remaining,
		Active:           t.active,
	}
}
