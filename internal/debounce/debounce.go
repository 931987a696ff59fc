package debounce

import (
	"context"
	"sync"
	"time"
)

// Result is the observable state of one validated field. It is superseded
// wholesale by each newer emission, never merged.
type Result struct {
	Input       string
	FormatValid bool
	Checking    bool
	Checked     bool
	RemoteFlag  bool
	Err         error
}

// FormatFunc is the synchronous local predicate (e.g. email syntax).
type FormatFunc func(input string) bool

// RemoteFunc is the asynchronous remote predicate (e.g. existence lookup).
type RemoteFunc func(ctx context.Context, input string) (bool, error)

// Debouncer coalesces rapid Schedule calls into at most one remote check for
// the stabilized input. Safe for concurrent use.
type Debouncer struct {
	delay  time.Duration
	format FormatFunc
	remote RemoteFunc
	emit   func(Result)

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	result Result
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Debouncer. emit is invoked under the Debouncer's lock with
// every state transition and must not call back into the Debouncer; pass nil
// when polling Result is enough.
func New(delay time.Duration, format FormatFunc, remote RemoteFunc, emit func(Result)) *Debouncer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		delay:  delay,
		format: format,
		remote: remote,
		emit:   emit,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule records a new input value. It immediately publishes a
// format-checked "checking" result, restarts the delay timer, and arranges
// for the remote check to run only if no newer input arrives first.
// An empty input resets the field to its initial state without any check.
func (d *Debouncer) Schedule(input string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if input == "" {
		d.publish(Result{})
		return
	}

	d.publish(Result{
		Input:       input,
		FormatValid: d.format(input),
		Checking:    true,
	})

	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen, input)
	})
}

// fire runs on the timer goroutine after the delay elapses.
func (d *Debouncer) fire(gen uint64, input string) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}

	if !d.format(input) {
		d.publish(Result{
			Input:   input,
			Checked: true,
		})
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	flag, err := d.remote(d.ctx, input)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.gen {
		// A newer input superseded this check while it was in flight.
		return
	}

	if err != nil {
		// Unknown, never "available": the caller surfaces Err distinctly.
		d.publish(Result{
			Input:       input,
			FormatValid: true,
			Err:         err,
		})
		return
	}

	d.publish(Result{
		Input:       input,
		FormatValid: true,
		Checked:     true,
		RemoteFlag:  flag,
	})
}

func (d *Debouncer) publish(r Result) {
	d.result = r
	if d.emit != nil {
		d.emit(r)
	}
}

// Result returns the latest published state.
func (d *Debouncer) Result() Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result
}

// Generation returns the current call generation. Exposed for tests.
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Close cancels any pending timer and marks all in-flight checks stale.
// Schedule calls after Close are no-ops.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.cancel()
}
