package delivery

import (
	"context"
	"sync"
	"time"
)

// Status classifies a tracked send.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusNormal
	StatusDelayed
)

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusDelayed:
		return "delayed"
	default:
		return "unknown"
	}
}

// Record is the tracked state for one recipient.
type Record struct {
	Recipient     string
	SentAt        time.Time
	LastCheckedAt time.Time
	Status        Status
	Confirmed     bool
}

// Monitor tracks sends keyed by recipient email. Safe for concurrent use.
type Monitor struct {
	threshold    time.Duration
	pollInterval time.Duration
	now          func() time.Time

	mu      sync.Mutex
	records map[string]*Record
	polls   map[string]context.CancelFunc
}

// New creates a Monitor. threshold is how long an unconfirmed send may sit
// before it classifies as delayed; pollInterval is the re-check cadence used
// by StartPolling.
func New(threshold, pollInterval time.Duration) *Monitor {
	return &Monitor{
		threshold:    threshold,
		pollInterval: pollInterval,
		now:          time.Now,
		records:      make(map[string]*Record),
		polls:        make(map[string]context.CancelFunc),
	}
}

// SetClock replaces the time source. Exposed for tests.
func (m *Monitor) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// RecordSend inserts or overwrites the record for recipient with a fresh
// send timestamp. A resend resets the delay clock.
func (m *Monitor) RecordSend(recipient string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[recipient] = &Record{
		Recipient: recipient,
		SentAt:    m.now(),
		Status:    StatusNormal,
	}
}

// ConfirmDelivered marks the recipient's send as confirmed; a confirmed send
// never classifies as delayed.
func (m *Monitor) ConfirmDelivered(recipient string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[recipient]; ok {
		rec.Confirmed = true
		rec.Status = StatusNormal
	}
}

// Status returns the current classification without re-evaluating the
// heuristic. Unknown recipients report StatusUnknown.
func (m *Monitor) Status(recipient string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[recipient]
	if !ok {
		return StatusUnknown
	}
	return rec.Status
}

// IsDelayed re-evaluates the heuristic for recipient and returns the result.
// A send is delayed when the threshold has elapsed with no confirmation.
func (m *Monitor) IsDelayed(recipient string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[recipient]
	if !ok {
		return false
	}

	now := m.now()
	rec.LastCheckedAt = now

	if !rec.Confirmed && now.Sub(rec.SentAt) > m.threshold {
		rec.Status = StatusDelayed
		return true
	}
	rec.Status = StatusNormal
	return false
}

// Record returns a copy of the recipient's record, if tracked.
func (m *Monitor) Record(recipient string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[recipient]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Evict drops the recipient's record and stops any poller attached to it.
// Called when the verification flow for that recipient ends.
func (m *Monitor) Evict(recipient string) {
	m.mu.Lock()
	cancel := m.polls[recipient]
	delete(m.polls, recipient)
	delete(m.records, recipient)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// StartPolling re-evaluates IsDelayed for recipient on the poll interval and
// feeds each result to onUpdate, until ctx is cancelled, StopPolling or Evict
// is called, or the Monitor is closed. One poller per recipient; starting a
// second replaces the first.
func (m *Monitor) StartPolling(ctx context.Context, recipient string, onUpdate func(delayed bool)) {
	ctx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	if prev := m.polls[recipient]; prev != nil {
		prev()
	}
	m.polls[recipient] = cancel
	interval := m.pollInterval
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				onUpdate(m.IsDelayed(recipient))
			case <-ctx.Done():
				return
			}
		}
	}()
}

// StopPolling cancels the recipient's poller, keeping the record.
func (m *Monitor) StopPolling(recipient string) {
	m.mu.Lock()
	cancel := m.polls[recipient]
	delete(m.polls, recipient)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Close stops all pollers and drops all records.
func (m *Monitor) Close() {
	m.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(m.polls))
	for _, c := range m.polls {
		cancels = append(cancels, c)
	}
	m.polls = make(map[string]context.CancelFunc)
	m.records = make(map[string]*Record)
	m.mu.Unlock()

	for _, c := range cancels {
		c()
	}
}
