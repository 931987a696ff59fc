package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

// captureSink records every emitted event.
type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSink) Emit(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *captureSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// blockingSink holds every emit until released.
type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Emit(context.Context, Event) {
	<-s.release
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, &captureSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	// Every operation is nil-safe.
	d.Emit(context.Background(), Event{EventType: "x"})
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
	d.Close()
}

func TestEmitReachesSink(t *testing.T) {
	sink := &captureSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)
	defer d.Close()

	d.Emit(context.Background(), Event{EventType: "sign_in", Success: true})

	deadline := time.Now().Add(2 * time.Second)
	for sink.len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("event never reached the sink")
		}
		time.Sleep(2 * time.Millisecond)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.events[0].EventType != "sign_in" || !sink.events[0].Success {
		t.Fatalf("unexpected event %+v", sink.events[0])
	}
}

func TestCloseDrainsQueuedEvents(t *testing.T) {
	sink := &captureSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "sign_in"})
	}
	d.Close()

	if got := sink.len(); got != 10 {
		t.Fatalf("expected all 10 events drained, got %d", got)
	}
	// Emit after Close is silently ignored.
	d.Emit(context.Background(), Event{EventType: "late"})
	if got := sink.len(); got != 10 {
		t.Fatalf("expected late event discarded, got %d", got)
	}
}

func TestDropModeCountsInsteadOfBlocking(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// One event is taken by the worker (blocked in the sink), one fills the
	// buffer, the rest must drop without blocking this goroutine.
	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "sign_in"})
	}

	deadline := time.Now().Add(2 * time.Second)
	for d.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected drops with a full buffer")
		}
		d.Emit(context.Background(), Event{EventType: "sign_in"})
		time.Sleep(time.Millisecond)
	}

	close(sink.release)
	d.Close()
}

func TestBlockingModeRespectsContext(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: false}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	d.Emit(ctx, Event{EventType: "a"})
	d.Emit(ctx, Event{EventType: "b"})

	done := make(chan struct{})
	go func() {
		d.Emit(ctx, Event{EventType: "c"})
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit did not honor context cancellation")
	}

	close(sink.release)
	d.Close()
}

func TestChannelSink(t *testing.T) {
	sink := NewChannelSink(4)
	sink.Emit(context.Background(), Event{EventType: "sign_out"})

	select {
	case ev := <-sink.Events():
		if ev.EventType != "sign_out" {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("expected buffered event")
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{
		EventType: "sign_in",
		Flow:      "sign_in",
		Email:     "a@b.com",
		Success:   false,
		ErrorKind: "invalid_credentials",
	})

	line := strings.TrimSpace(buf.String())
	var decoded Event
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("output is not one JSON object per line: %v", err)
	}
	if decoded.Email != "a@b.com" || decoded.ErrorKind != "invalid_credentials" {
		t.Fatalf("unexpected decoded event %+v", decoded)
	}
}
