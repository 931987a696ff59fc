package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/pennywise-app/authflow/feed"
	"github.com/pennywise-app/authflow/internal/stores"
)

// Subscriber streams one user's notification change envelopes as feed events.
type Subscriber struct {
	pubsub    *redis.PubSub
	events    chan feed.Event
	done      chan struct{}
	closeOnce sync.Once
}

// Subscribe opens the user's change channel and confirms the subscription
// before returning.
func Subscribe(ctx context.Context, client redis.UniversalClient, prefix, userID string, buffer int) (*Subscriber, error) {
	if buffer <= 0 {
		buffer = 16
	}

	pubsub := client.Subscribe(ctx, stores.ChannelKey(prefix, userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("notification subscription failed: %w", err)
	}

	s := &Subscriber{
		pubsub: pubsub,
		events: make(chan feed.Event, buffer),
		done:   make(chan struct{}),
	}
	go s.loop(pubsub.Channel())
	return s, nil
}

func (s *Subscriber) loop(messages <-chan *redis.Message) {
	defer close(s.events)
	for msg := range messages {
		ev, err := stores.DecodeEvent([]byte(msg.Payload))
		if err != nil {
			// Foreign payload on the channel; skip rather than poison the feed.
			continue
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

// Events implements feed.Subscription. The channel closes after Close.
func (s *Subscriber) Events() <-chan feed.Event {
	return s.events
}

// Close implements feed.Subscription. Idempotent.
func (s *Subscriber) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
