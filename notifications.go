package authflow

import (
	"github.com/redis/go-redis/v9"

	"github.com/pennywise-app/authflow/internal/stores"
)

// NotificationStore is the Redis-backed [feed.Store] the orchestrator wires
// into [Orchestrator.Feed]. Exposed so backends and tests can insert
// notifications through the same key layout the controllers read.
type NotificationStore = stores.NotificationStore

// NewNotificationStore creates a store under the given key namespace
// (defaults to "nf" when empty).
func NewNotificationStore(client redis.UniversalClient, prefix string) *NotificationStore {
	return stores.NewNotificationStore(client, prefix)
}
