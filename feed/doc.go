// Package feed maintains the paginated, filterable, real-time-updated
// notification collection exposed to views.
//
// # Consistency model
//
// The Controller owns the in-memory collection; all mutation goes through
// its operations. Read/delete mutations are optimistic: the local change
// applies before the remote confirmation, and a failed confirmation restores
// the exact prior snapshot of the affected item only. Real-time events are
// upserted by id and the collection re-sorted by CreatedAt descending, so
// duplicate deliveries are idempotent. The unread count is always derived
// from the collection, never stored.
//
// # What this package must NOT do
//
//   - Talk to Redis directly (the store and subscription are injected
//     behind the Store and Subscription interfaces).
//   - Expose the collection for external mutation; Items returns copies.
package feed
