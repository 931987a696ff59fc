package feed

import "context"

// Page is one fetched slice of the remote collection, newest first.
type Page struct {
	Items   []Item
	HasMore bool
}

// Store is the remote notification collection the Controller synchronizes
// against. Implementations must return pages ordered by CreatedAt descending.
type Store interface {
	List(ctx context.Context, userID string, filter Filter, offset, limit int) (Page, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, id string) error
}

// Subscription is a live change feed for one user's notifications. Events
// ends when the subscription is closed.
type Subscription interface {
	Events() <-chan Event
	Close() error
}
