package feed

import "time"

// Item is a single notification as rendered by views.
type Item struct {
	ID         string    `json:"id"`
	Type       string    `json:"notification_type"`
	Priority   string    `json:"priority"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
	ActionURL  string    `json:"action_url,omitempty"`
	ActionText string    `json:"action_text,omitempty"`
}

// Filter selects the subset of the collection a view renders. Zero value
// matches everything.
type Filter struct {
	// IsRead, when non-nil, restricts to items with that read state.
	IsRead *bool
	// Type, when non-empty, restricts to one notification type.
	Type string
}

// Match reports whether the item passes the filter predicate.
func (f Filter) Match(it Item) bool {
	if f.IsRead != nil && it.IsRead != *f.IsRead {
		return false
	}
	if f.Type != "" && it.Type != f.Type {
		return false
	}
	return true
}

// EventKind distinguishes real-time change deliveries.
type EventKind uint8

const (
	EventInsert EventKind = iota
	EventUpdate
)

// Event is one inbound real-time change. Insert and update are both applied
// as upsert-by-id, so the distinction is informational.
type Event struct {
	Kind EventKind
	Item Item
}
