package feed

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	// ErrItemNotFound is returned by mutations targeting an id that is not
	// in the local collection.
	ErrItemNotFound = errors.New("notification item not found")
)

// Controller is the single mutation surface over one user's notification
// collection. Safe for concurrent use; views read snapshots via Items.
type Controller struct {
	store    Store
	userID   string
	pageSize int

	mu         sync.Mutex
	items      []Item // every known item, CreatedAt descending
	filter     Filter
	hasMore    bool
	nextOffset int
}

// NewController creates a Controller for userID. pageSize bounds each fetch.
func NewController(store Store, userID string, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Controller{
		store:    store,
		userID:   userID,
		pageSize: pageSize,
	}
}

// Load fetches the first page for the given filter, resetting pagination.
// Fetched items merge into the collection by id, so an item already known
// from a real-time event is never duplicated.
func (c *Controller) Load(ctx context.Context, filter Filter) error {
	page, err := c.store.List(ctx, c.userID, filter, 0, c.pageSize)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = filter
	c.nextOffset = len(page.Items)
	c.hasMore = page.HasMore
	for _, it := range page.Items {
		c.upsertLocked(it)
	}
	c.sortLocked()
	return nil
}

// LoadMore appends the next page under the current filter.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	filter := c.filter
	offset := c.nextOffset
	c.mu.Unlock()

	page, err := c.store.List(ctx, c.userID, filter, offset, c.pageSize)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextOffset = offset + len(page.Items)
	c.hasMore = page.HasMore
	for _, it := range page.Items {
		c.upsertLocked(it)
	}
	c.sortLocked()
	return nil
}

// MarkAsRead optimistically flips the item to read, then confirms remotely.
// A failed confirmation restores the exact prior value of that item only.
func (c *Controller) MarkAsRead(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	if c.items[idx].IsRead {
		c.mu.Unlock()
		return nil
	}
	prior := c.items[idx]
	c.items[idx].IsRead = true
	c.mu.Unlock()

	if err := c.store.MarkRead(ctx, c.userID, id); err != nil {
		c.restore(prior)
		return err
	}
	return nil
}

// MarkAllAsRead optimistically flips every unread item, rolling back exactly
// the items it flipped if the remote call fails.
func (c *Controller) MarkAllAsRead(ctx context.Context) error {
	c.mu.Lock()
	var flipped []Item
	for i := range c.items {
		if !c.items[i].IsRead {
			flipped = append(flipped, c.items[i])
			c.items[i].IsRead = true
		}
	}
	c.mu.Unlock()

	if len(flipped) == 0 {
		return nil
	}

	if err := c.store.MarkAllRead(ctx, c.userID); err != nil {
		for _, prior := range flipped {
			c.restore(prior)
		}
		return err
	}
	return nil
}

// Delete optimistically removes the item; a failed confirmation re-inserts
// it at its sorted position.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	prior := c.items[idx]
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	c.mu.Unlock()

	if err := c.store.Delete(ctx, c.userID, id); err != nil {
		c.mu.Lock()
		c.upsertLocked(prior)
		c.sortLocked()
		c.mu.Unlock()
		return err
	}
	return nil
}

// ApplyEvent upserts an inbound real-time change by id. Items outside the
// current filter are still stored so the unread count stays correct; the
// filter applies at render time in Items.
func (c *Controller) ApplyEvent(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upsertLocked(ev.Item)
	c.sortLocked()
}

// Run consumes the subscription until ctx is cancelled or the event channel
// closes, then closes the subscription. Intended to run on its own goroutine.
func (c *Controller) Run(ctx context.Context, sub Subscription) {
	defer func() { _ = sub.Close() }()
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			c.ApplyEvent(ev)
		case <-ctx.Done():
			return
		}
	}
}

// Items returns a copy of the collection filtered by the current filter,
// newest first.
func (c *Controller) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if c.filter.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// UnreadCount is derived from the full collection on every call; it is never
// stored, so it cannot drift from the items themselves.
func (c *Controller) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		if !it.IsRead {
			n++
		}
	}
	return n
}

// HasMore reports whether another page exists under the current filter.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// restore puts the prior value of an item back, whether or not the optimistic
// copy is still present.
func (c *Controller) restore(prior Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upsertLocked(prior)
	c.sortLocked()
}

func (c *Controller) indexLocked(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) upsertLocked(it Item) {
	if idx := c.indexLocked(it.ID); idx >= 0 {
		c.items[idx] = it
		return
	}
	c.items = append(c.items, it)
}

func (c *Controller) sortLocked() {
	sort.SliceStable(c.items, func(i, j int) bool {
		if c.items[i].CreatedAt.Equal(c.items[j].CreatedAt) {
			return c.items[i].ID < c.items[j].ID
		}
		return c.items[i].CreatedAt.After(c.items[j].CreatedAt)
	})
}
