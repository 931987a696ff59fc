package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var errStoreDown = errors.New("store unavailable")

// fakeStore serves pages from a fixed slice and records calls. Any of the
// fail* flags makes the matching mutation return errStoreDown.
type fakeStore struct {
	items []Item

	failMarkRead    bool
	failMarkAllRead bool
	failDelete      bool

	listCalls     int
	markReadCalls int
	deleteCalls   int
}

func (s *fakeStore) List(_ context.Context, _ string, filter Filter, offset, limit int) (Page, error) {
	s.listCalls++
	matched := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if filter.Match(it) {
			matched = append(matched, it)
		}
	}
	if offset >= len(matched) {
		return Page{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return Page{Items: matched[offset:end], HasMore: end < len(matched)}, nil
}

func (s *fakeStore) MarkRead(_ context.Context, _ string, id string) error {
	s.markReadCalls++
	if s.failMarkRead {
		return errStoreDown
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsRead = true
		}
	}
	return nil
}

func (s *fakeStore) MarkAllRead(context.Context, string) error {
	if s.failMarkAllRead {
		return errStoreDown
	}
	for i := range s.items {
		s.items[i].IsRead = true
	}
	return nil
}

func (s *fakeStore) Delete(_ context.Context, _ string, id string) error {
	s.deleteCalls++
	if s.failDelete {
		return errStoreDown
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func testItems(n int) []Item {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, Item{
			ID:        fmt.Sprintf("n-%02d", i),
			Type:      "budget_alert",
			Priority:  "normal",
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return items
}

func TestLoadFirstPage(t *testing.T) {
	store := &fakeStore{items: testItems(5)}
	c := NewController(store, "u1", 3)

	if err := c.Load(context.Background(), Filter{}); err != nil {
		t.Fatal(err)
	}

	items := c.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if !c.HasMore() {
		t.Fatal("expected more pages")
	}
	if items[0].ID != "n-00" {
		t.Fatalf("expected newest first, got %s", items[0].ID)
	}
}

func TestLoadMoreAppendsWithoutDuplicates(t *testing.T) {
	store := &fakeStore{items: testItems(5)}
	c := NewController(store, "u1", 3)

	if err := c.Load(context.Background(), Filter{}); err != nil {
		t.Fatal(err)
	}
	if err := c.LoadMore(context.Background()); err != nil {
		t.Fatal(err)
	}

	items := c.Items()
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	if c.HasMore() {
		t.Fatal("expected no more pages")
	}

	seen := map[string]bool{}
	for _, it := range items {
		if seen[it.ID] {
			t.Fatalf("duplicate item %s", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestLoadMergesWithRealtimeItems(t *testing.T) {
	store := &fakeStore{items: testItems(3)}
	c := NewController(store, "u1", 10)

	// A real-time event for an item the page fetch will also return.
	early := store.items[1]
	early.IsRead = true
	c.ApplyEvent(Event{Kind: EventInsert, Item: early})

	if err := c.Load(context.Background(), Filter{}); err != nil {
		t.Fatal(err)
	}

	if got := len(c.Items()); got != 3 {
		t.Fatalf("expected 3 items after merge, got %d", got)
	}
}

func TestMarkAsReadOptimistic(t *testing.T) {
	store := &fakeStore{items: testItems(2)}
	c := NewController(store, "u1", 10)
	if err := c.Load(context.Background(), Filter{}); err != nil {
		t.Fatal(err)
	}

	if err := c.MarkAsRead(context.Background(), "n-00"); err != nil {
		t.Fatal(err)
	}
	if c.UnreadCount() != 1 {
		t.Fatalf("expected 1 unread, got %d", c.UnreadCount())
	}

	// Already-read is a no-op that skips the remote call.
	calls := store.markReadCalls
	if err := c.MarkAsRead(context.Background(), "n-00"); err != nil {
		t.Fatal(err)
	}
	if store.markReadCalls != calls {
		t.Fatal("expected no remote call for already-read item")
	}
}

func TestMarkAsReadRollsBackOnFailure(t *testing.T) {
	store := &fakeStore{items: testItems(2), failMarkRead: true}
	c := NewController(store, "u1", 10)
	if err := c.Load(context.Background(), Filter{}); err != nil {
		t.Fatal(err)
	}

	if err := c.MarkAsRead(context.Background(), "n-00"); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}

	for _, it := range c.Items() {
		if it.ID == "n-00" && it.IsRead {
			t.Fatal("expected optimistic flip rolled back")
		}
	}
	if c.UnreadCount() != 2 {
		t.Fatalf("expected 2 unread after rollback, got %d", c.UnreadCount())
	}
}

func TestMarkAsReadUnknownID(t *testing.T) {
	c := NewController(&fakeStore{}, "u1", 10)
	if err := c.MarkAsRead(context.Background(), "missing"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestMarkAllAsReadRollsBackOnlyFlippedItems(t *testing.T) {
	items := testItems(3)
	items[1].IsRead = true
	store := &fakeStore{items: items, failMarkAllRead: true}
	c := NewController(store, "u1", 10)
	if err := c.Load(context.Background(), Filter{}); err != nil {
		t.Fatal(err)
	}

	if err := c.MarkAllAsRead(context.Background()); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}

	for _, it := range c.Items() {
		wantRead := it.ID == "n-01"
		if it.IsRead != wantRead {
			t.Fatalf("item %s read=%v after rollback", it.ID, it.IsRead)
		}
	}
}

func TestDeleteRollsBackOnFailure(t *testing.T) {
	store := &fakeStore{items: testItems(3), failDelete: true}
	c := NewController(store, "u1", 10)
	if err := c.Load(context.Background(), Filter{}); err != nil {
		t.Fatal(err)
	}

	if err := c.Delete(context.Background(), "n-01"); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}

	items := c.Items()
	if len(items) != 3 {
		t.Fatalf("expected re-inserted item, got %d items", len(items))
	}
	// Re-insertion lands back at the sorted position.
	if items[1].ID != "n-01" {
		t.Fatalf("expected n-01 at index 1, got %s", items[1].ID)
	}
}

func TestDeleteRemovesItem(t *testing.T) {
	store := &fakeStore{items: testItems(2)}
	c := NewController(store, "u1", 10)
	if err := c.Load(context.Background(), Filter{}); err != nil {
		t.Fatal(err)
	}

	if err := c.Delete(context.Background(), "n-00"); err != nil {
		t.Fatal(err)
	}
	if got := len(c.Items()); got != 1 {
		t.Fatalf("expected 1 item, got %d", got)
	}
}

func TestApplyEventUpsertIsIdempotent(t *testing.T) {
	c := NewController(&fakeStore{}, "u1", 10)
	it := Item{ID: "n-00", Type: "budget_alert", CreatedAt: time.Now()}

	c.ApplyEvent(Event{Kind: EventInsert, Item: it})
	c.ApplyEvent(Event{Kind: EventInsert, Item: it})

	if got := len(c.Items()); got != 1 {
		t.Fatalf("expected 1 item after duplicate insert, got %d", got)
	}
}

func TestApplyEventUpdateForUnknownIDInserts(t *testing.T) {
	c := NewController(&fakeStore{}, "u1", 10)
	it := Item{ID: "n-00", IsRead: true, CreatedAt: time.Now()}

	c.ApplyEvent(Event{Kind: EventUpdate, Item: it})

	if got := len(c.Items()); got != 1 {
		t.Fatalf("expected update for unknown id to insert, got %d items", got)
	}
}

func TestUnreadCountIgnoresFilter(t *testing.T) {
	read := true
	items := testItems(4)
	items[0].IsRead = true
	store := &fakeStore{items: items}
	c := NewController(store, "u1", 10)

	// Load everything, then narrow the render filter to read items only.
	if err := c.Load(context.Background(), Filter{}); err != nil {
		t.Fatal(err)
	}
	if err := c.Load(context.Background(), Filter{IsRead: &read}); err != nil {
		t.Fatal(err)
	}

	if got := len(c.Items()); got != 1 {
		t.Fatalf("expected 1 rendered item, got %d", got)
	}
	// The count is derived from the full collection, not the rendered view.
	if got := c.UnreadCount(); got != 3 {
		t.Fatalf("expected 3 unread, got %d", got)
	}
}

// fakeSubscription feeds a fixed set of events then closes.
type fakeSubscription struct {
	events chan Event
	closed chan struct{}
}

func (s *fakeSubscription) Events() <-chan Event { return s.events }

func (s *fakeSubscription) Close() error {
	close(s.closed)
	return nil
}

func TestRunConsumesUntilChannelCloses(t *testing.T) {
	c := NewController(&fakeStore{}, "u1", 10)
	sub := &fakeSubscription{
		events: make(chan Event, 2),
		closed: make(chan struct{}),
	}
	sub.events <- Event{Kind: EventInsert, Item: Item{ID: "n-00", CreatedAt: time.Now()}}
	sub.events <- Event{Kind: EventInsert, Item: Item{ID: "n-01", CreatedAt: time.Now()}}
	close(sub.events)

	done := make(chan struct{})
	go func() {
		c.Run(context.Background(), sub)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after channel close")
	}

	select {
	case <-sub.closed:
	default:
		t.Fatal("Run must close the subscription")
	}
	if got := len(c.Items()); got != 2 {
		t.Fatalf("expected 2 items from events, got %d", got)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	c := NewController(&fakeStore{}, "u1", 10)
	sub := &fakeSubscription{
		events: make(chan Event),
		closed: make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, sub)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return on cancel")
	}
}
