package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pennywise-app/authflow/feed"
)

var (
	ErrNotificationNotFound     = errors.New("notification not found")
	ErrNotificationsUnavailable = errors.New("notification backend unavailable")
)

const (
	fieldType       = "notification_type"
	fieldPriority   = "priority"
	fieldIsRead     = "is_read"
	fieldCreatedAt  = "created_at"
	fieldActionURL  = "action_url"
	fieldActionText = "action_text"
)

// NotificationStore implements feed.Store on Redis and publishes a change
// envelope on every mutation.
type NotificationStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewNotificationStore creates a store under the given key namespace.
func NewNotificationStore(redisClient redis.UniversalClient, prefix string) *NotificationStore {
	if prefix == "" {
		prefix = "nf"
	}
	return &NotificationStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *NotificationStore) indexKey(userID string) string {
	return s.prefix + "x:" + userID
}

func (s *NotificationStore) itemKey(userID, id string) string {
	return s.prefix + "i:" + userID + ":" + id
}

// ChannelKey is the pub/sub channel carrying change envelopes for one user.
func ChannelKey(prefix, userID string) string {
	if prefix == "" {
		prefix = "nf"
	}
	return prefix + "e:" + userID
}

// Insert writes a new notification and publishes an insert envelope. A blank
// id is assigned a UUID; a zero CreatedAt is stamped with the current time.
func (s *NotificationStore) Insert(ctx context.Context, userID string, item feed.Item) (feed.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, s.itemKey(userID, item.ID), itemFields(item))
	pipe.ZAdd(ctx, s.indexKey(userID), redis.Z{
		Score:  float64(item.CreatedAt.UnixMilli()),
		Member: item.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return feed.Item{}, fmt.Errorf("%w: %v", ErrNotificationsUnavailable, err)
	}

	s.publish(ctx, userID, feed.EventInsert, item)
	return item, nil
}

// List returns one filtered page, newest first. The filter applies before
// offset/limit so pagination counts filtered items.
func (s *NotificationStore) List(ctx context.Context, userID string, filter feed.Filter, offset, limit int) (feed.Page, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return feed.Page{}, nil
	}

	ids, err := s.redis.ZRevRange(ctx, s.indexKey(userID), 0, -1).Result()
	if err != nil {
		return feed.Page{}, fmt.Errorf("%w: %v", ErrNotificationsUnavailable, err)
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.itemKey(userID, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return feed.Page{}, fmt.Errorf("%w: %v", ErrNotificationsUnavailable, err)
	}

	var filtered []feed.Item
	for i, id := range ids {
		fields, err := cmds[i].Result()
		if err != nil || len(fields) == 0 {
			// Index entry without a body: item deleted concurrently.
			continue
		}
		item := itemFromFields(id, fields)
		if filter.Match(item) {
			filtered = append(filtered, item)
		}
	}

	if offset >= len(filtered) {
		return feed.Page{}, nil
	}
	end := offset + limit
	hasMore := end < len(filtered)
	if end > len(filtered) {
		end = len(filtered)
	}
	return feed.Page{
		Items:   filtered[offset:end],
		HasMore: hasMore,
	}, nil
}

// MarkRead flips a single item's read flag and publishes an update envelope.
func (s *NotificationStore) MarkRead(ctx context.Context, userID, id string) error {
	item, err := s.getItem(ctx, userID, id)
	if err != nil {
		return err
	}
	if item.IsRead {
		return nil
	}

	item.IsRead = true
	if err := s.redis.HSet(ctx, s.itemKey(userID, id), fieldIsRead, "1").Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationsUnavailable, err)
	}

	s.publish(ctx, userID, feed.EventUpdate, item)
	return nil
}

// MarkAllRead flips every unread item, publishing one update per change.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	ids, err := s.redis.ZRevRange(ctx, s.indexKey(userID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationsUnavailable, err)
	}

	for _, id := range ids {
		item, err := s.getItem(ctx, userID, id)
		if err != nil {
			if errors.Is(err, ErrNotificationNotFound) {
				continue
			}
			return err
		}
		if item.IsRead {
			continue
		}
		item.IsRead = true
		if err := s.redis.HSet(ctx, s.itemKey(userID, id), fieldIsRead, "1").Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrNotificationsUnavailable, err)
		}
		s.publish(ctx, userID, feed.EventUpdate, item)
	}
	return nil
}

// Delete removes the item from the index and drops its body.
func (s *NotificationStore) Delete(ctx context.Context, userID, id string) error {
	removed, err := s.redis.ZRem(ctx, s.indexKey(userID), id).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationsUnavailable, err)
	}
	if removed == 0 {
		return ErrNotificationNotFound
	}
	if err := s.redis.Del(ctx, s.itemKey(userID, id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationsUnavailable, err)
	}
	return nil
}

func (s *NotificationStore) getItem(ctx context.Context, userID, id string) (feed.Item, error) {
	fields, err := s.redis.HGetAll(ctx, s.itemKey(userID, id)).Result()
	if err != nil {
		return feed.Item{}, fmt.Errorf("%w: %v", ErrNotificationsUnavailable, err)
	}
	if len(fields) == 0 {
		return feed.Item{}, ErrNotificationNotFound
	}
	return itemFromFields(id, fields), nil
}

func (s *NotificationStore) publish(ctx context.Context, userID string, kind feed.EventKind, item feed.Item) {
	payload, err := encodeEvent(kind, item)
	if err != nil {
		return
	}
	// Best effort: a missed publish only delays convergence until the next
	// page fetch.
	_ = s.redis.Publish(ctx, ChannelKey(s.prefix, userID), payload).Err()
}

func itemFields(item feed.Item) map[string]any {
	isRead := "0"
	if item.IsRead {
		isRead = "1"
	}
	return map[string]any{
		fieldType:       item.Type,
		fieldPriority:   item.Priority,
		fieldIsRead:     isRead,
		fieldCreatedAt:  strconv.FormatInt(item.CreatedAt.UnixMilli(), 10),
		fieldActionURL:  item.ActionURL,
		fieldActionText: item.ActionText,
	}
}

func itemFromFields(id string, fields map[string]string) feed.Item {
	createdMs, _ := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	return feed.Item{
		ID:         id,
		Type:       fields[fieldType],
		Priority:   fields[fieldPriority],
		IsRead:     fields[fieldIsRead] == "1",
		CreatedAt:  time.UnixMilli(createdMs).UTC(),
		ActionURL:  fields[fieldActionURL],
		ActionText: fields[fieldActionText],
	}
}

type eventEnvelope struct {
	Kind string    `json:"kind"`
	Item feed.Item `json:"item"`
}

func encodeEvent(kind feed.EventKind, item feed.Item) ([]byte, error) {
	name := "insert"
	if kind == feed.EventUpdate {
		name = "update"
	}
	return json.Marshal(eventEnvelope{
		Kind: name,
		Item: item,
	})
}

// DecodeEvent parses a change envelope published on a user channel.
func DecodeEvent(payload []byte) (feed.Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return feed.Event{}, err
	}
	kind := feed.EventInsert
	if env.Kind == "update" {
		kind = feed.EventUpdate
	}
	return feed.Event{
		Kind: kind,
		Item: env.Item,
	}, nil
}
