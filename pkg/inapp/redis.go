package inapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each user's feed in three keys: a hash of id to message
// JSON, a sorted set ordering ids by creation time and a set of unread ids.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithFeedTTL expires a user's feed keys this long after the last write.
// Zero keeps feeds forever.
func WithFeedTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// NewRedisStore creates a store on an established client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func feedKey(userID string) string   { return "inapp:feed:" + userID }
func orderKey(userID string) string  { return "inapp:order:" + userID }
func unreadKey(userID string) string { return "inapp:unread:" + userID }

func (s *RedisStore) Create(ctx context.Context, msg Message) error {
	if msg.ID == "" || msg.UserID == "" {
		return ErrInvalidMessage
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return errors.Join(ErrStoreWrite, err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, feedKey(msg.UserID), msg.ID, raw)
	pipe.ZAdd(ctx, orderKey(msg.UserID), redis.Z{
		Score:  float64(msg.CreatedAt.UnixNano()),
		Member: msg.ID,
	})
	if !msg.Read {
		pipe.SAdd(ctx, unreadKey(msg.UserID), msg.ID)
	}
	s.expire(ctx, pipe, msg.UserID)

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, userID string, opts ListOptions) ([]Message, error) {
	ids, err := s.client.ZRevRange(ctx, orderKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("inapp: list order: %w", err)
	}
	if len(ids) == 0 {
		return []Message{}, nil
	}

	raw, err := s.client.HMGet(ctx, feedKey(userID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("inapp: list feed: %w", err)
	}

	var filtered []Message
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue // id in the index but evicted from the hash
		}
		var m Message
		if err := json.Unmarshal([]byte(str), &m); err != nil {
			return nil, fmt.Errorf("inapp: decode message: %w", err)
		}
		if opts.OnlyUnread && m.Read {
			continue
		}
		filtered = append(filtered, m)
	}

	start := opts.Offset
	if start > len(filtered) {
		return []Message{}, nil
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func (s *RedisStore) MarkRead(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	raw, err := s.client.HMGet(ctx, feedKey(userID), ids...).Result()
	if err != nil {
		return errors.Join(ErrStoreWrite, err)
	}

	pipe := s.client.TxPipeline()
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var m Message
		if err := json.Unmarshal([]byte(str), &m); err != nil {
			return errors.Join(ErrStoreWrite, err)
		}
		if m.Read {
			continue
		}
		m.MarkAsRead()
		updated, err := json.Marshal(m)
		if err != nil {
			return errors.Join(ErrStoreWrite, err)
		}
		pipe.HSet(ctx, feedKey(userID), m.ID, updated)
		pipe.SRem(ctx, unreadKey(userID), m.ID)
	}
	s.expire(ctx, pipe, userID)

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	return nil
}

func (s *RedisStore) MarkAllRead(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, unreadKey(userID)).Result()
	if err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	if len(ids) == 0 {
		return nil
	}
	return s.MarkRead(ctx, userID, ids...)
}

func (s *RedisStore) Delete(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, feedKey(userID), ids...)
	pipe.ZRem(ctx, orderKey(userID), members...)
	pipe.SRem(ctx, unreadKey(userID), members...)

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	return nil
}

func (s *RedisStore) CountUnread(ctx context.Context, userID string) (int, error) {
	n, err := s.client.SCard(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("inapp: count unread: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) expire(ctx context.Context, pipe redis.Pipeliner, userID string) {
	if s.ttl <= 0 {
		return
	}
	pipe.Expire(ctx, feedKey(userID), s.ttl)
	pipe.Expire(ctx, orderKey(userID), s.ttl)
	pipe.Expire(ctx, unreadKey(userID), s.ttl)
}
