package inapp

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps feeds in process memory. Suitable for development and
// tests; production deployments use the Redis store.
type MemoryStore struct {
	mu    sync.RWMutex
	feeds map[string][]Message // userID -> messages
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{feeds: make(map[string][]Message)}
}

func (s *MemoryStore) Create(_ context.Context, msg Message) error {
	if msg.ID == "" || msg.UserID == "" {
		return ErrInvalidMessage
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds[msg.UserID] = append(s.feeds[msg.UserID], msg)
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID string, opts ListOptions) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Message
	for _, m := range s.feeds[userID] {
		if opts.OnlyUnread && m.Read {
			continue
		}
		filtered = append(filtered, m)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

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

func (s *MemoryStore) MarkRead(_ context.Context, userID string, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	feed := s.feeds[userID]
	for i := range feed {
		if _, ok := want[feed[i].ID]; ok && !feed[i].Read {
			feed[i].MarkAsRead()
		}
	}
	return nil
}

func (s *MemoryStore) MarkAllRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	feed := s.feeds[userID]
	for i := range feed {
		if !feed[i].Read {
			feed[i].MarkAsRead()
		}
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := s.feeds[userID][:0]
	for _, m := range s.feeds[userID] {
		if _, ok := drop[m.ID]; !ok {
			kept = append(kept, m)
		}
	}
	s.feeds[userID] = kept
	return nil
}

func (s *MemoryStore) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.feeds[userID] {
		if !m.Read {
			count++
		}
	}
	return count, nil
}
