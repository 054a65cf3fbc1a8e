package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// Kind distinguishes why an entry was deferred.
type Kind string

const (
	// KindQuietHours marks an entry deferred to the end of the user's quiet
	// window; ScheduledFor comes verbatim from the preference resolver.
	KindQuietHours Kind = "quiet_hours"
	// KindDigest marks an entry batched into a digest; ScheduledFor is the
	// next digest boundary for the user's frequency.
	KindDigest Kind = "digest"
)

// Entry is a deferred copy of the essential notification request fields.
// It is consumed later by an external dispatcher process.
type Entry struct {
	UserID       string                `json:"user_id"`
	Type         string                `json:"type"`
	Title        string                `json:"title"`
	Body         string                `json:"body"`
	Data         map[string]string     `json:"data,omitempty"`
	Priority     notification.Priority `json:"priority"`
	Kind         Kind                  `json:"kind"`
	Frequency    Frequency             `json:"frequency,omitempty"`
	ScheduledFor time.Time             `json:"scheduled_for"`
	CreatedAt    time.Time             `json:"created_at"`
}

// DedupKey identifies the queue slot an entry occupies. Re-queueing the same
// notification type for the same user and boundary overwrites the previous
// entry (last write wins).
func (e Entry) DedupKey() string {
	return fmt.Sprintf("%s|%s|%d", e.UserID, e.Type, e.ScheduledFor.Unix())
}

// Queue persists deferred entries. Implementations upsert on DedupKey.
type Queue interface {
	Upsert(ctx context.Context, e Entry) error
}

// MemoryQueue is an in-memory Queue for development and tests.
type MemoryQueue struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{entries: make(map[string]Entry)}
}

// Upsert stores the entry, replacing any previous entry with the same key.
func (q *MemoryQueue) Upsert(ctx context.Context, e Entry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	q.entries[e.DedupKey()] = e
	return nil
}

// Entries returns a snapshot of the queued entries in no particular order.
func (q *MemoryQueue) Entries() []Entry {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]Entry, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e)
	}
	return out
}
