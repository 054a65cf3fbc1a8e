package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// Status is the derived overall outcome of one notification.
type Status string

const (
	StatusDelivered Status = "delivered" // at least one channel succeeded
	StatusFailed    Status = "failed"    // every channel failed
)

// Delivery is one log record.
type Delivery struct {
	NotificationID string                       `json:"notification_id"`
	UserID         string                       `json:"user_id"`
	Type           string                       `json:"type"`
	Title          string                       `json:"title"`
	Body           string                       `json:"body"`
	Channels       []notification.ChannelResult `json:"channels"`
	Status         Status                       `json:"status"`
	RecordedAt     time.Time                    `json:"recorded_at"`
}

// DeriveStatus computes the overall status from the channel outcomes.
func DeriveStatus(channels []notification.ChannelResult) Status {
	for _, c := range channels {
		if c.Success {
			return StatusDelivered
		}
	}
	return StatusFailed
}

// Log is the append-only delivery log contract.
type Log interface {
	Record(ctx context.Context, d Delivery) error
}

// MemoryLog keeps records in memory for development and tests.
type MemoryLog struct {
	mu      sync.RWMutex
	records []Delivery
}

// NewMemoryLog creates an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Record appends the delivery record.
func (l *MemoryLog) Record(ctx context.Context, d Delivery) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d.RecordedAt.IsZero() {
		d.RecordedAt = time.Now()
	}
	l.records = append(l.records, d)
	return nil
}

// Records returns a snapshot of everything recorded so far.
func (l *MemoryLog) Records() []Delivery {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Delivery, len(l.records))
	copy(out, l.records)
	return out
}
