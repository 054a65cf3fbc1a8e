package inapp

import (
	"context"
	"time"
)

// Message is one entry in a user's in-app notification feed.
type Message struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	ImageURL  string            `json:"image_url,omitempty"`
	Read      bool              `json:"read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// MarkAsRead flags the message read at the current time.
func (m *Message) MarkAsRead() {
	m.Read = true
	now := time.Now()
	m.ReadAt = &now
}

// ListOptions filters and paginates a feed listing.
type ListOptions struct {
	Limit      int  // 0 means no limit
	Offset     int
	OnlyUnread bool
}

// Store persists per-user notification feeds. Listings are newest first.
type Store interface {
	Create(ctx context.Context, msg Message) error
	List(ctx context.Context, userID string, opts ListOptions) ([]Message, error)
	MarkRead(ctx context.Context, userID string, ids ...string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, ids ...string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}
