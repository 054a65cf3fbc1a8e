package channels

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/inapp"
	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// InAppAdapter writes the notification into the user's in-app feed and
// pushes it to live subscribers. The channel succeeds once the store write
// succeeds; realtime fan-out after that is best effort.
type InAppAdapter struct {
	store inapp.Store
	hub   *inapp.Hub
}

// NewInAppAdapter creates the adapter. hub may be nil when no realtime
// surface is wired.
func NewInAppAdapter(store inapp.Store, hub *inapp.Hub) *InAppAdapter {
	return &InAppAdapter{store: store, hub: hub}
}

func (a *InAppAdapter) Channel() notification.Channel {
	return notification.ChannelInApp
}

func (a *InAppAdapter) Send(ctx context.Context, p Payload) notification.ChannelResult {
	msg := inapp.Message{
		ID:        p.NotificationID,
		UserID:    p.Request.UserID,
		Type:      p.Request.Type,
		Title:     p.Request.Title,
		Body:      p.Request.Body,
		Data:      p.Request.Data,
		ImageURL:  p.Request.ImageURL,
		CreatedAt: time.Now(),
	}

	if err := a.store.Create(ctx, msg); err != nil {
		return failedResult(notification.ChannelInApp, "inapp", err.Error())
	}
	if a.hub != nil {
		a.hub.Publish(ctx, msg)
	}

	return notification.ChannelResult{
		Channel:     notification.ChannelInApp,
		Success:     true,
		Provider:    "inapp",
		MessageID:   msg.ID,
		AttemptedAt: time.Now(),
	}
}
