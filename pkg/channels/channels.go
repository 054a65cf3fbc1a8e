package channels

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// Payload is one channel attempt's input: the immutable request plus the
// identifiers the adapters stamp onto results and stored messages.
type Payload struct {
	NotificationID string
	Category       string
	Request        notification.Request
}

// Adapter delivers one notification through one channel. Implementations
// resolve destinations themselves and report every failure inside the
// result.
type Adapter interface {
	Channel() notification.Channel
	Send(ctx context.Context, p Payload) notification.ChannelResult
}

// Registry maps channels to adapters. Registration happens at wiring time;
// lookups afterwards are read-only, so no locking is needed.
type Registry struct {
	adapters map[notification.Channel]Adapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[notification.Channel]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Channel()] = a
	}
	return r
}

// Register adds or replaces the adapter for its channel.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Channel()] = a
}

// Get returns the adapter for the channel.
func (r *Registry) Get(ch notification.Channel) (Adapter, bool) {
	a, ok := r.adapters[ch]
	return a, ok
}

// Send dispatches through the channel's adapter. A channel with no
// registered adapter yields a failed result.
func (r *Registry) Send(ctx context.Context, ch notification.Channel, p Payload) notification.ChannelResult {
	a, ok := r.adapters[ch]
	if !ok {
		return failedResult(ch, "", ErrNoAdapter.Error())
	}
	return a.Send(ctx, p)
}

// failedResult builds a non-success result stamped with the current time.
func failedResult(ch notification.Channel, provider, errMsg string) notification.ChannelResult {
	return notification.ChannelResult{
		Channel:     ch,
		Provider:    provider,
		Err:         errMsg,
		AttemptedAt: time.Now(),
	}
}
