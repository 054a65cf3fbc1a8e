package notification

import (
	"time"
)

// Channel is a delivery mechanism through which a notification reaches a user.
// The set is closed: every channel has exactly one adapter implementation.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelInApp Channel = "in_app"
)

// Valid reports whether c is one of the known channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelPush, ChannelEmail, ChannelSMS, ChannelInApp:
		return true
	}
	return false
}

// Priority represents the urgency of a notification request. Critical
// requests bypass preference-based scheduling, digests and blocking.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is one of the known priority tiers.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Platform identifies a concrete push provider target.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// Request is a single ask to notify one user. It is immutable once
// constructed; the dispatcher assigns the notification ID at orchestration
// start and never mutates the request itself.
type Request struct {
	UserID   string            `json:"user_id"`
	Type     string            `json:"type"` // notification category key, e.g. "post_liked"
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`     // opaque payload forwarded to adapters
	Channels []Channel         `json:"channels,omitempty"` // explicit override; empty means derive from preferences
	Priority Priority          `json:"priority"`

	// Platform-specific hints, forwarded verbatim to the push payload.
	ImageURL    string        `json:"image_url,omitempty"`
	Sound       string        `json:"sound,omitempty"`
	Badge       *int          `json:"badge,omitempty"`
	TTL         time.Duration `json:"ttl,omitempty"`
	CollapseKey string        `json:"collapse_key,omitempty"`
	ThreadID    string        `json:"thread_id,omitempty"` // APNs thread / FCM collapse grouping
}

// ChannelResult is the outcome of one channel attempt. Produced once per
// attempt and never mutated afterwards.
type ChannelResult struct {
	Channel     Channel   `json:"channel"`
	Success     bool      `json:"success"`
	Provider    string    `json:"provider,omitempty"` // concrete provider that handled it, e.g. "apns"
	Err         string    `json:"error,omitempty"`
	MessageID   string    `json:"message_id,omitempty"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// DeliveryResult is the single aggregate return value of one orchestration
// call. No partial results are streamed; the dispatcher waits for every
// channel attempt before producing it.
type DeliveryResult struct {
	NotificationID string          `json:"notification_id"`
	UserID         string          `json:"user_id"`
	Success        bool            `json:"success"` // true if any channel succeeded
	Channels       []ChannelResult `json:"channels,omitempty"`
	Blocked        bool            `json:"blocked,omitempty"`
	Scheduled      bool            `json:"scheduled,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Validate checks the result exclusivity invariant: exactly one of
// sent-with-channels, blocked, or scheduled describes the result.
func (r DeliveryResult) Validate() error {
	switch {
	case r.Blocked && r.Scheduled:
		return ErrResultAmbiguous
	case (r.Blocked || r.Scheduled) && len(r.Channels) > 0:
		return ErrResultAmbiguous
	case !r.Blocked && !r.Scheduled && len(r.Channels) == 0:
		return ErrResultEmpty
	}
	return nil
}

// DeviceToken is one registered push destination. Owned by the user-contact
// collaborator; read-only to the delivery core. For Web Push the Endpoint,
// P256DH and Auth fields are populated instead of Token.
type DeviceToken struct {
	ProfileID string   `json:"profile_id"`
	Platform  Platform `json:"platform"`
	Token     string   `json:"token,omitempty"`
	Endpoint  string   `json:"endpoint,omitempty"`
	P256DH    string   `json:"p256dh,omitempty"`
	Auth      string   `json:"auth,omitempty"`
}
