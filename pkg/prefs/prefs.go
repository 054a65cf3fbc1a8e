package prefs

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/schedule"
)

// Decision is the resolver's verdict for one (user, category, channel) tuple.
type Decision struct {
	// Send reports whether the channel may deliver right now.
	Send bool
	// ScheduleFor, when set, defers the whole notification to that moment
	// (quiet hours). Takes precedence over Frequency.
	ScheduleFor *time.Time
	// Frequency, when not instant, batches the notification into a digest.
	Frequency schedule.Frequency
	// Reason explains a negative or deferred decision, e.g. "quiet_hours"
	// or "channel_disabled".
	Reason string
}

// Resolver is the preference evaluation collaborator. Implementations are
// expected to be safe for concurrent use: the dispatcher issues one
// ShouldSend call per channel in parallel.
type Resolver interface {
	// ShouldSend evaluates the user's preferences for one channel. With
	// bypass true (critical priority or bypass-eligible category), quiet
	// hours and digests must be ignored and only hard opt-outs honored.
	ShouldSend(ctx context.Context, userID, category string, channel notification.Channel, bypass bool) (Decision, error)

	// ChannelPreferences returns the user's per-channel enablement for a
	// category, used for channel determination when the request carries no
	// explicit channel list. A nil map means "nothing stored".
	ChannelPreferences(ctx context.Context, userID, category string) (map[notification.Channel]bool, error)
}

// CategoryMapper maps raw notification type keys onto preference categories
// and knows which types bypass preferences outright.
type CategoryMapper interface {
	// MapTypeToCategory maps e.g. "post_liked" to "posts". Unknown types
	// map to notification.CategoryDefault.
	MapTypeToCategory(notifType string) string

	// ShouldBypassPreferences reports whether the type belongs to the fixed
	// bypass allow-list (security alerts and the like).
	ShouldBypassPreferences(notifType string) bool
}

// ContactLookup resolves a user's delivery destinations. Owned by the
// surrounding application; read-only to the delivery core.
type ContactLookup interface {
	// UserEmail returns the user's email address, or "" if none on file.
	UserEmail(ctx context.Context, userID string) (string, error)

	// IsEmailSuppressed reports whether the address is on a suppression
	// list (bounces, spam complaints, unsubscribes).
	IsEmailSuppressed(ctx context.Context, email string) (bool, error)

	// UserPhone returns the user's phone number in E.164, or "" if none.
	UserPhone(ctx context.Context, userID string) (string, error)

	// DeviceTokens returns the user's registered push destinations.
	DeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error)
}
