package prefs

import (
	"context"
	"strings"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// categoryPrefixes maps notification type prefixes to preference categories.
// Checked in order; first match wins.
var categoryPrefixes = []struct {
	prefix   string
	category string
}{
	{"post_", notification.CategoryPosts},
	{"comment_", notification.CategoryPosts},
	{"message_", notification.CategoryChat},
	{"chat_", notification.CategoryChat},
	{"system_", notification.CategorySystem},
	{"account_", notification.CategorySystem},
	{"marketing_", notification.CategoryMarketing},
	{"promo_", notification.CategoryMarketing},
	{"security_", notification.CategorySecurity},
	{"login_", notification.CategorySecurity},
}

// bypassTypes is the fixed allow-list of types that skip preference-based
// scheduling, digests and blocking regardless of priority.
var bypassTypes = map[string]struct{}{
	"security_alert":       {},
	"security_new_device":  {},
	"login_suspicious":     {},
	"account_deactivation": {},
}

// StaticResolver implements Resolver and CategoryMapper with fixed rules and
// no storage: every channel is enabled and every decision is an instant
// send. It is the degraded-mode fallback as well as the test default.
type StaticResolver struct{}

// NewStaticResolver creates a resolver that allows everything instantly.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{}
}

// ShouldSend always permits immediate delivery.
func (*StaticResolver) ShouldSend(ctx context.Context, userID, category string, channel notification.Channel, bypass bool) (Decision, error) {
	return Decision{Send: true}, nil
}

// ChannelPreferences reports nothing stored, so the caller falls back to the
// static per-category default table.
func (*StaticResolver) ChannelPreferences(ctx context.Context, userID, category string) (map[notification.Channel]bool, error) {
	return nil, nil
}

// MapTypeToCategory maps a raw type key to its preference category by prefix.
func (*StaticResolver) MapTypeToCategory(notifType string) string {
	for _, m := range categoryPrefixes {
		if strings.HasPrefix(notifType, m.prefix) {
			return m.category
		}
	}
	return notification.CategoryDefault
}

// ShouldBypassPreferences reports membership in the bypass allow-list.
func (*StaticResolver) ShouldBypassPreferences(notifType string) bool {
	_, ok := bypassTypes[notifType]
	return ok
}
