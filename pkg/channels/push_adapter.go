package channels

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/prefs"
	"github.com/dmitrymomot/notifykit/pkg/push"
)

// pushProviderNames maps a device platform to the provider recorded on
// results.
var pushProviderNames = map[notification.Platform]string{
	notification.PlatformIOS:     "apns",
	notification.PlatformAndroid: "fcm",
	notification.PlatformWeb:     "webpush",
}

// PushAdapter fans a notification out to all of the user's registered
// devices through the push router. The channel succeeds when at least one
// device accepted the message.
type PushAdapter struct {
	router   *push.Router
	contacts prefs.ContactLookup
}

// NewPushAdapter creates the adapter.
func NewPushAdapter(router *push.Router, contacts prefs.ContactLookup) *PushAdapter {
	return &PushAdapter{router: router, contacts: contacts}
}

func (a *PushAdapter) Channel() notification.Channel {
	return notification.ChannelPush
}

func (a *PushAdapter) Send(ctx context.Context, p Payload) notification.ChannelResult {
	devices, err := a.contacts.DeviceTokens(ctx, p.Request.UserID)
	if err != nil {
		return failedResult(notification.ChannelPush, "", "device lookup failed: "+err.Error())
	}
	if len(devices) == 0 {
		return failedResult(notification.ChannelPush, "", ErrNoDestination.Error())
	}

	payload := push.Payload{
		Title:       p.Request.Title,
		Body:        p.Request.Body,
		Data:        p.Request.Data,
		ImageURL:    p.Request.ImageURL,
		Sound:       p.Request.Sound,
		Badge:       p.Request.Badge,
		TTL:         p.Request.TTL,
		CollapseKey: p.Request.CollapseKey,
		ThreadID:    p.Request.ThreadID,
		Priority:    p.Request.Priority,
	}

	results := a.router.SendAll(ctx, devices, payload)

	var errs []string
	for i, res := range results {
		if res.Success {
			return notification.ChannelResult{
				Channel:     notification.ChannelPush,
				Success:     true,
				Provider:    pushProviderNames[devices[i].Platform],
				MessageID:   res.MessageID,
				AttemptedAt: time.Now(),
			}
		}
		errs = append(errs, res.Err)
	}
	return failedResult(notification.ChannelPush, "", "all devices failed: "+strings.Join(errs, "; "))
}
