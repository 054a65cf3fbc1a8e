package channels

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/prefs"
	"github.com/dmitrymomot/notifykit/pkg/sms"
)

// smsBodyLimit keeps the rendered text inside a single GSM segment pair.
const smsBodyLimit = 300

// SMSAdapter renders the notification as a short text message.
type SMSAdapter struct {
	sender   sms.Sender
	contacts prefs.ContactLookup
}

// NewSMSAdapter creates the adapter.
func NewSMSAdapter(sender sms.Sender, contacts prefs.ContactLookup) *SMSAdapter {
	return &SMSAdapter{sender: sender, contacts: contacts}
}

func (a *SMSAdapter) Channel() notification.Channel {
	return notification.ChannelSMS
}

func (a *SMSAdapter) Send(ctx context.Context, p Payload) notification.ChannelResult {
	phone, err := a.contacts.UserPhone(ctx, p.Request.UserID)
	if err != nil {
		return failedResult(notification.ChannelSMS, "twilio", "phone lookup failed: "+err.Error())
	}
	if phone == "" {
		return failedResult(notification.ChannelSMS, "twilio", ErrNoDestination.Error())
	}

	messageID, err := a.sender.Send(ctx, phone, renderSMSBody(p.Request.Title, p.Request.Body))
	if err != nil {
		return failedResult(notification.ChannelSMS, "twilio", err.Error())
	}

	return notification.ChannelResult{
		Channel:     notification.ChannelSMS,
		Success:     true,
		Provider:    "twilio",
		MessageID:   messageID,
		AttemptedAt: time.Now(),
	}
}

// renderSMSBody joins title and body, truncating to the segment limit.
func renderSMSBody(title, body string) string {
	text := title
	if body != "" {
		if text != "" {
			text += ": "
		}
		text += body
	}
	if len(text) > smsBodyLimit {
		text = text[:smsBodyLimit-3] + "..."
	}
	return text
}
