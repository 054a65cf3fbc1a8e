package channels

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/prefs"
)

// EmailAdapter renders the notification as a minimal HTML email and sends
// it through the configured sender. Suppressed addresses are refused before
// the provider is ever called.
type EmailAdapter struct {
	sender   email.Sender
	contacts prefs.ContactLookup
}

// NewEmailAdapter creates the adapter.
func NewEmailAdapter(sender email.Sender, contacts prefs.ContactLookup) *EmailAdapter {
	return &EmailAdapter{sender: sender, contacts: contacts}
}

func (a *EmailAdapter) Channel() notification.Channel {
	return notification.ChannelEmail
}

func (a *EmailAdapter) Send(ctx context.Context, p Payload) notification.ChannelResult {
	addr, err := a.contacts.UserEmail(ctx, p.Request.UserID)
	if err != nil {
		return failedResult(notification.ChannelEmail, "postmark", "email lookup failed: "+err.Error())
	}
	if addr == "" {
		return failedResult(notification.ChannelEmail, "postmark", ErrNoDestination.Error())
	}

	suppressed, err := a.contacts.IsEmailSuppressed(ctx, addr)
	if err != nil {
		return failedResult(notification.ChannelEmail, "postmark", "suppression lookup failed: "+err.Error())
	}
	if suppressed {
		return failedResult(notification.ChannelEmail, "postmark", ErrSuppressed.Error())
	}

	msg := email.Message{
		To:       addr,
		Subject:  p.Request.Title,
		BodyHTML: renderEmailHTML(p.Request.Title, p.Request.Body),
		BodyText: p.Request.Body,
		Tag:      p.Category,
	}

	messageID, err := a.sender.Send(ctx, msg)
	if err != nil {
		if errors.Is(err, email.ErrRecipientSuppressed) {
			return failedResult(notification.ChannelEmail, "postmark", ErrSuppressed.Error())
		}
		return failedResult(notification.ChannelEmail, "postmark", err.Error())
	}

	return notification.ChannelResult{
		Channel:     notification.ChannelEmail,
		Success:     true,
		Provider:    "postmark",
		MessageID:   messageID,
		AttemptedAt: time.Now(),
	}
}

// renderEmailHTML wraps title and body in a minimal template. Locale-aware
// rendering belongs to the surrounding application.
func renderEmailHTML(title, body string) string {
	return fmt.Sprintf("<h2>%s</h2><p>%s</p>", html.EscapeString(title), html.EscapeString(body))
}
