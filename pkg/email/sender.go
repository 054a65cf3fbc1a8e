package email

import (
	"context"
	"regexp"
)

// Sender sends one email and returns the provider message ID.
type Sender interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}

// Message is a rendered notification email.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	BodyText string `json:"body_text,omitempty"`
	Tag      string `json:"tag,omitempty"` // provider-side analytics tag, e.g. the notification category
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks the message has a destination, a subject and a body.
func (m Message) Validate() error {
	if m.To == "" || !emailRegex.MatchString(m.To) {
		return ErrInvalidRecipient
	}
	if m.Subject == "" {
		return ErrEmptySubject
	}
	if m.BodyHTML == "" && m.BodyText == "" {
		return ErrEmptyBody
	}
	return nil
}
