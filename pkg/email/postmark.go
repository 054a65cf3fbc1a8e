package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// Config holds Postmark credentials and sender identity. Tokens are optional
// so development environments can run with the DevSender instead.
type Config struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail  string `env:"NOTIFICATION_SENDER_EMAIL"`
	ReplyToEmail string `env:"NOTIFICATION_REPLY_TO_EMAIL"`
}

// Configured reports whether the runtime credentials are present.
func (c Config) Configured() bool {
	return c.ServerToken != "" && c.SenderEmail != ""
}

// Postmark error codes that mark the recipient as permanently undeliverable.
// Kept as a declarative table rather than inline branches so the taxonomy is
// auditable next to the client.
var suppressedErrorCodes = map[int64]string{
	300: "invalid email address",
	406: "inactive recipient",
}

type postmarkSender struct {
	client *postmark.Client
	cfg    Config
}

// NewPostmarkSender creates a Postmark-backed Sender. It fails fast on
// missing credentials so a misconfigured process reports "not configured"
// at startup rather than on first send.
func NewPostmarkSender(cfg Config) (Sender, error) {
	if !cfg.Configured() {
		return nil, errors.Join(ErrInvalidConfig, ErrNotConfigured)
	}
	if !emailRegex.MatchString(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: sender email %q", ErrInvalidConfig, cfg.SenderEmail)
	}

	return &postmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		cfg:    cfg,
	}, nil
}

// Send delivers the message through Postmark's transactional API. Suppressed
// recipients are surfaced as ErrRecipientSuppressed so the channel adapter
// reports a non-retryable invalid destination.
func (s *postmarkSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.cfg.SenderEmail,
		ReplyTo:  s.cfg.ReplyToEmail,
		To:       msg.To,
		Subject:  msg.Subject,
		HTMLBody: msg.BodyHTML,
		TextBody: msg.BodyText,
		Tag:      msg.Tag,
	})
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		if reason, ok := suppressedErrorCodes[resp.ErrorCode]; ok {
			return "", fmt.Errorf("%w: %s (code %d)", ErrRecipientSuppressed, reason, resp.ErrorCode)
		}
		return "", errors.Join(ErrSendFailed,
			fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message))
	}

	return resp.MessageID, nil
}
