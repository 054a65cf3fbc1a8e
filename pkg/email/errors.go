package email

import "errors"

var (
	ErrInvalidConfig       = errors.New("email: invalid configuration")
	ErrNotConfigured       = errors.New("email: sender not configured")
	ErrInvalidRecipient    = errors.New("email: invalid recipient address")
	ErrEmptySubject        = errors.New("email: empty subject")
	ErrEmptyBody           = errors.New("email: empty body")
	ErrRecipientSuppressed = errors.New("email: recipient is suppressed")
	ErrSendFailed          = errors.New("email: failed to send")
)

// IsSuppressed reports whether err marks a suppressed or inactive recipient,
// a non-retryable invalid destination.
func IsSuppressed(err error) bool {
	return errors.Is(err, ErrRecipientSuppressed)
}
