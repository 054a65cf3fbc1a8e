package sms

import "errors"

var (
	ErrNotConfigured      = errors.New("sms: provider not configured")
	ErrInvalidDestination = errors.New("sms: invalid destination number")
	ErrSendFailed         = errors.New("sms: failed to send")
)

// IsInvalidDestination reports whether err marks a permanently undeliverable
// number.
func IsInvalidDestination(err error) bool {
	return errors.Is(err, ErrInvalidDestination)
}
