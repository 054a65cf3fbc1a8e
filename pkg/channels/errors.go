package channels

import "errors"

var (
	// ErrNoAdapter is reported when a channel has no registered adapter.
	ErrNoAdapter = errors.New("channels: no adapter registered for channel")

	// ErrNoDestination is reported when the user has no destination for a
	// channel (no devices, no email, no phone). Non-retryable: the provider
	// is never called.
	ErrNoDestination = errors.New("channels: no destination on file")

	// ErrSuppressed is reported when the destination is on a suppression
	// list and must not be contacted.
	ErrSuppressed = errors.New("channels: destination is suppressed")
)
