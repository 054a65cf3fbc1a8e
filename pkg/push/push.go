package push

import (
	"context"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// Payload is the platform-neutral content of one push message. Each client
// maps it onto its provider's wire format.
type Payload struct {
	Title       string
	Body        string
	Data        map[string]string
	ImageURL    string
	Sound       string
	Badge       *int
	TTL         time.Duration
	CollapseKey string
	ThreadID    string
	Priority    notification.Priority
}

// Result is the outcome of one provider call for one device. Errors are
// data: clients never return a Go error for delivery failures, so a broken
// provider cannot abort the fan-out.
type Result struct {
	Success   bool
	Platform  notification.Platform
	MessageID string
	Err       string
	ErrorCode string // provider-specific code, e.g. "Unregistered" or "UNAVAILABLE"
	Retryable bool   // false for dead tokens and missing configuration
}

// Client sends one push message to one device.
type Client interface {
	Send(ctx context.Context, device notification.DeviceToken, p Payload) Result
}

// failure builds a failed result for the given platform.
func failure(platform notification.Platform, code, msg string, retryable bool) Result {
	return Result{
		Platform:  platform,
		Err:       msg,
		ErrorCode: code,
		Retryable: retryable,
	}
}

// notConfigured is the degraded result for a client missing credentials.
// It never reaches the network and never counts against a circuit.
func notConfigured(platform notification.Platform) Result {
	return failure(platform, "not_configured", "provider not configured", false)
}
