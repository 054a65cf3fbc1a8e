// Package circuit implements a named circuit breaker for outbound provider
// calls. Each breaker tracks consecutive failures independently: after a
// configurable threshold it opens and rejects calls without any network I/O,
// after a cooldown it half-opens and lets a limited number of trial calls
// through, and it closes again once all trials succeed.
//
// Breakers are grouped in a Registry keyed by circuit name ("push-ios",
// "push-android", "sms-twilio", ...). Entries are created lazily on first use
// and live for the process lifetime; state is never persisted or shared
// across processes. The Registry is the process-wide shared component the
// provider clients are constructed with; there is no implicit global.
//
// # Usage
//
//	reg := circuit.NewRegistry(circuit.WithFailureThreshold(5))
//	err := reg.Do(ctx, "push-ios", func(ctx context.Context) error {
//		return client.push(ctx, device, payload)
//	})
//	if errors.Is(err, circuit.ErrOpen) {
//		// provider degraded, no network call was made
//	}
package circuit
