package push

import (
	"context"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/circuit"
	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// Router selects the right client for each device's platform and wraps every
// provider call in that platform's circuit breaker.
type Router struct {
	clients  map[notification.Platform]Client
	circuits *circuit.Registry
}

// NewRouter wires platform clients to a shared breaker registry. Platforms
// without a registered client degrade to "not configured" results.
func NewRouter(circuits *circuit.Registry, clients map[notification.Platform]Client) *Router {
	if clients == nil {
		clients = make(map[notification.Platform]Client)
	}
	return &Router{clients: clients, circuits: circuits}
}

// CircuitName returns the breaker name guarding one platform's provider.
func CircuitName(platform notification.Platform) string {
	return "push-" + string(platform)
}

// Send delivers one message to one device through the platform's breaker.
// An open circuit short-circuits before any network I/O with a retryable
// failure, and only retryable provider failures count against the breaker:
// dead tokens and missing configuration say nothing about provider health.
func (r *Router) Send(ctx context.Context, device notification.DeviceToken, p Payload) Result {
	client, ok := r.clients[device.Platform]
	if !ok {
		return notConfigured(device.Platform)
	}

	breaker := r.circuits.Get(CircuitName(device.Platform))
	if !breaker.Allow() {
		return failure(device.Platform, "circuit_open", "circuit open", true)
	}

	res := client.Send(ctx, device, p)
	switch {
	case res.Success:
		breaker.RecordSuccess()
	case res.Retryable:
		breaker.RecordFailure()
	}
	return res
}

// SendAll fans one message out to every device concurrently and returns the
// per-device results in input order. A device list spanning platforms is
// fine; each send goes through its own platform's breaker.
func (r *Router) SendAll(ctx context.Context, devices []notification.DeviceToken, p Payload) []Result {
	futures := make([]*async.Future[Result], len(devices))
	for i, device := range devices {
		futures[i] = async.Go(ctx, func(ctx context.Context) (Result, error) {
			return r.Send(ctx, device, p), nil
		})
	}

	results := make([]Result, len(devices))
	for i, outcome := range async.JoinAll(futures...) {
		if outcome.Err != nil {
			// Only a panic inside Send can produce an error here.
			results[i] = failure(devices[i].Platform, "panic", outcome.Err.Error(), true)
			continue
		}
		results[i] = outcome.Value
	}
	return results
}
