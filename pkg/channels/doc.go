// Package channels adapts the four delivery channels behind one uniform
// Send contract. Each adapter resolves the user's destination through the
// contact lookup, builds its provider-specific payload and converts every
// outcome, including missing destinations and provider failures, into a
// ChannelResult. Adapters never return Go errors: one broken channel must
// not abort the dispatcher's fan-out.
//
// The Registry resolves a logical channel name to its adapter; the set of
// channels is closed, so an unregistered channel is a wiring bug surfaced
// as a failed result rather than a panic.
package channels
