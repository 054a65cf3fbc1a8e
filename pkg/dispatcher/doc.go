// Package dispatcher is the control-flow core of notification delivery.
// One Dispatch call determines the target channels, applies bypass rules,
// evaluates the user's preferences per channel in parallel, branches into
// the immediate-send, quiet-hours or digest path, fans surviving channels
// out concurrently and aggregates everything into a single DeliveryResult.
//
// Dispatch never returns a Go error. Preference lookups degrade to a static
// per-category channel table, channel failures are captured inside the
// result, and delivery-log and fallback-email writes run as fire-and-forget
// background tasks whose failures only log.
package dispatcher
