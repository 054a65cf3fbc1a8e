// Package notification defines the domain model shared by the delivery core:
// the notification request, the channel enumeration, per-channel and aggregate
// delivery results, registered device tokens, and the static per-category
// default channel table.
//
// Types in this package are plain values with no behavior beyond validation
// and the pure default-channel lookup. All I/O lives in the dispatcher,
// channel adapters and provider clients that consume these types.
//
// # Result exclusivity
//
// A DeliveryResult describes exactly one of three terminal outcomes: it was
// sent (Channels non-empty, Success reflects whether any channel succeeded),
// it was blocked (Blocked true, Reason set), or it was deferred (Scheduled
// true, Reason set). Constructors on the dispatcher side uphold this; the
// Validate method can be used to assert it in tests.
package notification
