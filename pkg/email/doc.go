// Package email sends transactional notification emails through Postmark.
// It exposes a narrow Sender interface the email channel adapter consumes,
// a Postmark-backed implementation with a declarative error-code table, and
// a DevSender that writes emails to disk for local development.
//
// Postmark error codes are classified into suppressed-recipient (the address
// is inactive and retrying is pointless) and transient failures, so the
// adapter can report a non-retryable "invalid destination" result without
// parsing provider messages itself.
package email
