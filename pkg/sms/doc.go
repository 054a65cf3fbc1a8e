// Package sms sends notification texts through a Twilio-compatible messages
// API. The client follows the same outbound-HTTP conventions as the push
// provider clients: a pooled http.Client, a per-request timeout, and a
// declarative error-code table that separates invalid destinations (bad or
// unsubscribed numbers, never worth retrying) from transient provider
// failures that count against the "sms-twilio" circuit.
package sms
