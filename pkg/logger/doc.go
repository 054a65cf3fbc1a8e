// Package logger builds configured slog.Logger instances and provides typed
// attribute helpers for the delivery core's log vocabulary (notification ID,
// channel, provider, circuit name). Centralizing attr keys keeps the log
// stream queryable: every component records "channel" the same way.
package logger
