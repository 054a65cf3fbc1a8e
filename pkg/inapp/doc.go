// Package inapp stores notifications shown inside the product UI and pushes
// them to connected clients in real time. The Store keeps the persistent
// per-user feed (memory for tests and development, Redis in production); the
// Hub fans each stored message out to that user's live subscribers with
// non-blocking sends, dropping messages for consumers that cannot keep up.
//
// Unlike the external channels, in-app delivery succeeds as soon as the
// store write succeeds. Realtime fan-out is best effort on top.
package inapp
