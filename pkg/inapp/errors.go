package inapp

import "errors"

var (
	// ErrInvalidMessage is returned when a message is missing its ID or user.
	ErrInvalidMessage = errors.New("inapp: message requires id and user id")

	// ErrNotFound is returned when a message does not exist in the store.
	ErrNotFound = errors.New("inapp: message not found")

	// ErrStoreWrite is returned when the backing store rejects a write.
	ErrStoreWrite = errors.New("inapp: store write failed")
)
