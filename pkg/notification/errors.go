package notification

import "errors"

var (
	ErrResultAmbiguous   = errors.New("notification: delivery result mixes blocked/scheduled/sent outcomes")
	ErrResultEmpty       = errors.New("notification: delivery result has no outcome")
	ErrUnknownChannel    = errors.New("notification: unknown channel")
	ErrInvalidTableEntry = errors.New("notification: invalid channel table entry")
	ErrMissingDefaultRow = errors.New("notification: channel table has no default row")
)
