package async

import "errors"

var (
	// ErrPanicked wraps a recovered panic from a function run via Go or Fire.
	ErrPanicked = errors.New("async: task panicked")
)
