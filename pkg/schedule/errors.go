package schedule

import "errors"

var (
	ErrQueueWrite = errors.New("schedule: failed to write queue entry")
)
