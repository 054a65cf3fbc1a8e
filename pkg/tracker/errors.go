package tracker

import "errors"

var (
	ErrLogWrite = errors.New("tracker: failed to write delivery record")
)
