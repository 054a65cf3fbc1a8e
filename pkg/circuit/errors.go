package circuit

import "errors"

var (
	// ErrOpen is returned by Do and Allow-guarded calls while the breaker is
	// rejecting traffic. No network I/O has been performed when it is seen.
	ErrOpen = errors.New("circuit: open")
)

// IsOpen reports whether err indicates a rejected call on an open circuit.
func IsOpen(err error) bool {
	return errors.Is(err, ErrOpen)
}
