package circuit

import (
	"context"
	"sync"
	"time"
)

// State represents the current position of a breaker's state machine.
type State int

const (
	// StateClosed lets calls pass through while counting consecutive failures.
	StateClosed State = iota
	// StateOpen rejects all calls until the reset timeout elapses.
	StateOpen
	// StateHalfOpen admits a limited number of trial calls to probe recovery.
	StateHalfOpen
)

// String returns the wire-friendly name of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

const (
	DefaultFailureThreshold = 5
	DefaultResetTimeout     = 60 * time.Second
	DefaultHalfOpenTrials   = 3
)

// Option configures a Breaker (and, through the Registry, every breaker it
// creates).
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the circuit.
// Non-positive values are ignored in favor of the default.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithResetTimeout sets the cooldown after which an open circuit half-opens.
func WithResetTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.resetTimeout = d
		}
	}
}

// WithHalfOpenTrials sets how many consecutive trial successes close a
// half-open circuit.
func WithHalfOpenTrials(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.halfOpenTrials = n
		}
	}
}

// WithClock injects a time source. Tests use this to drive cooldown
// transitions deterministically.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// Breaker is a single named circuit. Safe for concurrent use: every
// check-then-transition sequence runs under the breaker's mutex, so two
// concurrent failures cannot race past the threshold check.
type Breaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int
	resetTimeout     time.Duration
	halfOpenTrials   int
	now              func() time.Time

	state               State
	consecutiveFailures int
	lastStateChange     time.Time
	trialSuccesses      int // consecutive successes while half-open
	trialsAdmitted      int // calls let through while half-open
}

// New creates a closed breaker with the given name.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: DefaultFailureThreshold,
		resetTimeout:     DefaultResetTimeout,
		halfOpenTrials:   DefaultHalfOpenTrials,
		now:              time.Now,
		state:            StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.lastStateChange = b.now()
	return b
}

// Name returns the circuit name the breaker was registered under.
func (b *Breaker) Name() string { return b.name }

// Allow reports whether a call may proceed, transitioning open→half_open
// when the cooldown has elapsed. Callers that proceed must report the
// outcome via RecordSuccess or RecordFailure.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true

	case StateOpen:
		if b.now().Sub(b.lastStateChange) >= b.resetTimeout {
			b.transition(StateHalfOpen)
			b.trialsAdmitted = 1
			return true
		}
		return false

	case StateHalfOpen:
		if b.trialsAdmitted >= b.halfOpenTrials {
			return false
		}
		b.trialsAdmitted++
		return true

	default:
		return false
	}
}

// RecordSuccess notes a successful call. In the closed state it resets the
// consecutive-failure counter; in the half-open state it counts toward the
// trial quota and closes the circuit once the quota is met.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.consecutiveFailures = 0

	case StateHalfOpen:
		b.trialSuccesses++
		if b.trialSuccesses >= b.halfOpenTrials {
			b.transition(StateClosed)
			b.consecutiveFailures = 0
		}
	}
}

// RecordFailure notes a failed call. Reaching the failure threshold while
// closed opens the circuit; any half-open trial failure reopens it and
// restarts the cooldown.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.failureThreshold {
			b.transition(StateOpen)
		}

	case StateHalfOpen:
		b.transition(StateOpen)
		b.consecutiveFailures = b.failureThreshold
	}
}

// Do runs fn through the breaker. If the circuit rejects the call, Do
// returns ErrOpen without invoking fn; otherwise fn's outcome is recorded
// and its error (if any) returned unchanged.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if !b.Allow() {
		return ErrOpen
	}
	if err := fn(ctx); err != nil {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return nil
}

// State returns the breaker's current state without admitting a call. An
// open breaker past its cooldown reports half_open, matching what Allow
// would decide.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.now().Sub(b.lastStateChange) >= b.resetTimeout {
		return StateHalfOpen
	}
	return b.state
}

// Reset returns the breaker to a pristine closed state. Intended for tests.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.transition(StateClosed)
	b.consecutiveFailures = 0
}

// Stats is a point-in-time snapshot used for logging and monitoring.
type Stats struct {
	Name                string    `json:"name"`
	State               string    `json:"state"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	TrialSuccesses      int       `json:"trial_successes"`
	LastStateChange     time.Time `json:"last_state_change"`
}

// Stats returns a snapshot of the breaker's counters.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		Name:                b.name,
		State:               b.state.String(),
		ConsecutiveFailures: b.consecutiveFailures,
		TrialSuccesses:      b.trialSuccesses,
		LastStateChange:     b.lastStateChange,
	}
}

// transition moves the state machine and resets per-state counters. Callers
// must hold b.mu.
func (b *Breaker) transition(to State) {
	b.state = to
	b.lastStateChange = b.now()
	b.trialSuccesses = 0
	b.trialsAdmitted = 0
}
