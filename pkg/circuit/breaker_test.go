package circuit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/circuit"
)

// fakeClock is a mutable time source for driving cooldown transitions.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestBreakerOpensAtExactThreshold(t *testing.T) {
	t.Parallel()

	b := circuit.New("push-ios", circuit.WithFailureThreshold(5))

	for i := 0; i < 4; i++ {
		require.True(t, b.Allow(), "failure %d should not open the circuit", i+1)
		b.RecordFailure()
		assert.Equal(t, circuit.StateClosed, b.State())
	}

	require.True(t, b.Allow())
	b.RecordFailure() // fifth consecutive failure
	assert.Equal(t, circuit.StateOpen, b.State())
	assert.False(t, b.Allow(), "open circuit must reject without I/O")
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	b := circuit.New("push-android", circuit.WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	assert.Equal(t, circuit.StateClosed, b.State(),
		"non-consecutive failures must not open the circuit")
}

func TestBreakerHalfOpenAfterCooldown(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	b := circuit.New("push-web",
		circuit.WithFailureThreshold(1),
		circuit.WithResetTimeout(time.Minute),
		circuit.WithClock(clock.Now),
	)

	b.RecordFailure()
	require.Equal(t, circuit.StateOpen, b.State())
	require.False(t, b.Allow())

	clock.Advance(59 * time.Second)
	assert.False(t, b.Allow(), "cooldown not yet elapsed")

	clock.Advance(2 * time.Second)
	assert.True(t, b.Allow(), "cooldown elapsed, trial call admitted")
	assert.Equal(t, circuit.StateHalfOpen, b.State())
}

func TestBreakerHalfOpenFailureReopensAndRestartsCooldown(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	b := circuit.New("push-ios",
		circuit.WithFailureThreshold(1),
		circuit.WithResetTimeout(time.Minute),
		circuit.WithClock(clock.Now),
	)

	b.RecordFailure()
	clock.Advance(61 * time.Second)
	require.True(t, b.Allow())

	b.RecordFailure() // trial fails, reopen
	assert.Equal(t, circuit.StateOpen, b.State())

	clock.Advance(30 * time.Second)
	assert.False(t, b.Allow(), "cooldown restarted at reopen, not at first open")

	clock.Advance(31 * time.Second)
	assert.True(t, b.Allow())
}

func TestBreakerHalfOpenClosesAfterTrialQuota(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	b := circuit.New("push-ios",
		circuit.WithFailureThreshold(2),
		circuit.WithResetTimeout(time.Minute),
		circuit.WithHalfOpenTrials(3),
		circuit.WithClock(clock.Now),
	)

	b.RecordFailure()
	b.RecordFailure()
	require.Equal(t, circuit.StateOpen, b.State())

	clock.Advance(61 * time.Second)

	for i := 0; i < 3; i++ {
		require.True(t, b.Allow(), "trial %d admitted", i+1)
		b.RecordSuccess()
	}

	assert.Equal(t, circuit.StateClosed, b.State())
	assert.Equal(t, 0, b.Stats().ConsecutiveFailures, "closing must reset the failure counter")
}

func TestBreakerHalfOpenLimitsTrialCalls(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	b := circuit.New("sms-twilio",
		circuit.WithFailureThreshold(1),
		circuit.WithResetTimeout(time.Minute),
		circuit.WithHalfOpenTrials(2),
		circuit.WithClock(clock.Now),
	)

	b.RecordFailure()
	clock.Advance(61 * time.Second)

	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow(), "trial quota exhausted while outcomes pending")
}

func TestBreakerDo(t *testing.T) {
	t.Parallel()

	t.Run("passes through while closed", func(t *testing.T) {
		t.Parallel()

		b := circuit.New("email-postmark")
		called := false
		err := b.Do(context.Background(), func(ctx context.Context) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("returns ErrOpen without invoking fn", func(t *testing.T) {
		t.Parallel()

		b := circuit.New("email-postmark", circuit.WithFailureThreshold(1))
		b.RecordFailure()

		called := false
		err := b.Do(context.Background(), func(ctx context.Context) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, circuit.ErrOpen)
		assert.True(t, circuit.IsOpen(err))
		assert.False(t, called, "open circuit must not invoke the call")
	})

	t.Run("propagates fn error and records failure", func(t *testing.T) {
		t.Parallel()

		b := circuit.New("email-postmark", circuit.WithFailureThreshold(2))
		sentinel := errors.New("provider down")

		err := b.Do(context.Background(), func(ctx context.Context) error { return sentinel })
		require.ErrorIs(t, err, sentinel)

		_ = b.Do(context.Background(), func(ctx context.Context) error { return sentinel })
		assert.Equal(t, circuit.StateOpen, b.State())
	})
}

func TestBreakerConcurrentFailuresDoNotRaceThreshold(t *testing.T) {
	t.Parallel()

	b := circuit.New("push-ios", circuit.WithFailureThreshold(50))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordFailure()
		}()
	}
	wg.Wait()

	assert.Equal(t, circuit.StateOpen, b.State(),
		"exactly threshold failures across goroutines must open the circuit")
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("lazily creates independent breakers", func(t *testing.T) {
		t.Parallel()

		reg := circuit.NewRegistry(circuit.WithFailureThreshold(1))
		reg.Get("push-ios").RecordFailure()

		assert.Equal(t, circuit.StateOpen, reg.Get("push-ios").State())
		assert.Equal(t, circuit.StateClosed, reg.Get("push-android").State(),
			"circuits are tracked independently per name")
	})

	t.Run("same name returns same breaker", func(t *testing.T) {
		t.Parallel()

		reg := circuit.NewRegistry()
		assert.Same(t, reg.Get("push-web"), reg.Get("push-web"))
	})

	t.Run("reset closes everything", func(t *testing.T) {
		t.Parallel()

		reg := circuit.NewRegistry(circuit.WithFailureThreshold(1))
		reg.Get("a").RecordFailure()
		reg.Get("b").RecordFailure()
		reg.Reset()

		for name, stats := range reg.Stats() {
			assert.Equal(t, "closed", stats.State, "breaker %s", name)
		}
	})
}
