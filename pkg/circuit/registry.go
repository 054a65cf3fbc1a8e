package circuit

import (
	"context"
	"sync"
)

// Registry owns the process-wide set of named breakers. Breakers are created
// lazily on first use with the registry's default options and are never
// explicitly destroyed. Construct one Registry per process and inject it into
// every outbound integration that needs failure isolation.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	defaults []Option
}

// NewRegistry creates an empty registry. The given options become the
// defaults applied to every breaker the registry creates.
func NewRegistry(defaults ...Option) *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
		defaults: defaults,
	}
}

// Get returns the breaker registered under name, creating it on first use.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[name]
	if !ok {
		b = New(name, r.defaults...)
		r.breakers[name] = b
	}
	return b
}

// Do runs fn through the named breaker, creating it on first use.
func (r *Registry) Do(ctx context.Context, name string, fn func(context.Context) error) error {
	return r.Get(name).Do(ctx, fn)
}

// Stats returns a snapshot of every registered breaker, keyed by name.
func (r *Registry) Stats() map[string]Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Stats, len(r.breakers))
	for name, b := range r.breakers {
		out[name] = b.Stats()
	}
	return out
}

// Reset resets every registered breaker to closed. Intended for tests; a
// production registry is never reset during the process lifetime.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.breakers {
		b.Reset()
	}
}
