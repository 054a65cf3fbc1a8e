package async

import (
	"context"
	"fmt"
)

// Future holds the eventual outcome of a function started with Go.
type Future[T any] struct {
	value T
	err   error
	done  chan struct{}
}

// Go runs fn in its own goroutine and returns a Future for its outcome. A
// panic inside fn is recovered and surfaced as an error wrapping ErrPanicked,
// so one misbehaving channel adapter can never take down the whole fan-out.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrPanicked, r)
			}
		}()

		f.value, f.err = fn(ctx)
	}()

	return f
}

// Await blocks until the future's function has returned.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// Result pairs a future's value with the error produced alongside it.
type Result[T any] struct {
	Value T
	Err   error
}

// JoinAll waits for every future to complete and returns all outcomes in
// input order. Unlike first-error joins, it never discards a result: callers
// inspect each Result's Err individually.
func JoinAll[T any](futures ...*Future[T]) []Result[T] {
	results := make([]Result[T], len(futures))
	for i, f := range futures {
		results[i].Value, results[i].Err = f.Await()
	}
	return results
}
