package gateway

import (
	"context"
	"sync"
)

// State is the lifecycle state of a Cell.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// LoadFunc produces the value held by a Cell.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// flight is one execution of the load function.
type flight[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Cell memoizes the result of a load with single-flight semantics: concurrent
// callers share one in-flight load. A ready value is kept for the life of the
// Cell. A failure is returned to every caller waiting on that load; the next
// Get after a failure starts a new one.
type Cell[T any] struct {
	load LoadFunc[T]

	mu     sync.Mutex
	state  State
	flight *flight[T]
}

// NewCell creates an uninitialized Cell.
func NewCell[T any](load LoadFunc[T]) *Cell[T] {
	return &Cell[T]{load: load}
}

// Get returns the memoized value, loading it if needed. The load itself is
// not cancelled when ctx is; ctx only bounds how long this caller waits.
func (c *Cell[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()
	f := c.flight
	switch c.state {
	case StateReady:
		c.mu.Unlock()
		return f.val, nil
	case StateUninitialized, StateFailed:
		f = &flight[T]{done: make(chan struct{})}
		c.flight = f
		c.state = StateLoading
		go c.run(context.WithoutCancel(ctx), f)
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// State reports the current state.
func (c *Cell[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Cell[T]) run(ctx context.Context, f *flight[T]) {
	f.val, f.err = c.load(ctx)

	c.mu.Lock()
	if f.err != nil {
		c.state = StateFailed
	} else {
		c.state = StateReady
	}
	c.mu.Unlock()
	close(f.done)
}
