// Package singleflight coalesces concurrent calls that share a key into
// one execution. Waiters attach to the in-flight call's outcome instead
// of launching their own; this caps amplification against rate-limited
// upstreams and is part of the routing engine's correctness contract.
package singleflight

import (
	"context"
	"sync"
)

// call is one in-flight execution shared between callers.
type call[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Group deduplicates executions by key. The zero value is not usable;
// call NewGroup.
type Group[T any] struct {
	mu    sync.Mutex
	calls map[string]*call[T]
}

// NewGroup returns an empty group.
func NewGroup[T any]() *Group[T] {
	return &Group[T]{calls: make(map[string]*call[T])}
}

// Do executes fn for key, or attaches to an execution already in flight.
// The owner runs fn to completion regardless of its own context; waiters
// honor ctx and may abandon the wait without affecting the owner. shared
// reports whether the result came from another caller's execution.
func (g *Group[T]) Do(ctx context.Context, key string, fn func() (T, error)) (value T, shared bool, err error) {
	g.mu.Lock()
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.value, true, c.err
		case <-ctx.Done():
			var zero T
			return zero, true, ctx.Err()
		}
	}

	c := &call[T]{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.value, c.err = fn()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
	close(c.done)

	return c.value, false, c.err
}

// InFlight reports whether key currently has an execution in flight.
func (g *Group[T]) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.calls[key]
	return ok
}
