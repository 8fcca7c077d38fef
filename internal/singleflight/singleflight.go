// Package singleflight coalesces concurrent calls for the same key so the
// underlying work runs at most once per in-flight episode.
package singleflight

import (
	"context"
	"sync"
)

// Group coalesces concurrent function calls for the same key K so that
// the supplied fn is executed at most once. Other concurrent callers
// wait for the shared result.
//
// Concurrency notes:
//   - The first caller for a given key becomes the leader and runs fn.
//   - Followers wait on c.done. Publishing (val, err) happens-before
//     close(c.done), so reads after <-done observe the final values.
//   - Cancelling ctx in a follower unblocks only that follower; it does
//     NOT cancel the leader's fn. If you need cancellation of the work,
//     pass ctx into fn and handle it there.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error
}

// Do runs fn once for the given key. Concurrent calls with the same key
// wait for the shared result. The returned shared flag is false for the
// leader that actually ran fn and true for every follower that joined an
// existing flight.
//
// Important:
//   - ctx cancellation does not stop the leader's fn. If cancellation of
//     the underlying work is required, thread ctx into fn and handle it there.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, shared bool, err error) {
	// Check-and-register must be a single critical section: either we find an
	// in-flight call and join it, or we register ourselves as its leader.
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		done := c.done
		g.mu.Unlock()

		select {
		case <-done:
			return c.val, true, c.err
		case <-ctx.Done():
			var zero V
			return zero, true, ctx.Err()
		}
	}

	// We are the leader for this key.
	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	// Execute fn outside the lock.
	v, err = fn()

	// Publish result and wake followers.
	c.val, c.err = v, err
	close(c.done)

	// Remove the in-flight marker.
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()

	return v, false, err
}

// Len reports the number of keys with an in-flight call.
func (g *Group[K, V]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
