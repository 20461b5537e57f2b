// Package observe provides a latest-value broadcast used for preference and
// screen state.
//
// A Value holds the current state and fans every Set out to subscribers.
// Subscribers always see the newest value: a slow reader skips intermediate
// values rather than blocking the publisher.
package observe

import (
	"context"
	"sync"
)

// Value is a goroutine-safe observable holding one T.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	version uint64
	subs    map[*subscriber[T]]struct{}
}

type subscriber[T any] struct {
	ch chan T
}

// New creates a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[*subscriber[T]]struct{}),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Version counts Set calls (tests).
func (v *Value[T]) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// Set replaces the current value and notifies every subscriber.
// Non-blocking: a subscriber that has not consumed its previous value has it
// replaced with this one.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = val
	v.version++
	for s := range v.subs {
		deliver(s.ch, val)
	}
}

// Update applies fn to the current value under the lock and publishes the
// result. Used for read-modify-write transitions.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = fn(v.current)
	v.version++
	for s := range v.subs {
		deliver(s.ch, v.current)
	}
	return v.current
}

// Subscribe returns a channel that first yields the current value and then
// every subsequent one. The channel is closed when ctx is done.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	s := &subscriber[T]{ch: make(chan T, 1)}

	v.mu.Lock()
	s.ch <- v.current
	v.subs[s] = struct{}{}
	v.mu.Unlock()

	out := make(chan T)
	go func() {
		defer close(out)
		defer func() {
			v.mu.Lock()
			delete(v.subs, s)
			v.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case val := <-s.ch:
				select {
				case out <- val:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// deliver puts val into a 1-slot channel, evicting a stale value if present.
// Caller holds the Value lock, so no other sender races for the slot.
func deliver[T any](ch chan T, val T) {
	select {
	case ch <- val:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- val
}
