package client

import "sync"

// Optimistic tracks one tentative change. Capture the state before the
// change, Apply the tentative state, then either Commit or Revert. Only the
// first Commit or Revert has an effect.
type Optimistic[T any] struct {
	mu       sync.Mutex
	snapshot T
	restore  func(T)
	settled  bool
}

// Capture records snapshot and the function that puts it back.
func Capture[T any](snapshot T, restore func(T)) *Optimistic[T] {
	return &Optimistic[T]{snapshot: snapshot, restore: restore}
}

// Snapshot returns the captured state.
func (o *Optimistic[T]) Snapshot() T {
	return o.snapshot
}

// Apply runs the tentative writes. fn must not modify the snapshot in place.
func (o *Optimistic[T]) Apply(fn func(snapshot T)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.settled {
		return
	}
	fn(o.snapshot)
}

func (o *Optimistic[T]) Commit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settled = true
}

// Revert restores the exact snapshot.
func (o *Optimistic[T]) Revert() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.settled {
		return
	}
	o.settled = true
	if o.restore != nil {
		o.restore(o.snapshot)
	}
}
