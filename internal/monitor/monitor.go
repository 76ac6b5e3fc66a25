// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package monitor pairs a context-aware lock with a broadcast change
// signal.
//
// The lock is a single-slot token channel, so that an acquirer can
// abandon the wait when its context is canceled. The change signal is a
// generation channel that is closed and replaced on every broadcast,
// which wakes any number of waiters in constant time.
package monitor

import (
	"context"
	"runtime/trace"
	"sync/atomic"
	"time"
)

// A Monitor guards some external state. The zero value is not usable;
// construct instances with [New].
type Monitor struct {
	token   chan struct{} // Holding a token is holding the lock.
	waiters atomic.Int64

	mu struct { // Guarded by token.
		changed chan struct{} // Closed by BroadcastLocked.
		version uint64
	}
}

// New constructs an unlocked Monitor.
func New() *Monitor {
	m := &Monitor{token: make(chan struct{}, 1)}
	m.mu.changed = make(chan struct{})
	return m
}

// Lock acquires the Monitor, blocking until the lock is available or
// the context is canceled.
func (m *Monitor) Lock(ctx context.Context) error {
	// Fast-path: uncontended.
	select {
	case m.token <- struct{}{}:
		return nil
	default:
	}

	defer trace.StartRegion(ctx, "guarded lock wait").End()

	select {
	case m.token <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryLock acquires the Monitor only if it is immediately available.
func (m *Monitor) TryLock() bool {
	select {
	case m.token <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock releases the Monitor. It panics if the Monitor is not locked.
func (m *Monitor) Unlock() {
	select {
	case <-m.token:
	default:
		// Implementation error, not user problem.
		panic("monitor: unlock of unlocked monitor")
	}
}

// BroadcastLocked wakes every goroutine waiting on the current
// generation channel. The caller must hold the lock.
func (m *Monitor) BroadcastLocked() {
	close(m.mu.changed)
	m.mu.changed = make(chan struct{})
	m.mu.version++
}

// ChangedLocked returns a channel that will be closed by the next call
// to [Monitor.BroadcastLocked]. The caller must hold the lock.
func (m *Monitor) ChangedLocked() <-chan struct{} {
	return m.mu.changed
}

// VersionLocked returns the number of broadcasts performed so far. The
// caller must hold the lock.
func (m *Monitor) VersionLocked() uint64 {
	return m.mu.version
}

// Changed acquires the lock long enough to capture the current
// generation channel.
func (m *Monitor) Changed(ctx context.Context) (<-chan struct{}, error) {
	if err := m.Lock(ctx); err != nil {
		return nil, err
	}
	defer m.Unlock()
	return m.mu.changed, nil
}

// Wait blocks until a broadcast occurs after Wait was called. It returns
// false if the timeout elapsed first; a non-positive timeout never
// elapses. The returned error is non-nil only if the context was
// canceled.
func (m *Monitor) Wait(ctx context.Context, timeout time.Duration) (bool, error) {
	ch, err := m.Changed(ctx)
	if err != nil {
		return false, err
	}
	return m.Await(ctx, ch, timeout)
}

// Await blocks on a channel previously returned by [Monitor.Changed]
// or [Monitor.ChangedLocked]. The lock must not be held by the caller.
func (m *Monitor) Await(ctx context.Context, ch <-chan struct{}, timeout time.Duration) (bool, error) {
	// Fast-path: already signaled.
	select {
	case <-ch:
		return true, nil
	default:
	}

	m.waiters.Add(1)
	defer m.waiters.Add(-1)
	defer trace.StartRegion(ctx, "guarded change wait").End()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-ch:
		return true, nil
	case <-expired:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Waiters returns the number of goroutines currently blocked in
// [Monitor.Await].
func (m *Monitor) Waiters() int {
	return int(m.waiters.Load())
}
