// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package guarded

import (
	"context"
	"time"
)

// WaitForChange blocks until another goroutine mutates the List. It
// returns true if a mutation completed after the call began, or false
// if the timeout elapsed first. A non-positive timeout waits
// indefinitely. Mutations that completed before the call are never
// reported; callers should re-check their condition before waiting.
//
// An elapsed timeout is not an error. The returned error is non-nil
// only if the context is canceled, in which case the waiter is
// deregistered without requiring any further mutation.
//
// All goroutines blocked in WaitForChange are woken by a single
// mutation, and a [List.Batch] wakes them at most once.
func (l *List[T]) WaitForChange(ctx context.Context, timeout time.Duration) (bool, error) {
	return l.mon.Wait(ctx, timeout)
}

// Changed returns a channel that will be closed by the next mutation of
// the List. It is the select-friendly form of [List.WaitForChange]:
//
//	ch, err := list.Changed(ctx)
//	if err != nil {
//	    return err
//	}
//	select {
//	case <-ch:
//	    // Re-examine the list.
//	case <-other:
//	}
func (l *List[T]) Changed(ctx context.Context) (<-chan struct{}, error) {
	return l.mon.Changed(ctx)
}

// Waiters returns the number of goroutines currently blocked in
// [List.WaitForChange] or [List.Take]. It is intended for tests and
// diagnostics.
func (l *List[T]) Waiters() int {
	return l.mon.Waiters()
}

// Version returns the number of changes signaled so far. Two equal
// values bracket a period in which the List did not change, and a
// [List.Batch] advances the version exactly once.
func (l *List[T]) Version(ctx context.Context) (uint64, error) {
	if err := l.mon.Lock(ctx); err != nil {
		return 0, err
	}
	defer l.mon.Unlock()
	return l.mon.VersionLocked(), nil
}
