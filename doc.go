// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package guarded provides an ordered collection that many goroutines
// may read and write without external locking.
//
// A [List] wraps a slice with a single lock. Every method acquires the
// lock for its entire duration, so each operation appears to take
// effect atomically and no update is lost, regardless of the number of
// concurrent callers.
//
//	l := guarded.New[string]()
//	if err := l.Append(ctx, "alpha"); err != nil {
//	    return err
//	}
//	v, err := l.Get(ctx, 0)
//
// # Contexts and the lock
//
// Each method accepts a [context.Context] that bounds the time spent
// waiting for the lock. The lock is implemented as a single-slot
// channel rather than a [sync.Mutex], so a goroutine blocked behind a
// long [List.Batch] can give up when its context is canceled.
//
// # Errors
//
// Index-based operations fail with an [*IndexError] that wraps
// [ErrOutOfRange]; bounds are checked under the lock, so the error
// reflects the state of the List when the operation executed.
// Value-based operations fail with [ErrNotFound]. Use [errors.Is] to
// test for either. [List.Slice] never fails on bounds: it clips them.
//
// # Waiting for changes
//
// [List.WaitForChange] blocks until another goroutine mutates the List,
// or until an optional timeout elapses. A timeout is reported by a
// false return value, not an error. Every mutation wakes every waiter,
// and a waiter only ever learns that something changed after it began
// waiting: it must re-examine the List to learn what.
//
//	for {
//	    empty, err := l.IsEmpty(ctx)
//	    if err != nil || !empty {
//	        break
//	    }
//	    if _, err := l.WaitForChange(ctx, time.Second); err != nil {
//	        return err
//	    }
//	}
//
// [List.Changed] exposes the same signal as a channel for use in a
// select statement, and [List.Take] combines the loop above with a pop
// of the first element.
//
// # Iteration
//
// [List.All] returns a live [iter.Seq2] that re-reads the List at each
// step, holding the lock only for a single element. Concurrent
// mutation may therefore cause elements to be skipped or repeated.
// [List.Values] iterates over a snapshot instead.
//
//	for v, err := range l.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    process(v)
//	}
//
// # Batches
//
// [List.Batch] holds the lock across an arbitrary callback and passes
// it a [Tx] that operates on the raw storage. A batch signals exactly one
// change when it exits, however many mutations it performed. The [Tx]
// is invalidated when the callback returns; using it afterwards panics
// with [ErrTxClosed].
//
//	err := l.Batch(ctx, func(tx *guarded.Tx[int]) error {
//	    tx.Append(4, 5, 6)
//	    tx.Update(func(items []int) []int {
//	        slices.Reverse(items)
//	        return items
//	    })
//	    return nil
//	})
//
// # Tracing
//
// Contended lock acquisitions, change waits, and batches are annotated
// with [runtime/trace.StartRegion], making lock contention visible in
// Go execution traces.
//
// # Sub-packages
//
// The [vawter.tech/guarded/watch] sub-package runs a callback each time
// a List changes, optionally coalescing bursts of changes with a rate
// limit. The [vawter.tech/guarded/consume] sub-package processes the
// elements of a List with a bounded pool of workers, in the style of a
// producer/consumer queue.
package guarded
