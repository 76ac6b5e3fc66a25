// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package guarded

import (
	"context"
	"errors"
	"runtime/trace"
	"slices"
	"sync/atomic"

	"go.uber.org/zap"
	"vawter.tech/guarded/internal/safe"
)

// A Tx provides direct access to a [List]'s storage for the duration of
// a [List.Batch] or [List.View] callback. Its methods do not lock and do
// not individually signal changes.
//
// A Tx must not be retained or used once the callback has returned;
// doing so panics with [ErrTxClosed]. Calling a mutating method on the
// Tx passed to [List.View] panics with [ErrTxReadOnly].
type Tx[T comparable] struct {
	closed   atomic.Bool
	readOnly bool
	st       *store[T]
}

func (tx *Tx[T]) check() {
	if tx.closed.Load() {
		panic(ErrTxClosed)
	}
}

func (tx *Tx[T]) checkMutable() {
	tx.check()
	if tx.readOnly {
		panic(ErrTxReadOnly)
	}
}

// Snapshot returns a copy of the List's elements. The copy may be
// retained after the callback returns.
func (tx *Tx[T]) Snapshot() []T {
	tx.check()
	return slices.Clone(tx.st.items)
}

// Replace substitutes the List's contents. The List takes ownership of
// the slice.
func (tx *Tx[T]) Replace(items []T) {
	tx.checkMutable()
	tx.st.items = items
}

// Update replaces the List's contents with the result of the function,
// which receives the current storage. This allows slices package
// functions to be applied in place:
//
//	tx.Update(func(items []int) []int {
//	    return slices.Compact(items)
//	})
//
// The function must not retain the slice it receives.
func (tx *Tx[T]) Update(fn func([]T) []T) {
	tx.checkMutable()
	tx.st.items = fn(tx.st.items)
}

// Append adds values to the end of the List.
func (tx *Tx[T]) Append(vs ...T) {
	tx.checkMutable()
	tx.st.items = append(tx.st.items, vs...)
}

// Insert places values before the index, clamping it to the List's
// bounds. See [List.Insert].
func (tx *Tx[T]) Insert(idx int, vs ...T) {
	tx.checkMutable()
	tx.st.insert(idx, vs...)
}

// Get returns the element at the index.
func (tx *Tx[T]) Get(idx int) (T, error) {
	tx.check()
	return tx.st.get(idx)
}

// Set replaces the element at the index.
func (tx *Tx[T]) Set(idx int, v T) error {
	tx.checkMutable()
	return tx.st.set(idx, v)
}

// Pop removes and returns the last element.
func (tx *Tx[T]) Pop() (T, error) {
	tx.checkMutable()
	return tx.st.popAt("pop", len(tx.st.items)-1)
}

// PopAt removes and returns the element at the index.
func (tx *Tx[T]) PopAt(idx int) (T, error) {
	tx.checkMutable()
	return tx.st.popAt("pop", idx)
}

// Remove deletes the first element equal to the value.
func (tx *Tx[T]) Remove(v T) error {
	tx.checkMutable()
	return tx.st.remove(v)
}

// Index returns the position of the first element equal to the value.
func (tx *Tx[T]) Index(v T) (int, error) {
	tx.check()
	return tx.st.index(v)
}

// Len returns the number of elements.
func (tx *Tx[T]) Len() int {
	tx.check()
	return len(tx.st.items)
}

// Clear removes all elements.
func (tx *Tx[T]) Clear() {
	tx.checkMutable()
	tx.st.clear()
}

// Batch executes the callback while holding the List's lock, allowing
// any number of operations to be performed with a single lock
// acquisition. No change is signaled for individual operations within
// the callback; instead, exactly one change is signaled when the
// callback exits, whether it returns normally, returns an error, or
// panics. The lock is always released before Batch returns.
//
// An error returned by the callback is returned from Batch. A panic is
// recovered and returned as a [RecoveredError].
//
// The callback must not call other methods on the same List, since the
// lock is not reentrant.
func (l *List[T]) Batch(ctx context.Context, fn func(tx *Tx[T]) error) error {
	return l.scope(ctx, false, fn)
}

// View executes the callback while holding the List's lock, providing a
// read-only [Tx]. No change is signaled. The same reentrancy and panic
// rules as [List.Batch] apply.
func (l *List[T]) View(ctx context.Context, fn func(tx *Tx[T]) error) error {
	return l.scope(ctx, true, fn)
}

func (l *List[T]) scope(ctx context.Context, readOnly bool, fn func(tx *Tx[T]) error) error {
	if err := l.mon.Lock(ctx); err != nil {
		return err
	}
	defer trace.StartRegion(ctx, "guarded batch").End()

	tx := &Tx[T]{readOnly: readOnly, st: &l.st}
	defer func() {
		tx.closed.Store(true)
		if !readOnly {
			l.mon.BroadcastLocked()
		}
		l.mon.Unlock()
	}()

	err := safe.Call(func() error { return fn(tx) })
	if err == nil {
		return nil
	}
	var recovered *RecoveredError
	if errors.As(err, &recovered) {
		l.cfg.logger.Warn("recovered panic in batch",
			zap.String("list", l.cfg.name),
			zap.Bool("readOnly", readOnly),
			zap.Error(recovered.Err))
	} else {
		l.cfg.logger.Debug("batch failed",
			zap.String("list", l.cfg.name),
			zap.Bool("readOnly", readOnly),
			zap.Error(err))
	}
	return err
}
