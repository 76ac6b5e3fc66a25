// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package guarded

import (
	"errors"
	"fmt"

	"vawter.tech/guarded/internal/safe"
)

var (
	// ErrOutOfRange is returned, wrapped in an [IndexError], when an
	// index is not within the bounds of the list at the moment the
	// operation executes.
	ErrOutOfRange = errors.New("index out of range")

	// ErrNotFound is returned by value-based lookups when no element
	// compares equal to the requested value.
	ErrNotFound = errors.New("value not found")

	// ErrTxClosed is the panic value raised when a [Tx] is used after
	// its enclosing [List.Batch] or [List.View] has returned.
	ErrTxClosed = errors.New("guarded: transaction used outside of its scope")

	// ErrTxReadOnly is the panic value raised when a mutating method is
	// called on the [Tx] passed to [List.View].
	ErrTxReadOnly = errors.New("guarded: mutation in read-only transaction")
)

// A RecoveredError is returned by [List.Batch] or [List.View] when the
// callback panics.
type RecoveredError = safe.RecoveredError

// An IndexError reports the index and length observed by an operation
// that failed with [ErrOutOfRange].
type IndexError struct {
	Op    string
	Index int
	Len   int
}

// Error implements error.
func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0:%d)", e.Op, e.Index, e.Len)
}

// Unwrap returns [ErrOutOfRange].
func (e *IndexError) Unwrap() error { return ErrOutOfRange }

func notFound[T any](op string, v T) error {
	return fmt.Errorf("%s %v: %w", op, v, ErrNotFound)
}
