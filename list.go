// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package guarded

import (
	"context"
	"fmt"
	"slices"

	"vawter.tech/guarded/internal/monitor"
)

// A List is an ordered sequence that may be shared between goroutines
// without external locking.
//
// Every method acquires the List's lock for its entire duration. The
// context argument bounds only the time spent waiting for the lock (or,
// for [List.Take] and [List.WaitForChange], for a change); if it is
// canceled first, the method returns the context's error and the List
// is left untouched. Methods that mutate the List wake all goroutines
// blocked in [List.WaitForChange], [List.Changed], or [List.Take].
//
// Index-based methods fail with an [*IndexError] wrapping
// [ErrOutOfRange] when the index is invalid at the moment the operation
// executes. Negative indexes are always invalid. Value-based methods
// fail with [ErrNotFound].
//
// A List must be created with [New] or [Of] and must not be copied.
type List[T comparable] struct {
	cfg config
	mon *monitor.Monitor
	st  store[T] // Guarded by mon.
}

// New returns an empty List.
func New[T comparable](opts ...Option) *List[T] {
	return Of[T](nil, opts...)
}

// Of returns a List containing a copy of the initial elements.
func Of[T comparable](initial []T, opts ...Option) *List[T] {
	l := &List[T]{mon: monitor.New()}
	for _, opt := range opts {
		opt(&l.cfg)
	}
	l.cfg.sanitize()
	l.st.items = make([]T, len(initial), max(len(initial), l.cfg.capacity))
	copy(l.st.items, initial)
	return l
}

// read executes the callback while holding the lock.
func read[T comparable, R any](
	ctx context.Context, l *List[T], fn func(s *store[T]) (R, error),
) (R, error) {
	if err := l.mon.Lock(ctx); err != nil {
		var zero R
		return zero, err
	}
	defer l.mon.Unlock()
	return fn(&l.st)
}

// write executes the callback while holding the lock and broadcasts a
// change if the callback reports that it mutated the store.
func write[T comparable, R any](
	ctx context.Context, l *List[T], fn func(s *store[T]) (R, bool, error),
) (R, error) {
	if err := l.mon.Lock(ctx); err != nil {
		var zero R
		return zero, err
	}
	defer l.mon.Unlock()
	ret, changed, err := fn(&l.st)
	if changed {
		l.mon.BroadcastLocked()
	}
	return ret, err
}

// Append adds the value to the end of the List.
func (l *List[T]) Append(ctx context.Context, v T) error {
	_, err := write(ctx, l, func(s *store[T]) (struct{}, bool, error) {
		s.items = append(s.items, v)
		return struct{}{}, true, nil
	})
	return err
}

// Extend adds the values to the end of the List in a single operation.
func (l *List[T]) Extend(ctx context.Context, vs ...T) error {
	_, err := write(ctx, l, func(s *store[T]) (struct{}, bool, error) {
		s.items = append(s.items, vs...)
		return struct{}{}, len(vs) > 0, nil
	})
	return err
}

// Insert places the value before the given index, shifting later
// elements. An index beyond the end of the List appends the value, and
// a negative index inserts at the front. Insert fails only if the lock
// cannot be acquired.
func (l *List[T]) Insert(ctx context.Context, idx int, v T) error {
	_, err := write(ctx, l, func(s *store[T]) (struct{}, bool, error) {
		s.insert(idx, v)
		return struct{}{}, true, nil
	})
	return err
}

// Get returns the element at the index.
func (l *List[T]) Get(ctx context.Context, idx int) (T, error) {
	return read(ctx, l, func(s *store[T]) (T, error) {
		return s.get(idx)
	})
}

// Set replaces the element at the index.
func (l *List[T]) Set(ctx context.Context, idx int, v T) error {
	_, err := write(ctx, l, func(s *store[T]) (struct{}, bool, error) {
		err := s.set(idx, v)
		return struct{}{}, err == nil, err
	})
	return err
}

// Pop removes and returns the last element.
func (l *List[T]) Pop(ctx context.Context) (T, error) {
	return write(ctx, l, func(s *store[T]) (T, bool, error) {
		v, err := s.popAt("pop", len(s.items)-1)
		return v, err == nil, err
	})
}

// PopAt removes and returns the element at the index.
func (l *List[T]) PopAt(ctx context.Context, idx int) (T, error) {
	return write(ctx, l, func(s *store[T]) (T, bool, error) {
		v, err := s.popAt("pop", idx)
		return v, err == nil, err
	})
}

// Take removes and returns the first element. If the List is empty, Take
// blocks until another goroutine adds an element or the context is
// canceled. Concurrent callers of Take each receive distinct elements.
func (l *List[T]) Take(ctx context.Context) (T, error) {
	var zero T
	for {
		if err := l.mon.Lock(ctx); err != nil {
			return zero, err
		}
		if len(l.st.items) > 0 {
			v, _ := l.st.popAt("take", 0)
			l.mon.BroadcastLocked()
			l.mon.Unlock()
			return v, nil
		}
		ch := l.mon.ChangedLocked()
		l.mon.Unlock()

		if _, err := l.mon.Await(ctx, ch, 0); err != nil {
			return zero, err
		}
	}
}

// Remove deletes the first element equal to the value.
func (l *List[T]) Remove(ctx context.Context, v T) error {
	_, err := write(ctx, l, func(s *store[T]) (struct{}, bool, error) {
		err := s.remove(v)
		return struct{}{}, err == nil, err
	})
	return err
}

// RemoveAll deletes every element equal to the value and returns the
// number of elements removed.
func (l *List[T]) RemoveAll(ctx context.Context, v T) (int, error) {
	return write(ctx, l, func(s *store[T]) (int, bool, error) {
		n := s.removeAll(v)
		return n, n > 0, nil
	})
}

// Clear removes all elements.
func (l *List[T]) Clear(ctx context.Context) error {
	_, err := write(ctx, l, func(s *store[T]) (struct{}, bool, error) {
		return struct{}{}, s.clear(), nil
	})
	return err
}

// Reverse reverses the order of the elements in place.
func (l *List[T]) Reverse(ctx context.Context) error {
	_, err := write(ctx, l, func(s *store[T]) (struct{}, bool, error) {
		slices.Reverse(s.items)
		return struct{}{}, len(s.items) > 1, nil
	})
	return err
}

// SortFunc sorts the elements in place using a stable sort. See
// [slices.SortStableFunc] for the requirements on cmp.
func (l *List[T]) SortFunc(ctx context.Context, cmp func(a, b T) int) error {
	_, err := write(ctx, l, func(s *store[T]) (struct{}, bool, error) {
		slices.SortStableFunc(s.items, cmp)
		return struct{}{}, len(s.items) > 1, nil
	})
	return err
}

// Index returns the position of the first element equal to the value.
func (l *List[T]) Index(ctx context.Context, v T) (int, error) {
	return read(ctx, l, func(s *store[T]) (int, error) {
		return s.index(v)
	})
}

// IndexIn returns the position of the first element equal to the value
// within the half-open window [start, end). The window is clipped to
// the current bounds in the same manner as [List.Slice].
func (l *List[T]) IndexIn(ctx context.Context, v T, start, end int) (int, error) {
	return read(ctx, l, func(s *store[T]) (int, error) {
		start, end := s.bounds(start, end)
		if idx := slices.Index(s.items[start:end], v); idx >= 0 {
			return start + idx, nil
		}
		return -1, notFound("index", v)
	})
}

// Count returns the number of elements equal to the value.
func (l *List[T]) Count(ctx context.Context, v T) (int, error) {
	return read(ctx, l, func(s *store[T]) (int, error) {
		n := 0
		for _, e := range s.items {
			if e == v {
				n++
			}
		}
		return n, nil
	})
}

// Contains reports whether any element is equal to the value.
func (l *List[T]) Contains(ctx context.Context, v T) (bool, error) {
	return read(ctx, l, func(s *store[T]) (bool, error) {
		return slices.Contains(s.items, v), nil
	})
}

// Len returns the number of elements.
func (l *List[T]) Len(ctx context.Context) (int, error) {
	return read(ctx, l, func(s *store[T]) (int, error) {
		return len(s.items), nil
	})
}

// IsEmpty reports whether the List has no elements.
func (l *List[T]) IsEmpty(ctx context.Context) (bool, error) {
	return read(ctx, l, func(s *store[T]) (bool, error) {
		return len(s.items) == 0, nil
	})
}

// Slice returns a copy of the elements in the half-open range
// [start, end). Out-of-range bounds are clipped rather than reported:
// both bounds are clamped into [0, length] and an end before start
// yields an empty slice.
func (l *List[T]) Slice(ctx context.Context, start, end int) ([]T, error) {
	return read(ctx, l, func(s *store[T]) ([]T, error) {
		start, end := s.bounds(start, end)
		return slices.Clone(s.items[start:end]), nil
	})
}

// Snapshot returns a copy of all elements.
func (l *List[T]) Snapshot(ctx context.Context) ([]T, error) {
	return read(ctx, l, func(s *store[T]) ([]T, error) {
		return slices.Clone(s.items), nil
	})
}

// String is for debugging use only. It never blocks; if the lock is
// held elsewhere, the contents are not reported.
func (l *List[T]) String() string {
	if !l.mon.TryLock() {
		return fmt.Sprintf("%s(locked)", l.cfg.name)
	}
	defer l.mon.Unlock()
	return fmt.Sprintf("%s%v", l.cfg.name, l.st.items)
}
