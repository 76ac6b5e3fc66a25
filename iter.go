// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package guarded

import (
	"context"
	"iter"
)

// All returns a live iterator over the List's elements.
//
// Each range statement starts a new cursor at index zero. Every step
// holds the lock only long enough to read a single element, so other
// goroutines may mutate the List between steps. As a consequence, an
// element may be skipped if an earlier element is removed, or seen
// twice if an element is inserted before the cursor. The iteration ends
// once the cursor reaches the List's length at the time of a step. Use
// [List.Values] for a consistent view.
//
// If the context is canceled while waiting for the lock, the error is
// yielded once and the iteration stops.
func (l *List[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for cursor := 0; ; cursor++ {
			v, ok, err := l.at(ctx, cursor)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Values returns an iterator over a snapshot of the List taken when the
// range statement begins. Later mutations are not observed.
func (l *List[T]) Values(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		items, err := l.Snapshot(ctx)
		if err != nil {
			var zero T
			yield(zero, err)
			return
		}
		for _, v := range items {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// at returns the element at the cursor, or false if the cursor is past
// the end of the List.
func (l *List[T]) at(ctx context.Context, cursor int) (v T, ok bool, err error) {
	if err := l.mon.Lock(ctx); err != nil {
		return v, false, err
	}
	defer l.mon.Unlock()
	if cursor >= len(l.st.items) {
		return v, false, nil
	}
	return l.st.items[cursor], true, nil
}
