// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package guarded

import "slices"

// store holds the raw sequence. None of its methods synchronize; they
// are shared by the locked List methods and by Tx.
type store[T comparable] struct {
	items []T
}

func (s *store[T]) checkIndex(op string, idx int) error {
	if idx < 0 || idx >= len(s.items) {
		return &IndexError{Op: op, Index: idx, Len: len(s.items)}
	}
	return nil
}

func (s *store[T]) get(idx int) (T, error) {
	if err := s.checkIndex("get", idx); err != nil {
		var zero T
		return zero, err
	}
	return s.items[idx], nil
}

func (s *store[T]) set(idx int, v T) error {
	if err := s.checkIndex("set", idx); err != nil {
		return err
	}
	s.items[idx] = v
	return nil
}

// insert clamps idx into [0, len], so that out-of-range positions
// insert at the nearest end.
func (s *store[T]) insert(idx int, vs ...T) {
	idx = max(0, min(idx, len(s.items)))
	s.items = slices.Insert(s.items, idx, vs...)
}

func (s *store[T]) popAt(op string, idx int) (T, error) {
	var zero T
	if err := s.checkIndex(op, idx); err != nil {
		return zero, err
	}
	ret := s.items[idx]
	s.items = slices.Delete(s.items, idx, idx+1)
	return ret, nil
}

func (s *store[T]) remove(v T) error {
	idx := slices.Index(s.items, v)
	if idx < 0 {
		return notFound("remove", v)
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	return nil
}

func (s *store[T]) removeAll(v T) int {
	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(e T) bool { return e == v })
	return before - len(s.items)
}

func (s *store[T]) index(v T) (int, error) {
	idx := slices.Index(s.items, v)
	if idx < 0 {
		return -1, notFound("index", v)
	}
	return idx, nil
}

// bounds clips a half-open window into the current length.
func (s *store[T]) bounds(start, end int) (int, int) {
	start = min(max(start, 0), len(s.items))
	end = min(max(end, start), len(s.items))
	return start, end
}

func (s *store[T]) clear() bool {
	if len(s.items) == 0 {
		return false
	}
	// Release references held by the backing array.
	clear(s.items)
	s.items = s.items[:0]
	return true
}
