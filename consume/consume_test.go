// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package consume

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"vawter.tech/guarded"
)

func TestForEachDrain(t *testing.T) {
	r := require.New(t)

	l := guarded.Of([]int{1, 2, 3, 4, 5, 6, 7, 8})

	var mu sync.Mutex
	var collected []int
	err := ForEach(t.Context(), l, 3, func(_ context.Context, _ int, v int) error {
		mu.Lock()
		defer mu.Unlock()
		collected = append(collected, v)
		return nil
	}, Drain())
	r.NoError(err)

	slices.Sort(collected)
	r.Equal([]int{1, 2, 3, 4, 5, 6, 7, 8}, collected)

	empty, err := l.IsEmpty(t.Context())
	r.NoError(err)
	r.True(empty)
}

func TestForEachProducerConsumer(t *testing.T) {
	r := require.New(t)

	const producers = 3
	const perProducer = 50
	const total = producers * perProducer

	l := guarded.New[string]()
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	var processed atomic.Int32
	seen := sync.Map{}
	done := make(chan error, 1)
	go func() {
		done <- ForEach(ctx, l, 2, func(_ context.Context, _ int, v string) error {
			if _, dup := seen.LoadOrStore(v, true); dup {
				return fmt.Errorf("duplicate %s", v)
			}
			processed.Add(1)
			return nil
		}, WithLogger(zaptest.NewLogger(t)))
	}()

	var wg conc.WaitGroup
	for p := range producers {
		wg.Go(func() {
			for i := range perProducer {
				item := fmt.Sprintf("P%d-%d", p, i)
				// Mix single appends with batches.
				if i%3 == 0 {
					if err := l.Batch(ctx, func(tx *guarded.Tx[string]) error {
						tx.Append(item)
						return nil
					}); err != nil {
						panic(err)
					}
				} else if err := l.Append(ctx, item); err != nil {
					panic(err)
				}
			}
		})
	}
	wg.Wait()

	r.Eventually(func() bool { return processed.Load() == total },
		5*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		r.NoError(err)
	case <-time.After(time.Second):
		r.Fail("workers did not exit on cancellation")
	}
}

func TestForEachCollectsErrors(t *testing.T) {
	r := require.New(t)

	l := guarded.Of([]int{1, 2, 3, 4})
	boom := errors.New("boom")
	var calls atomic.Int32
	err := ForEach(t.Context(), l, 2, func(_ context.Context, _ int, v int) error {
		calls.Add(1)
		if v%2 == 0 {
			return boom
		}
		return nil
	}, Drain())
	r.ErrorIs(err, boom)
	r.ErrorContains(err, "worker ")
	r.Equal(int32(4), calls.Load())
}

func TestForEachStopOnError(t *testing.T) {
	r := require.New(t)

	l := guarded.New[int]()
	boom := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- ForEach(t.Context(), l, 4, func(context.Context, int, int) error {
			return boom
		}, StopOnError())
	}()

	r.NoError(l.Append(t.Context(), 1))
	select {
	case err := <-done:
		r.ErrorIs(err, boom)
	case <-time.After(time.Second):
		r.Fail("StopOnError did not cancel the other workers")
	}
}

func TestForEachPanic(t *testing.T) {
	r := require.New(t)

	l := guarded.Of([]int{1})
	err := ForEach(t.Context(), l, 1, func(context.Context, int, int) error {
		panic("yikes")
	}, Drain())
	var recovered *guarded.RecoveredError
	r.ErrorAs(err, &recovered)
}

func TestForEachWorkerIDs(t *testing.T) {
	r := require.New(t)

	const workers = 4
	l := guarded.Of(make([]int, 100))
	var mu sync.Mutex
	ids := make(map[int]bool)
	r.NoError(ForEach(t.Context(), l, workers, func(_ context.Context, worker int, _ int) error {
		mu.Lock()
		defer mu.Unlock()
		ids[worker] = true
		return nil
	}, Drain()))
	for id := range ids {
		r.GreaterOrEqual(id, 0)
		r.Less(id, workers)
	}
}

func TestForEachPanicsOnZeroWorkers(t *testing.T) {
	require.Panics(t, func() {
		_ = ForEach(t.Context(), guarded.New[int](), 0,
			func(context.Context, int, int) error { return nil })
	})
}
