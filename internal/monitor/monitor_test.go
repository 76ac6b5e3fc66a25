// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockUnlock(t *testing.T) {
	r := require.New(t)

	m := New()
	r.NoError(m.Lock(t.Context()))
	r.False(m.TryLock())
	m.Unlock()
	r.True(m.TryLock())
	m.Unlock()

	r.Panics(func() { m.Unlock() })
}

func TestLockCanceled(t *testing.T) {
	r := require.New(t)

	m := New()
	r.NoError(m.Lock(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	r.ErrorIs(m.Lock(ctx), context.DeadlineExceeded)

	// The abandoned acquisition must not have consumed the lock.
	m.Unlock()
	r.True(m.TryLock())
	m.Unlock()
}

func TestLockMutualExclusion(t *testing.T) {
	r := require.New(t)

	m := New()
	const workers = 16
	const iterations = 200

	counter := 0
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iterations {
				if err := m.Lock(context.Background()); err != nil {
					panic(err)
				}
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()
	r.Equal(workers*iterations, counter)
}

func TestBroadcastWakesAll(t *testing.T) {
	r := require.New(t)

	m := New()
	const waiters = 8

	results := make(chan bool, waiters)
	for range waiters {
		go func() {
			ok, err := m.Wait(t.Context(), 0)
			if err != nil {
				panic(err)
			}
			results <- ok
		}()
	}
	r.Eventually(func() bool { return m.Waiters() == waiters },
		time.Second, time.Millisecond)

	r.NoError(m.Lock(t.Context()))
	m.BroadcastLocked()
	r.Equal(uint64(1), m.VersionLocked())
	m.Unlock()

	for range waiters {
		select {
		case ok := <-results:
			r.True(ok)
		case <-time.After(time.Second):
			r.Fail("waiter not woken")
		}
	}
	r.Eventually(func() bool { return m.Waiters() == 0 },
		time.Second, time.Millisecond)
}

func TestWaitNotRetroactive(t *testing.T) {
	r := require.New(t)

	m := New()
	r.NoError(m.Lock(t.Context()))
	m.BroadcastLocked()
	m.Unlock()

	ok, err := m.Wait(t.Context(), 20*time.Millisecond)
	r.NoError(err)
	r.False(ok)
}

func TestWaitTimeout(t *testing.T) {
	r := require.New(t)

	m := New()
	const timeout = 25 * time.Millisecond
	start := time.Now()
	ok, err := m.Wait(t.Context(), timeout)
	r.NoError(err)
	r.False(ok)
	r.GreaterOrEqual(time.Since(start), timeout)
	r.Zero(m.Waiters())
}

func TestWaitCanceled(t *testing.T) {
	r := require.New(t)

	m := New()
	ctx, cancel := context.WithCancel(t.Context())
	errs := make(chan error, 1)
	go func() {
		_, err := m.Wait(ctx, 0)
		errs <- err
	}()
	r.Eventually(func() bool { return m.Waiters() == 1 },
		time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-errs:
		r.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		r.Fail("cancellation did not unblock the waiter")
	}
	r.Eventually(func() bool { return m.Waiters() == 0 },
		time.Second, time.Millisecond)
}

func TestAwaitAlreadyClosed(t *testing.T) {
	r := require.New(t)

	m := New()
	ch, err := m.Changed(t.Context())
	r.NoError(err)

	r.NoError(m.Lock(t.Context()))
	m.BroadcastLocked()
	m.Unlock()

	ok, err := m.Await(t.Context(), ch, time.Millisecond)
	r.NoError(err)
	r.True(ok)
}
