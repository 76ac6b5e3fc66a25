// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package consume processes the elements of a [guarded.List] with a
// bounded pool of workers.
//
// Workers remove elements from the head of the list, so each element
// is delivered to exactly one worker. Producers may continue to add
// elements while [ForEach] runs.
package consume

import (
	"context"
	"errors"
	"fmt"
	"runtime/trace"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"vawter.tech/guarded"
	"vawter.tech/guarded/internal/safe"
)

// A Queue yields elements from its head. It is implemented by
// [guarded.List].
type Queue[T any] interface {
	// PopAt must fail with [guarded.ErrOutOfRange] when the queue is
	// empty.
	PopAt(ctx context.Context, idx int) (T, error)
	// Take must block until an element is available.
	Take(ctx context.Context) (T, error)
}

var _ Queue[int] = (*guarded.List[int])(nil)

// Func processes a single element. The worker argument identifies the
// calling worker, in the range [0, numWorkers).
type Func[T any] func(ctx context.Context, worker int, item T) error

// An Option configures [ForEach].
type Option func(*config)

type config struct {
	drain       bool
	logger      *zap.Logger
	stopOnError bool
}

// Drain causes workers to exit once the queue is empty, rather than
// waiting for more elements.
func Drain() Option {
	return func(c *config) { c.drain = true }
}

// StopOnError cancels all workers when the callback first returns an
// error.
func StopOnError() Option {
	return func(c *config) { c.stopOnError = true }
}

// WithLogger attaches a logger that records callback failures at debug
// level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// ForEach will start numWorkers goroutines that repeatedly remove the
// first element of the queue and pass it to the callback. Unless
// [Drain] is specified, a worker that finds the queue empty waits for
// more elements, and ForEach returns only once the context is canceled.
// Cancellation is the normal way to stop the workers and is not
// reported as an error.
//
// Any error returned by the callback, including a recovered panic, is
// collected and returned without preemptively stopping the other
// workers, unless [StopOnError] is specified.
func ForEach[T any](
	ctx context.Context, q Queue[T], numWorkers int, fn Func[T], opts ...Option,
) error {
	if numWorkers <= 0 {
		panic(errors.New("numWorkers must be greater than zero"))
	}
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	p := pool.New().WithContext(ctx).WithMaxGoroutines(numWorkers)
	if cfg.stopOnError {
		p = p.WithCancelOnError()
	}

	for worker := range numWorkers {
		p.Go(func(ctx context.Context) error {
			var errs []error
			for {
				item, ok, err := next(ctx, q, cfg.drain)
				if err != nil {
					return errors.Join(append(errs, err)...)
				}
				if !ok {
					// Clean exit.
					return errors.Join(errs...)
				}
				if err := safe.Call(func() error {
					return fn(ctx, worker, item)
				}); err != nil {
					err = fmt.Errorf("worker %d: %w", worker, err)
					cfg.logger.Debug("consume callback failed",
						zap.Int("worker", worker), zap.Error(err))
					if cfg.stopOnError {
						return err
					}
					errs = append(errs, err)
				}
			}
		})
	}
	return p.Wait()
}

// next returns the next element, or false if the worker should exit.
func next[T any](ctx context.Context, q Queue[T], drain bool) (T, bool, error) {
	var zero T
	// The queue's lock does not check the context when uncontended.
	if ctx.Err() != nil {
		return zero, false, nil
	}

	var item T
	var err error
	if drain {
		item, err = q.PopAt(ctx, 0)
		if errors.Is(err, guarded.ErrOutOfRange) {
			return zero, false, nil
		}
	} else {
		region := trace.StartRegion(ctx, "consume take")
		item, err = q.Take(ctx)
		region.End()
	}

	switch {
	case err == nil:
		return item, true, nil
	case ctx.Err() != nil:
		return zero, false, nil
	default:
		return zero, false, err
	}
}
