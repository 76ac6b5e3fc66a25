// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package watch runs a callback whenever a [guarded.List] changes.
//
// The callback receives a snapshot of the list taken after the change.
// Because a change signal carries no history, several mutations that
// occur while the callback runs, or while the loop is throttled by
// [WithMaxRate], are coalesced into a single invocation.
package watch

import (
	"context"
	"errors"
	"runtime/trace"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"vawter.tech/guarded"
	"vawter.tech/guarded/internal/safe"
)

// ErrStop may be returned by a [Func] to end [Run] without an error.
var ErrStop = errors.New("stop watching")

// A Source is a collection that announces changes. It is implemented by
// [guarded.List].
type Source[T any] interface {
	Changed(ctx context.Context) (<-chan struct{}, error)
	Snapshot(ctx context.Context) ([]T, error)
}

var _ Source[int] = (*guarded.List[int])(nil)

// Func receives a snapshot of the Source after a change.
type Func[T any] func(ctx context.Context, items []T) error

// An Option configures [Run].
type Option func(*config)

type config struct {
	idle    time.Duration
	initial bool
	limiter *rate.Limiter
	logger  *zap.Logger
}

// WithIdleTimeout causes [Run] to return once no change has been
// observed for the given duration.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) { c.idle = d }
}

// WithInitial invokes the callback once with the Source's contents
// before waiting for the first change.
func WithInitial() Option {
	return func(c *config) { c.initial = true }
}

// WithLogger attaches a logger that records loop activity at debug
// level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMaxRate limits how often the callback may be invoked using a
// [rate.Limiter]. Changes that arrive while the loop is throttled are
// coalesced.
func WithMaxRate(r float64, b int) Option {
	return func(c *config) { c.limiter = rate.NewLimiter(rate.Limit(r), b) }
}

// Run invokes the callback each time the Source changes. It returns nil
// when the context is canceled, when the idle timeout elapses, or when
// the callback returns [ErrStop]. Any other error from the callback,
// including a recovered panic, is returned immediately.
func Run[T any](ctx context.Context, src Source[T], fn Func[T], opts ...Option) error {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	// The channel is always captured before the snapshot, so that a
	// change racing with the callback triggers another invocation.
	changed, err := src.Changed(ctx)
	if err != nil {
		return ignoreCanceled(ctx, err)
	}
	if cfg.initial {
		if done, err := invoke(ctx, cfg, src, fn); done {
			return err
		}
	}

	var idle *time.Timer
	var expired <-chan time.Time
	if cfg.idle > 0 {
		idle = time.NewTimer(cfg.idle)
		defer idle.Stop()
		expired = idle.C
	}

	for {
		select {
		case <-changed:
		case <-expired:
			cfg.logger.Debug("watch idle timeout", zap.Duration("idle", cfg.idle))
			return nil
		case <-ctx.Done():
			return nil
		}

		if err := throttle(ctx, cfg.limiter); err != nil {
			return ignoreCanceled(ctx, err)
		}

		changed, err = src.Changed(ctx)
		if err != nil {
			return ignoreCanceled(ctx, err)
		}
		if done, err := invoke(ctx, cfg, src, fn); done {
			return err
		}
		if idle != nil {
			idle.Reset(cfg.idle)
		}
	}
}

// invoke snapshots the source and calls the callback. It returns true
// if the loop should exit with the returned error.
func invoke[T any](ctx context.Context, cfg *config, src Source[T], fn Func[T]) (bool, error) {
	items, err := src.Snapshot(ctx)
	if err != nil {
		return true, ignoreCanceled(ctx, err)
	}
	cfg.logger.Debug("watch invoking callback", zap.Int("items", len(items)))
	err = safe.Call(func() error { return fn(ctx, items) })
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrStop):
		return true, nil
	default:
		return true, err
	}
}

// throttle waits for the limiter, if any.
func throttle(ctx context.Context, l *rate.Limiter) error {
	// Fast-path: there's capacity.
	if l == nil || l.Allow() {
		return nil
	}
	defer trace.StartRegion(ctx, "watch rate limit wait").End()
	return l.Wait(ctx)
}

// ignoreCanceled suppresses errors caused by the context being
// canceled, which is the normal way to end a watch.
func ignoreCanceled(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}
