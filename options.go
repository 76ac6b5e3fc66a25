// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package guarded

import "go.uber.org/zap"

// An Option configures a [List] at construction time.
type Option func(*config)

type config struct {
	capacity int
	logger   *zap.Logger
	name     string
}

// sanitize fills in defaults.
func (c *config) sanitize() {
	if c.capacity < 0 {
		c.capacity = 0
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.name == "" {
		c.name = "list"
	}
}

// WithCapacity preallocates storage for n elements.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// WithLogger attaches a logger that records failed batches and
// recovered panics. The default logger discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithName sets a descriptive name that is attached to log records.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}
