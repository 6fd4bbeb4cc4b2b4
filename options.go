// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package tasksys

import "go.uber.org/zap"

const (
	// DefaultRatioThreshold is the tasks-per-thread ratio below which
	// [Spawn] switches from static ranges to an atomic cursor.
	DefaultRatioThreshold = 2

	// DefaultChunkSize is the number of consecutive indices [Spawn] claims
	// per cursor increment.
	DefaultChunkSize = 1
)

// An Option configures a task system at construction. Options that do not
// apply to a strategy are ignored by it.
type Option func(*options)

type options struct {
	logger         *zap.Logger
	ratioThreshold int
	chunkSize      int
}

func newOptions(opts []Option) options {
	o := options{
		logger:         zap.L(),
		ratioThreshold: DefaultRatioThreshold,
		chunkSize:      DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for worker and batch events. The default
// is the global zap logger, which discards everything unless replaced. A nil
// logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = zap.NewNop()
		}
		o.logger = logger
	}
}

// WithRatioThreshold sets the tasks-per-thread ratio below which [Spawn]
// uses dynamic partitioning. Zero means always partition statically.
func WithRatioThreshold(threshold int) Option {
	if threshold < 0 {
		panic(errNegativeRatioThreshold)
	}
	return func(o *options) {
		o.ratioThreshold = threshold
	}
}

// WithChunkSize sets how many consecutive indices a [Spawn] worker claims
// from the shared cursor at once. Larger chunks reduce contention on the
// cursor when sub-tasks are small.
func WithChunkSize(size int) Option {
	if size < 1 {
		panic(ErrInvalidChunkSize)
	}
	return func(o *options) {
		o.chunkSize = size
	}
}
