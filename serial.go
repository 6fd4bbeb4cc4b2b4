// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package tasksys

import (
	"time"

	"github.com/petenewcomb/tasksys-go/internal/state"
	"go.uber.org/zap"
)

// Serial runs every sub-task on the calling goroutine in increasing index
// order. The thread count it is constructed with is validated but otherwise
// unused.
type Serial struct {
	numThreads int
	logger     *zap.Logger
	lifecycle  state.Lifecycle
}

// NewSerial creates a serial task system. It panics with
// [ErrInvalidThreadCount] or [ErrTooManyThreads] if numThreads is out of
// range.
func NewSerial(numThreads int, opts ...Option) *Serial {
	checkThreadCount(numThreads)
	o := newOptions(opts)
	return &Serial{
		numThreads: numThreads,
		logger:     o.logger,
	}
}

func (s *Serial) Name() string {
	return "Serial"
}

func (s *Serial) NumThreads() int {
	return s.numThreads
}

// Run calls r.RunTask(i, numTotalTasks) for i = 0, 1, ..., numTotalTasks-1.
// A panic from RunTask is not recovered and leaves the remaining indices
// unexecuted.
func (s *Serial) Run(r Runnable, numTotalTasks int) {
	checkRunArgs(r, numTotalTasks)
	batch := s.lifecycle.BeginRun()
	defer s.lifecycle.EndRun()

	started := time.Now()
	s.logger.Debug("batch started",
		zap.String("strategy", s.Name()),
		zap.Uint64("batch", batch),
		zap.Int("tasks", numTotalTasks))

	for i := range numTotalTasks {
		r.RunTask(i, numTotalTasks)
	}

	s.logger.Debug("batch finished",
		zap.String("strategy", s.Name()),
		zap.Uint64("batch", batch),
		zap.Int("tasks", numTotalTasks),
		zap.Duration("duration", time.Since(started)))
}

func (s *Serial) RunAsyncWithDeps(r Runnable, numTotalTasks int, deps []TaskID) TaskID {
	return NoTaskID
}

func (s *Serial) Sync() {}

func (s *Serial) Close() {
	s.lifecycle.Close()
}
