// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package tasksys

import (
	"time"

	"github.com/petenewcomb/tasksys-go/internal/state"
	"go.uber.org/zap"
)

// MaxThreads is the largest thread count any task system accepts.
const MaxThreads = 64

// A Runnable executes the sub-tasks of a bulk launch. RunTask is called once
// for every taskID in [0, numTotalTasks), possibly concurrently from several
// goroutines for distinct ids, and in no particular order except under
// [Serial]. Implementations must be safe for such use.
type Runnable interface {
	RunTask(taskID, numTotalTasks int)
}

// RunnableFunc adapts an ordinary function to the [Runnable] interface.
type RunnableFunc func(taskID, numTotalTasks int)

func (f RunnableFunc) RunTask(taskID, numTotalTasks int) {
	f(taskID, numTotalTasks)
}

// TaskID identifies an asynchronous bulk launch.
type TaskID int

// NoTaskID is returned by [TaskSystem.RunAsyncWithDeps], which is not
// implemented by any of the task systems in this package.
const NoTaskID TaskID = 0

// TaskSystem is the capability shared by all execution strategies.
type TaskSystem interface {
	// Name returns a label identifying the strategy.
	Name() string

	// Run executes r.RunTask(i, numTotalTasks) for every i in
	// [0, numTotalTasks) and returns once all of them have completed.
	// Only one Run may be in flight per task system.
	Run(r Runnable, numTotalTasks int)

	// RunAsyncWithDeps is a placeholder for dependency-ordered launches. It
	// schedules nothing and returns NoTaskID.
	RunAsyncWithDeps(r Runnable, numTotalTasks int, deps []TaskID) TaskID

	// Sync waits for asynchronous launches. Since there are none, it
	// returns immediately.
	Sync()

	// Close releases the task system's workers. It must not be called while
	// a Run is in flight. Calls after the first have no effect.
	Close()
}

var (
	_ TaskSystem = (*Serial)(nil)
	_ TaskSystem = (*Spawn)(nil)
	_ TaskSystem = (*Spinning)(nil)
	_ TaskSystem = (*Sleeping)(nil)
)

func checkThreadCount(numThreads int) {
	if numThreads < 1 {
		panic(ErrInvalidThreadCount)
	}
	if numThreads > MaxThreads {
		panic(ErrTooManyThreads)
	}
}

func checkRunArgs(r Runnable, numTotalTasks int) {
	if r == nil {
		panic(ErrNilRunnable)
	}
	if numTotalTasks < 0 {
		panic(ErrNegativeTaskCount)
	}
}

// finishBatch logs the outcome of a batch whose sub-tasks have all completed
// and re-raises the first sub-task panic, if there was one. Otherwise, if a
// sub-task exited its goroutine with runtime.Goexit, it panics with
// [ErrTaskExited].
func finishBatch(logger *zap.Logger, name string, b *state.Batch, started time.Time) {
	if rec := b.Recovered(); rec != nil {
		logger.Error("batch finished with a panicking task",
			zap.String("strategy", name),
			zap.Uint64("batch", b.ID()),
			zap.Int("tasks", b.Total()),
			zap.Duration("duration", time.Since(started)),
			zap.Error(rec.AsError()))
		b.Repanic()
	}
	if b.Exited() {
		logger.Error("batch finished with a sub-task that exited its goroutine",
			zap.String("strategy", name),
			zap.Uint64("batch", b.ID()),
			zap.Int("tasks", b.Total()),
			zap.Duration("duration", time.Since(started)))
		panic(ErrTaskExited)
	}
	logger.Debug("batch finished",
		zap.String("strategy", name),
		zap.Uint64("batch", b.ID()),
		zap.Int("tasks", b.Total()),
		zap.Duration("duration", time.Since(started)))
}
