// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package tasksys

import (
	"time"

	"github.com/petenewcomb/tasksys-go/internal/partition"
	"github.com/petenewcomb/tasksys-go/internal/state"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Spawn starts new goroutines on every call to Run and joins them before
// returning. The calling goroutine acts as one of the workers.
//
// When a batch has at least [WithRatioThreshold] tasks per thread, the
// indices are split into one contiguous range per worker. Below that ratio,
// per-worker load is likely to be uneven, so workers instead claim chunks of
// [WithChunkSize] indices from a shared atomic cursor until it is exhausted.
type Spawn struct {
	numThreads     int
	ratioThreshold int
	chunkSize      int
	logger         *zap.Logger
	lifecycle      state.Lifecycle
}

// NewSpawn creates a spawn-per-call task system that uses up to numThreads
// goroutines per batch. It panics with [ErrInvalidThreadCount] or
// [ErrTooManyThreads] if numThreads is out of range.
func NewSpawn(numThreads int, opts ...Option) *Spawn {
	checkThreadCount(numThreads)
	o := newOptions(opts)
	return &Spawn{
		numThreads:     numThreads,
		ratioThreshold: o.ratioThreshold,
		chunkSize:      o.chunkSize,
		logger:         o.logger,
	}
}

func (s *Spawn) Name() string {
	return "Parallel + Always Spawn"
}

func (s *Spawn) NumThreads() int {
	return s.numThreads
}

// Dynamic reports whether a batch of numTotalTasks would be partitioned
// through the shared cursor rather than into static ranges.
func (s *Spawn) Dynamic(numTotalTasks int) bool {
	return numTotalTasks/s.numThreads < s.ratioThreshold
}

func (s *Spawn) Run(r Runnable, numTotalTasks int) {
	checkRunArgs(r, numTotalTasks)
	id := s.lifecycle.BeginRun()
	defer s.lifecycle.EndRun()

	if numTotalTasks == 0 {
		return
	}

	started := time.Now()
	b := state.NewBatch(id, r, numTotalTasks)
	var wg conc.WaitGroup

	func() {
		// Joined in a defer so that Run cannot end, even by runtime.Goexit
		// of the calling goroutine, while spawned goroutines still run.
		defer wg.Wait()

		if s.Dynamic(numTotalTasks) {
			s.logger.Debug("batch started",
				zap.String("strategy", s.Name()),
				zap.Uint64("batch", id),
				zap.Int("tasks", numTotalTasks),
				zap.String("partitioning", "dynamic"),
				zap.Int("chunk_size", s.chunkSize))

			cursor := partition.NewCursor(numTotalTasks, s.chunkSize)
			chunks := (numTotalTasks + s.chunkSize - 1) / s.chunkSize
			for range min(s.numThreads, chunks) - 1 {
				wg.Go(func() {
					s.work(&wg, b, partition.Range{}, cursor)
				})
			}
			s.work(&wg, b, partition.Range{}, cursor)
		} else {
			s.logger.Debug("batch started",
				zap.String("strategy", s.Name()),
				zap.Uint64("batch", id),
				zap.Int("tasks", numTotalTasks),
				zap.String("partitioning", "static"))

			ranges := partition.Static(numTotalTasks, s.numThreads)
			for _, rg := range ranges[1:] {
				if rg.Len() == 0 {
					continue
				}
				wg.Go(func() {
					s.work(&wg, b, rg, nil)
				})
			}
			s.work(&wg, b, ranges[0], nil)
		}
	}()

	finishBatch(s.logger, s.Name(), b, started)
}

// work executes the indices of rg in order and then, if cursor is non-nil,
// of every range it can claim from cursor. If a sub-task exits the goroutine
// with runtime.Goexit, a new goroutine resumes after that index.
func (s *Spawn) work(wg *conc.WaitGroup, b *state.Batch, rg partition.Range, cursor *partition.Cursor) {
	next := rg.Start
	defer func() {
		if next < rg.End {
			s.logger.Warn("sub-task exited its goroutine, resuming on a new one",
				zap.String("strategy", s.Name()),
				zap.Uint64("batch", b.ID()),
				zap.Int("task", next))
			rest := partition.Range{Start: next + 1, End: rg.End}
			wg.Go(func() {
				s.work(wg, b, rest, cursor)
			})
		}
	}()
	for {
		for ; next < rg.End; next++ {
			b.Execute(next)
		}
		if cursor == nil {
			return
		}
		var ok bool
		if rg, ok = cursor.Next(); !ok {
			return
		}
		next = rg.Start
	}
}

func (s *Spawn) RunAsyncWithDeps(r Runnable, numTotalTasks int, deps []TaskID) TaskID {
	return NoTaskID
}

func (s *Spawn) Sync() {}

// Close marks the task system closed. Spawn holds no goroutines between
// calls, so there is nothing to join.
func (s *Spawn) Close() {
	s.lifecycle.Close()
}
