// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package tasksys

import (
	"cmp"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/addrummond/heap"
	"github.com/petenewcomb/tasksys-go/internal/state"
	"go.uber.org/zap"
)

// Spinning is a thread pool whose workers busy-poll a shared queue of
// pending sub-task indices, yielding the processor between polls. Workers
// are started by [NewSpinning] and run until [Spinning.Close], consuming CPU
// even while no batch is in flight, so every Spinning must be closed.
//
// Run enqueues all indices of the batch and then itself spins until the
// batch's completion counter reaches the task count. Pending indices are
// dispatched lowest first.
type Spinning struct {
	numThreads int
	logger     *zap.Logger
	lifecycle  state.Lifecycle

	mu      sync.Mutex
	pending heap.Heap[pendingTask, heap.Min] // guarded by mu
	batch   *state.Batch                     // guarded by mu
	stop    atomic.Bool
	workers sync.WaitGroup
}

type pendingTask int

func (a *pendingTask) Cmp(b *pendingTask) int {
	return cmp.Compare(*a, *b)
}

// NewSpinning creates a spinning thread pool and starts its numThreads
// workers. It panics with [ErrInvalidThreadCount] or [ErrTooManyThreads]
// before starting any worker if numThreads is out of range.
func NewSpinning(numThreads int, opts ...Option) *Spinning {
	checkThreadCount(numThreads)
	o := newOptions(opts)
	s := &Spinning{
		numThreads: numThreads,
		logger:     o.logger,
	}
	s.workers.Add(numThreads)
	for i := range numThreads {
		go s.worker(i)
	}
	s.logger.Info("thread pool started",
		zap.String("strategy", s.Name()),
		zap.Int("workers", numThreads))
	return s
}

func (s *Spinning) Name() string {
	return "Parallel + Thread Pool + Spin"
}

func (s *Spinning) NumThreads() int {
	return s.numThreads
}

func (s *Spinning) worker(id int) {
	s.logger.Debug("worker started", zap.String("strategy", s.Name()), zap.Int("worker", id))

	stopped := false
	defer func() {
		if !stopped {
			// A sub-task called runtime.Goexit. Its completion has been
			// counted, so a replacement keeps the pool at full strength.
			s.logger.Warn("worker replaced after a sub-task exited its goroutine",
				zap.String("strategy", s.Name()),
				zap.Int("worker", id))
			go s.worker(id)
			return
		}
		s.workers.Done()
	}()

	for {
		// The batch is read under the same lock as the index it belongs to.
		s.mu.Lock()
		t, ok := heap.PopOrderable(&s.pending)
		b := s.batch
		s.mu.Unlock()

		if ok {
			b.Execute(int(t))
			continue
		}

		// Only an empty queue may be abandoned. Close is never called with a
		// batch in flight, so once stop is observed no index can follow.
		if s.stop.Load() {
			stopped = true
			s.logger.Debug("worker stopped", zap.String("strategy", s.Name()), zap.Int("worker", id))
			return
		}
		runtime.Gosched()
	}
}

func (s *Spinning) Run(r Runnable, numTotalTasks int) {
	checkRunArgs(r, numTotalTasks)
	id := s.lifecycle.BeginRun()
	defer s.lifecycle.EndRun()

	if numTotalTasks == 0 {
		return
	}

	started := time.Now()
	b := state.NewBatch(id, r, numTotalTasks)
	s.logger.Debug("batch started",
		zap.String("strategy", s.Name()),
		zap.Uint64("batch", id),
		zap.Int("tasks", numTotalTasks))

	// Publish the batch before its indices become visible to workers.
	s.mu.Lock()
	s.batch = b
	for i := range numTotalTasks {
		heap.PushOrderable(&s.pending, pendingTask(i))
	}
	s.mu.Unlock()

	for !b.Done() {
		runtime.Gosched()
	}

	// Every index has been popped, so no worker can still read the batch.
	s.mu.Lock()
	s.batch = nil
	s.mu.Unlock()

	finishBatch(s.logger, s.Name(), b, started)
}

func (s *Spinning) RunAsyncWithDeps(r Runnable, numTotalTasks int, deps []TaskID) TaskID {
	return NoTaskID
}

func (s *Spinning) Sync() {}

// Close stops the workers and waits for them to exit. It panics with
// [ErrCloseDuringRun] if a Run is in flight.
func (s *Spinning) Close() {
	if !s.lifecycle.Close() {
		return
	}
	s.stop.Store(true)
	s.workers.Wait()
	s.logger.Info("thread pool closed",
		zap.String("strategy", s.Name()),
		zap.Uint64("batches", s.lifecycle.Batches()))
}
