// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package tasksys

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/petenewcomb/tasksys-go/internal/state"
	"go.uber.org/zap"
)

// Sleeping is a thread pool whose workers block on a condition variable
// while there is no work. Run wakes them at the moment it enqueues a batch,
// then blocks on a second condition variable until the worker that completes
// the last sub-task signals it. Idle workers consume no CPU.
type Sleeping struct {
	numThreads int
	logger     *zap.Logger
	lifecycle  state.Lifecycle

	mu            sync.Mutex
	workAvailable sync.Cond        // pending non-empty or stopping; L is &mu
	batchDone     sync.Cond        // batch completed; L is &mu
	pending       deque.Deque[int] // guarded by mu
	batch         *state.Batch     // guarded by mu
	stopping      bool             // guarded by mu
	workers       sync.WaitGroup
}

// NewSleeping creates a sleeping thread pool and starts its numThreads
// workers. It panics with [ErrInvalidThreadCount] or [ErrTooManyThreads]
// before starting any worker if numThreads is out of range.
func NewSleeping(numThreads int, opts ...Option) *Sleeping {
	checkThreadCount(numThreads)
	o := newOptions(opts)
	s := &Sleeping{
		numThreads: numThreads,
		logger:     o.logger,
	}
	s.workAvailable.L = &s.mu
	s.batchDone.L = &s.mu
	s.workers.Add(numThreads)
	for i := range numThreads {
		go s.worker(i)
	}
	s.logger.Info("thread pool started",
		zap.String("strategy", s.Name()),
		zap.Int("workers", numThreads))
	return s
}

func (s *Sleeping) Name() string {
	return "Parallel + Thread Pool + Sleep"
}

func (s *Sleeping) NumThreads() int {
	return s.numThreads
}

func (s *Sleeping) worker(id int) {
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
		taskID, b, ok := s.next()
		if !ok {
			stopped = true
			s.logger.Debug("worker stopped", zap.String("strategy", s.Name()), zap.Int("worker", id))
			return
		}
		s.execute(b, taskID)
	}
}

// next blocks until an index is pending and returns it with its batch, or
// returns false once the pool is stopping and the queue is empty.
func (s *Sleeping) next() (int, *state.Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending.Len() == 0 && !s.stopping {
		s.workAvailable.Wait()
	}
	if s.pending.Len() == 0 {
		return 0, nil, false
	}
	return s.pending.PopFront(), s.batch, true
}

// execute runs one sub-task and wakes Run if that completed the batch. The
// wake-up is deferred so that it also happens when the sub-task exits the
// goroutine.
func (s *Sleeping) execute(b *state.Batch, taskID int) {
	defer func() {
		if b.Done() {
			// Signaled under the lock so Run cannot miss it between checking
			// the counter and waiting.
			s.mu.Lock()
			s.batchDone.Signal()
			s.mu.Unlock()
		}
	}()
	b.Execute(taskID)
}

func (s *Sleeping) Run(r Runnable, numTotalTasks int) {
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

	s.mu.Lock()
	s.batch = b
	for i := range numTotalTasks {
		s.pending.PushBack(i)
	}
	if numTotalTasks < s.numThreads {
		for range numTotalTasks {
			s.workAvailable.Signal()
		}
	} else {
		s.workAvailable.Broadcast()
	}
	for !b.Done() {
		s.batchDone.Wait()
	}
	s.batch = nil
	s.mu.Unlock()

	finishBatch(s.logger, s.Name(), b, started)
}

func (s *Sleeping) RunAsyncWithDeps(r Runnable, numTotalTasks int, deps []TaskID) TaskID {
	return NoTaskID
}

func (s *Sleeping) Sync() {}

// Close wakes the workers, lets them observe the empty queue and exit, and
// waits for them. It panics with [ErrCloseDuringRun] if a Run is in flight.
func (s *Sleeping) Close() {
	if !s.lifecycle.Close() {
		return
	}
	s.mu.Lock()
	s.stopping = true
	s.workAvailable.Broadcast()
	s.mu.Unlock()
	s.workers.Wait()
	s.logger.Info("thread pool closed",
		zap.String("strategy", s.Name()),
		zap.Uint64("batches", s.lifecycle.Batches()))
}
