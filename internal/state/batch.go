// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"
)

// Runnable mirrors tasksys.Runnable so that this package need not import its
// parent.
type Runnable interface {
	RunTask(taskID, numTotalTasks int)
}

// Batch is the state of a single Run call: the runnable and task count that
// every sub-task of the batch is executed against, the completion counter
// that forms the Run barrier, the first panic raised by any sub-task, and
// whether any sub-task exited its goroutine.
//
// A Batch is written once by the submitter before any of its indices become
// visible to workers and is read-only afterwards except through its atomic
// fields, so a worker that obtained an index together with its *Batch can
// never execute that index against another batch's runnable.
type Batch struct {
	id        uint64
	runnable  Runnable
	total     int
	completed CompletionCounter
	catcher   panics.Catcher
	exited    atomic.Bool
}

func NewBatch(id uint64, r Runnable, total int) *Batch {
	b := &Batch{
		id:       id,
		runnable: r,
		total:    total,
	}
	b.completed.Reset(total)
	return b
}

func (b *Batch) ID() uint64 {
	return b.id
}

func (b *Batch) Total() int {
	return b.total
}

// Execute runs sub-task taskID and counts it as complete, even if it
// panicked or exited its goroutine with runtime.Goexit. Returns true if it
// was the last sub-task of the batch to complete; a caller unwound by
// runtime.Goexit never sees the result and must check Done instead.
func (b *Batch) Execute(taskID int) (last bool) {
	returned := false
	defer func() {
		if !returned {
			b.exited.Store(true)
		}
		last = b.completed.Add(1)
	}()
	b.catcher.Try(func() {
		b.runnable.RunTask(taskID, b.total)
	})
	returned = true
	return
}

// Done reports whether every sub-task of the batch has completed.
func (b *Batch) Done() bool {
	return b.completed.Done()
}

func (b *Batch) Completed() int {
	return b.completed.Load()
}

// Recovered returns the first panic raised by a sub-task, or nil.
func (b *Batch) Recovered() *panics.Recovered {
	return b.catcher.Recovered()
}

// Exited reports whether any sub-task exited its goroutine with
// runtime.Goexit instead of returning or panicking.
func (b *Batch) Exited() bool {
	return b.exited.Load()
}

// Repanic re-raises the first captured sub-task panic, if any, in the
// calling goroutine. The panic value is a *panics.Recovered carrying the
// original value and the stack of the worker that raised it.
func (b *Batch) Repanic() {
	b.catcher.Repanic()
}
