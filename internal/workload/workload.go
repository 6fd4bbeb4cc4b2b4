// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package workload provides deterministic runnables used to exercise task
// systems in tests: per-index coverage counters, an index-square buffer for
// cross-strategy comparison, artificially delayed items for barrier checks,
// and items that panic on chosen indices.
package workload

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/require"
)

// Runnable mirrors tasksys.Runnable.
type Runnable interface {
	RunTask(taskID, numTotalTasks int)
}

// Coverage counts how many times each index of a batch was run and checks
// that every call saw the expected total.
type Coverage struct {
	counts     []atomic.Int32
	total      int
	wrongTotal atomic.Int32
	outOfRange atomic.Int32
}

func NewCoverage(total int) *Coverage {
	return &Coverage{
		counts: make([]atomic.Int32, total),
		total:  total,
	}
}

func (c *Coverage) RunTask(taskID, numTotalTasks int) {
	if numTotalTasks != c.total {
		c.wrongTotal.Add(1)
	}
	if taskID < 0 || taskID >= len(c.counts) {
		c.outOfRange.Add(1)
		return
	}
	c.counts[taskID].Add(1)
}

// Calls returns the total number of in-range invocations observed.
func (c *Coverage) Calls() int {
	n := 0
	for i := range c.counts {
		n += int(c.counts[i].Load())
	}
	return n
}

// RequireEach fails t unless every index was run exactly times times with
// the right total and no out-of-range index was seen.
func (c *Coverage) RequireEach(t require.TestingT, times int) {
	require.Zero(t, c.wrongTotal.Load(), "calls with the wrong total task count")
	require.Zero(t, c.outOfRange.Load(), "calls with an out-of-range task id")
	for i := range c.counts {
		count := int(c.counts[i].Load())
		if count != times {
			require.Fail(t, fmt.Sprintf("task %d ran %d times, expected %d", i, count, times))
		}
	}
}

// Squares writes taskID*taskID into slot taskID of its buffer. Distinct
// indices touch distinct slots, so no synchronization is needed.
type Squares struct {
	Buf []int64
}

func NewSquares(total int) *Squares {
	return &Squares{Buf: make([]int64, total)}
}

func (s *Squares) RunTask(taskID, numTotalTasks int) {
	s.Buf[taskID] = int64(taskID) * int64(taskID)
}

// Delayed sleeps before delegating to Inner. Indices divisible by SlowEvery
// sleep Slow, the rest sleep Fast, producing a skewed load. It records how
// many sub-tasks have finished so a caller can check that Run did not return
// early.
type Delayed struct {
	Inner     Runnable
	Fast      time.Duration
	Slow      time.Duration
	SlowEvery int
	finished  atomic.Int64
}

func (d *Delayed) RunTask(taskID, numTotalTasks int) {
	delay := d.Fast
	if d.SlowEvery > 0 && taskID%d.SlowEvery == 0 {
		delay = d.Slow
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if d.Inner != nil {
		d.Inner.RunTask(taskID, numTotalTasks)
	}
	d.finished.Add(1)
}

func (d *Delayed) Finished() int {
	return int(d.finished.Load())
}

// Panicking delegates to Inner and then panics with the task id for every
// index for which PanicOn returns true.
type Panicking struct {
	Inner   Runnable
	PanicOn func(taskID int) bool
}

func (p *Panicking) RunTask(taskID, numTotalTasks int) {
	if p.Inner != nil {
		p.Inner.RunTask(taskID, numTotalTasks)
	}
	if p.PanicOn(taskID) {
		panic(fmt.Sprintf("task %d failed", taskID))
	}
}
