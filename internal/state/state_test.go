// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state_test

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/petenewcomb/tasksys-go/internal/cerr"
	"github.com/petenewcomb/tasksys-go/internal/state"
	"github.com/sourcegraph/conc/panics"
	"github.com/stretchr/testify/require"
)

type countingRunnable struct {
	counts []atomic.Int32
}

func (r *countingRunnable) RunTask(taskID, numTotalTasks int) {
	r.counts[taskID].Add(1)
}

func TestCompletionCounter(t *testing.T) {
	chk := require.New(t)
	var c state.CompletionCounter
	c.Reset(3)
	chk.False(c.Done())
	chk.False(c.Add(2))
	chk.Equal(2, c.Load())
	chk.True(c.Add(1))
	chk.True(c.Done())
	chk.PanicsWithValue(cerr.OverCompleted, func() {
		c.Add(1)
	})

	c.Reset(0)
	chk.True(c.Done())
}

func TestBatchExactlyOneLastCompleter(t *testing.T) {
	chk := require.New(t)
	const total = 1000
	r := &countingRunnable{counts: make([]atomic.Int32, total)}
	b := state.NewBatch(7, r, total)
	chk.Equal(uint64(7), b.ID())
	chk.Equal(total, b.Total())

	var lasts atomic.Int32
	var wg sync.WaitGroup
	for i := range total {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.Execute(i) {
				lasts.Add(1)
			}
		}()
	}
	wg.Wait()

	chk.True(b.Done())
	chk.Equal(int32(1), lasts.Load())
	for i := range r.counts {
		chk.Equal(int32(1), r.counts[i].Load(), "task %d", i)
	}
}

func TestBatchCountsGoexit(t *testing.T) {
	chk := require.New(t)
	var ran atomic.Int32
	r := runnableFunc(func(taskID, numTotalTasks int) {
		ran.Add(1)
		if taskID == 1 {
			runtime.Goexit()
		}
	})
	b := state.NewBatch(1, r, 3)
	chk.False(b.Execute(0))
	chk.False(b.Exited())

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Execute(1)
		t.Error("Execute returned after runtime.Goexit")
	}()
	<-done
	chk.True(b.Exited())
	chk.Equal(2, b.Completed())
	chk.Nil(b.Recovered())

	chk.True(b.Execute(2))
	chk.True(b.Done())
	chk.Equal(int32(3), ran.Load())
}

func TestBatchCapturesFirstPanic(t *testing.T) {
	chk := require.New(t)
	var ran atomic.Int32
	r := runnableFunc(func(taskID, numTotalTasks int) {
		ran.Add(1)
		if taskID%2 == 1 {
			panic(taskID)
		}
	})
	b := state.NewBatch(1, r, 4)
	for i := range 3 {
		chk.False(b.Execute(i))
	}
	chk.True(b.Execute(3))
	chk.Equal(int32(4), ran.Load())
	chk.False(b.Exited())

	rec := b.Recovered()
	chk.NotNil(rec)
	chk.Equal(1, rec.Value)
	chk.Panics(b.Repanic)

	defer func() {
		v := recover()
		chk.IsType(&panics.Recovered{}, v)
	}()
	b.Repanic()
}

func TestLifecycle(t *testing.T) {
	chk := require.New(t)
	var l state.Lifecycle

	chk.Equal(uint64(1), l.BeginRun())
	chk.PanicsWithValue(cerr.ConcurrentRun, func() {
		l.BeginRun()
	})

	var l2 state.Lifecycle
	l2.BeginRun()
	chk.PanicsWithValue(cerr.CloseDuringRun, func() {
		l2.Close()
	})
	chk.False(l2.Closed())
	l2.EndRun()
	chk.True(l2.Close())

	l.EndRun()
	chk.Equal(uint64(2), l.BeginRun())
	l.EndRun()
	chk.Equal(uint64(2), l.Batches())

	chk.True(l.Close())
	chk.True(l.Closed())
	chk.False(l.Close())
	chk.PanicsWithValue(cerr.Closed, func() {
		l.BeginRun()
	})
	// A rejected run must not leave the run flag set.
	chk.PanicsWithValue(cerr.Closed, func() {
		l.BeginRun()
	})
}

type runnableFunc func(taskID, numTotalTasks int)

func (f runnableFunc) RunTask(taskID, numTotalTasks int) {
	f(taskID, numTotalTasks)
}
