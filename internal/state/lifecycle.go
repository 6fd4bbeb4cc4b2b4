// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"sync/atomic"

	"github.com/petenewcomb/tasksys-go/internal/cerr"
)

// Lifecycle detects misuse of a task system: overlapping Run calls, Run after
// Close, and Close while a Run is in flight. Each is a programmer error and
// panics rather than racing. It also hands out batch ids.
//
// The zero value is an open task system with no run in flight.
type Lifecycle struct {
	running atomic.Bool
	closed  atomic.Bool
	batches atomic.Uint64
}

// BeginRun marks a run as in flight and returns the id of its batch. Every
// successful call must be paired with EndRun.
func (l *Lifecycle) BeginRun() uint64 {
	if !l.running.CompareAndSwap(false, true) {
		panic(cerr.ConcurrentRun)
	}
	// Checked after claiming the run flag so that a racing Close observes
	// either the flag or the closed state.
	if l.closed.Load() {
		l.running.Store(false)
		panic(cerr.Closed)
	}
	return l.batches.Add(1)
}

func (l *Lifecycle) EndRun() {
	l.running.Store(false)
}

// Close marks the task system closed. Returns true only for the call that
// performed the transition, so teardown happens exactly once. A Close that
// panics because a run is in flight leaves the task system open.
func (l *Lifecycle) Close() bool {
	if !l.closed.CompareAndSwap(false, true) {
		return false
	}
	if l.running.Load() {
		l.closed.Store(false)
		panic(cerr.CloseDuringRun)
	}
	return true
}

func (l *Lifecycle) Closed() bool {
	return l.closed.Load()
}

// Batches returns the number of batches started so far.
func (l *Lifecycle) Batches() uint64 {
	return l.batches.Load()
}
