// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package tasksys provides bulk task execution engines. A bulk launch hands a
// [Runnable] and a total task count to a [TaskSystem], which runs every
// sub-task index in [0, total) exactly once and returns only after all of
// them have completed.
//
// Four strategies are provided, each trading thread-creation cost, CPU burn,
// and wake-up latency differently:
//
//   - [Serial] runs the sub-tasks in order on the calling goroutine. It is
//     the reference against which the others are checked.
//   - [Spawn] starts fresh goroutines on every call, splitting the indices
//     into contiguous ranges when there are many tasks per worker and
//     handing them out through an atomic cursor when there are few.
//   - [Spinning] keeps a fixed set of workers that busy-poll a shared queue.
//     It has the lowest wake latency and burns CPU while idle.
//   - [Sleeping] keeps a fixed set of workers that block on a condition
//     variable until work is enqueued. It costs nothing while idle at the
//     price of a wake-up on every batch.
//
// Every call to [TaskSystem.Run] is a complete barrier, and a task system
// accepts one Run at a time. Overlapping calls, Run after [TaskSystem.Close],
// and Close during Run are programmer errors and panic.
//
// A panic raised by a sub-task does not stop the rest of the batch. The
// parallel strategies finish the batch and then re-panic in the goroutine
// that called Run with a [*panics.Recovered] describing the first panic.
// [Serial] lets the panic propagate directly.
//
// [*panics.Recovered]: https://pkg.go.dev/github.com/sourcegraph/conc/panics#Recovered
package tasksys
