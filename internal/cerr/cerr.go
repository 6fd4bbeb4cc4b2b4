// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package cerr holds the constant error values shared between the tasksys
// package and its internal packages. They are re-exported by tasksys.
package cerr

type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	InvalidThreadCount = Error("number of threads must be at least one")
	TooManyThreads     = Error("number of threads exceeds the maximum of 64")
	NegativeTaskCount  = Error("number of total tasks must not be negative")
	NilRunnable        = Error("runnable must be non-nil")
	ConcurrentRun      = Error("Run called while another Run is in flight on the same task system")
	Closed             = Error("task system is closed")
	CloseDuringRun     = Error("Close called while a Run is in flight")
	InvalidChunkSize   = Error("chunk size must be at least one")
	InvalidPartitions  = Error("number of partitions must be at least one")
	OverCompleted      = Error("batch completed more tasks than it contains")
	TaskExited         = Error("a sub-task exited its goroutine with runtime.Goexit")
)
