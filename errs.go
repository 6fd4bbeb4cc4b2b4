// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package tasksys

import "github.com/petenewcomb/tasksys-go/internal/cerr"

// Panic values raised on configuration and lifecycle misuse, and by Run
// when a sub-task exits its goroutine.
const (
	ErrInvalidThreadCount = cerr.InvalidThreadCount
	ErrTooManyThreads     = cerr.TooManyThreads
	ErrNegativeTaskCount  = cerr.NegativeTaskCount
	ErrNilRunnable        = cerr.NilRunnable
	ErrConcurrentRun      = cerr.ConcurrentRun
	ErrClosed             = cerr.Closed
	ErrCloseDuringRun     = cerr.CloseDuringRun
	ErrInvalidChunkSize   = cerr.InvalidChunkSize
	ErrTaskExited         = cerr.TaskExited
)

const errNegativeRatioThreshold = cerr.Error("ratio threshold must not be negative")
