// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"sync/atomic"

	"github.com/petenewcomb/tasksys-go/internal/cerr"
)

// CompletionCounter counts finished sub-tasks of one batch. It is safe for
// concurrent use by any number of workers.
type CompletionCounter struct {
	target int64
	v      atomic.Int64
}

// Reset sets the number of completions that make the batch done and clears
// the count. It must not be called while workers may still increment.
func (c *CompletionCounter) Reset(target int) {
	c.target = int64(target)
	c.v.Store(0)
}

// Add records n completions and reports whether this call brought the count
// to the target. Exactly one caller observes true per batch.
func (c *CompletionCounter) Add(n int) bool {
	newValue := c.v.Add(int64(n))
	if newValue > c.target {
		panic(cerr.OverCompleted)
	}
	return newValue == c.target
}

// Done reports whether the target has been reached.
func (c *CompletionCounter) Done() bool {
	return c.v.Load() >= c.target
}

func (c *CompletionCounter) Load() int {
	return int(c.v.Load())
}
