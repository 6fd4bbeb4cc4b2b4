// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package partition assigns the sub-task indices of a batch to workers,
// either up front as contiguous ranges (static) or on demand through a
// shared atomic cursor (dynamic).
package partition

import (
	"sync/atomic"

	"github.com/petenewcomb/tasksys-go/internal/cerr"
)

// Range is the half-open interval of sub-task indices [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

// Static divides [0, total) into parts contiguous ranges whose sizes differ
// by at most one. The first total%parts ranges receive the extra index, so
// for total=17 and parts=5 the sizes are 4, 4, 3, 3, 3. Ranges are returned
// in order and may be empty when total < parts.
func Static(total, parts int) []Range {
	if parts < 1 {
		panic(cerr.InvalidPartitions)
	}
	if total < 0 {
		panic(cerr.NegativeTaskCount)
	}
	base := total / parts
	remainder := total % parts
	ranges := make([]Range, parts)
	start := 0
	for i := range ranges {
		size := base
		if i < remainder {
			size++
		}
		ranges[i] = Range{Start: start, End: start + size}
		start += size
	}
	return ranges
}

// Cursor hands out consecutive chunks of [0, total) to any number of
// goroutines. Each index is handed out exactly once.
type Cursor struct {
	next  atomic.Int64
	total int64
	chunk int64
}

func NewCursor(total, chunk int) *Cursor {
	if total < 0 {
		panic(cerr.NegativeTaskCount)
	}
	if chunk < 1 {
		panic(cerr.InvalidChunkSize)
	}
	return &Cursor{
		total: int64(total),
		chunk: int64(chunk),
	}
}

// Next claims the next chunk. The final chunk may be shorter than the chunk
// size. Returns false once the cursor has passed the end.
func (c *Cursor) Next() (Range, bool) {
	start := c.next.Add(c.chunk) - c.chunk
	if start >= c.total {
		return Range{}, false
	}
	end := min(start+c.chunk, c.total)
	return Range{Start: int(start), End: int(end)}, true
}
