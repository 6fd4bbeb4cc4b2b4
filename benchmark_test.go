// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package tasksys_test

import (
	"fmt"
	"testing"

	"github.com/petenewcomb/tasksys-go"
	"github.com/petenewcomb/tasksys-go/internal/workload"
	"github.com/stretchr/testify/require"
)

func TestMandelbrotEquivalence(t *testing.T) {
	chk := require.New(t)
	reference := workload.NewMandelbrot(160, 120, 128)
	tasksys.NewSerial(1).Run(reference, reference.Height)

	for _, s := range strategies {
		for _, numThreads := range []int{2, 7, 16} {
			m := workload.NewMandelbrot(160, 120, 128)
			newTaskSystem(t, s, numThreads, tasksys.WithChunkSize(16)).Run(m, m.Height)
			chk.Equal(reference.Output, m.Output, "%s with %d threads", s.name, numThreads)
		}
	}
}

type benchWorkload struct {
	name string
	new  func(tasks int) tasksys.Runnable
}

var benchWorkloads = []benchWorkload{
	{"uniform", func(tasks int) tasksys.Runnable {
		return workload.NewSquares(tasks)
	}},
	{"mandelbrot", func(tasks int) tasksys.Runnable {
		return workload.NewMandelbrot(256, tasks, 256)
	}},
}

// BenchmarkRun reports throughput in completed sub-tasks per second. Names
// use key=value segments so results can be projected by the chart
// generator under internal/cmd/chartgen.
func BenchmarkRun(b *testing.B) {
	const numThreads = 8
	for _, w := range benchWorkloads {
		for _, tasks := range []int{8, 64, 512} {
			for _, s := range strategies {
				name := fmt.Sprintf("workload=%s/tasks=%d/strategy=%s/threads=%d", w.name, tasks, s.name, numThreads)
				b.Run(name, func(b *testing.B) {
					ts := s.new(numThreads)
					defer ts.Close()
					r := w.new(tasks)
					b.ResetTimer()
					for range b.N {
						ts.Run(r, tasks)
					}
					b.ReportMetric(float64(b.N*tasks)/b.Elapsed().Seconds(), "completed/s")
				})
			}
		}
	}
}
