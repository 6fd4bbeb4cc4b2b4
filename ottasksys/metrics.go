// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package ottasksys

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// runMetrics holds the instruments shared by every run of one Instrumented.
type runMetrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
	tasks    metric.Int64Counter
	panics   metric.Int64Counter
}

func newRunMetrics(meter metric.Meter) runMetrics {
	runs, _ := meter.Int64Counter("tasksys.run.count",
		metric.WithDescription("Number of batches run"))
	duration, _ := meter.Float64Histogram("tasksys.run.duration",
		metric.WithDescription("Time from launch to completion of a batch"),
		metric.WithUnit("s"))
	tasks, _ := meter.Int64Counter("tasksys.task.count",
		metric.WithDescription("Number of sub-tasks launched"))
	panics, _ := meter.Int64Counter("tasksys.run.panics",
		metric.WithDescription("Number of batches that ended with a sub-task panic"))
	return runMetrics{
		runs:     runs,
		duration: duration,
		tasks:    tasks,
		panics:   panics,
	}
}

func (m runMetrics) record(ctx context.Context, strategy string, numTotalTasks int, d time.Duration, didPanic bool) {
	attrs := metric.WithAttributes(strategyKey.String(strategy))
	m.runs.Add(ctx, 1, attrs)
	m.tasks.Add(ctx, int64(numTotalTasks), attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
	if didPanic {
		m.panics.Add(ctx, 1, attrs)
	}
}
