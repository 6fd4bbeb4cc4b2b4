// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package ottasksys

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanName is the name of the span covering one batch.
const SpanName = "tasksys.run"

const (
	strategyKey      = attribute.Key("tasksys.strategy")
	numTotalTasksKey = attribute.Key("tasksys.num_total_tasks")
)

func (in *Instrumented) startRun(ctx context.Context, numTotalTasks int) (context.Context, trace.Span) {
	return in.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			strategyKey.String(in.Name()),
			numTotalTasksKey.Int(numTotalTasks),
		))
}

func recordPanic(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "batch panicked")
}

func recordExit(span trace.Span) {
	span.SetStatus(codes.Error, "goroutine exited during batch")
}
