// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package ottasksys_test

import (
	"context"
	"fmt"

	"github.com/petenewcomb/tasksys-go"
	"github.com/petenewcomb/tasksys-go/ottasksys"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Example demonstrating how to trace bulk launches
func Example_tracing() {
	// Configure a simple stdout exporter for demonstration
	exporter, _ := stdouttrace.New(stdouttrace.WithPrettyPrint())
	tp := trace.NewTracerProvider(
		trace.WithSampler(trace.AlwaysSample()),
		trace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	ctx, rootSpan := otel.Tracer("example").Start(context.Background(), "render-frame")
	defer rootSpan.End()

	ts := ottasksys.Instrument(tasksys.NewSleeping(4))
	defer ts.Close()

	rows := make([]int, 8)
	ts.RunContext(ctx, tasksys.RunnableFunc(func(taskID, numTotalTasks int) {
		rows[taskID] = taskID * numTotalTasks
	}), len(rows))
	fmt.Println(rows)
}
