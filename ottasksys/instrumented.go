// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package ottasksys

import (
	"context"
	"fmt"
	"time"

	"github.com/petenewcomb/tasksys-go"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/petenewcomb/tasksys-go/ottasksys"

// Instrumented combines tracing, metrics, and logging around another task
// system. It implements [tasksys.TaskSystem] itself, so it can be used
// wherever the wrapped task system would be.
type Instrumented struct {
	inner   tasksys.TaskSystem
	tracer  trace.Tracer
	metrics runMetrics
	logger  *zap.Logger
}

var _ tasksys.TaskSystem = (*Instrumented)(nil)

// An Option configures [Instrument].
type Option func(*config)

type config struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	logger         *zap.Logger
}

// WithTracerProvider sets the provider of the tracer used for run spans. The
// default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider of the meter used for run metrics. The
// default is the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// WithLogger sets the logger for run events. The default is the global zap
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	}
}

// Instrument wraps ts. Closing the result closes ts.
func Instrument(ts tasksys.TaskSystem, opts ...Option) *Instrumented {
	c := config{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		logger:         zap.L(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &Instrumented{
		inner:   ts,
		tracer:  c.tracerProvider.Tracer(instrumentationName),
		metrics: newRunMetrics(c.meterProvider.Meter(instrumentationName)),
		logger:  c.logger,
	}
}

// Unwrap returns the wrapped task system.
func (in *Instrumented) Unwrap() tasksys.TaskSystem {
	return in.inner
}

func (in *Instrumented) Name() string {
	return in.inner.Name()
}

func (in *Instrumented) Run(r tasksys.Runnable, numTotalTasks int) {
	in.RunContext(context.Background(), r, numTotalTasks)
}

// RunContext runs a batch on the wrapped task system inside a span that is a
// child of any span in ctx. The context is used only for instrumentation; it
// does not cancel the batch. If the batch panics, the span and metrics record
// the failure before the panic continues.
func (in *Instrumented) RunContext(ctx context.Context, r tasksys.Runnable, numTotalTasks int) {
	ctx, span := in.startRun(ctx, numTotalTasks)
	defer span.End()

	in.logRunStart(numTotalTasks)
	startTime := time.Now()

	returned := false
	defer func() {
		duration := time.Since(startTime)
		if returned {
			in.metrics.record(ctx, in.Name(), numTotalTasks, duration, false)
			in.logRunEnd(numTotalTasks, duration, nil)
			return
		}
		v := recover()
		if v == nil {
			// A sub-task run on this goroutine called runtime.Goexit.
			in.metrics.record(ctx, in.Name(), numTotalTasks, duration, false)
			recordExit(span)
			in.logRunExit(numTotalTasks, duration)
			return
		}
		err := panicError(v)
		in.metrics.record(ctx, in.Name(), numTotalTasks, duration, true)
		recordPanic(span, err)
		in.logRunEnd(numTotalTasks, duration, err)
		panic(v)
	}()

	in.inner.Run(r, numTotalTasks)
	returned = true
}

func (in *Instrumented) RunAsyncWithDeps(r tasksys.Runnable, numTotalTasks int, deps []tasksys.TaskID) tasksys.TaskID {
	return in.inner.RunAsyncWithDeps(r, numTotalTasks, deps)
}

func (in *Instrumented) Sync() {
	in.inner.Sync()
}

func (in *Instrumented) Close() {
	in.inner.Close()
}

func panicError(v any) error {
	switch v := v.(type) {
	case *panics.Recovered:
		return v.AsError()
	case error:
		return v
	default:
		return fmt.Errorf("panic: %v", v)
	}
}
