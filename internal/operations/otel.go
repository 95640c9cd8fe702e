package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"dsstool/internal/infrastructure"
)

const (
	TracerName = "dsstool.operations"
)

// RunTracer provides OpenTelemetry instrumentation for runs and steps
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
}

// NewRunTracer creates a tracer on providers. Nil providers use the global
// OpenTelemetry providers.
func NewRunTracer(providers *infrastructure.OTelProviders) (*RunTracer, error) {
	var meter metric.Meter
	tracer := otel.Tracer(TracerName)
	if providers != nil {
		meter = providers.Meter
		if providers.TracerProvider != nil {
			tracer = providers.TracerProvider.Tracer(TracerName)
		}
	}

	metrics, err := infrastructure.CreateBusinessMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return &RunTracer{tracer: tracer, metrics: metrics}, nil
}

// Metrics exposes the instruments for callers recording their own values.
func (rt *RunTracer) Metrics() *infrastructure.BusinessMetrics {
	return rt.metrics
}

// TraceRun creates a span for the whole run
func (rt *RunTracer) TraceRun(ctx context.Context, runID, source string) (context.Context, trace.Span) {
	ctx, span := rt.tracer.Start(ctx, "run.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.source", source),
		),
	)

	rt.metrics.RunsTotal.Add(ctx, 1)
	rt.metrics.ActiveRuns.Add(ctx, 1)
	return ctx, span
}

// TraceStep creates a span for one step
func (rt *RunTracer) TraceStep(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "run.step."+stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion closes out a step span and records its duration
func (rt *RunTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}
	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)

	rt.metrics.StepDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("step", stepID),
			attribute.String("status", status),
		),
	)
}

// RecordRunCompletion closes out the run span and records the run counters
func (rt *RunTracer) RecordRunCompletion(ctx context.Context, span trace.Span, state *RunState) {
	status := string(state.GetStatus())
	duration := state.Duration()

	span.SetAttributes(
		attribute.String("run.status", status),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
		attribute.Int("run.groups", len(state.Groups)),
		attribute.Int("run.outputs", len(state.Outputs)),
	)

	attrs := metric.WithAttributes(attribute.String("status", status))
	rt.metrics.RunDuration.Record(ctx, duration.Seconds(), attrs)
	rt.metrics.ActiveRuns.Add(ctx, -1)
	rt.metrics.GroupsTotal.Add(ctx, int64(len(state.Groups)))
	rt.metrics.OutputsTotal.Add(ctx, int64(len(state.Outputs)))

	missing := 0
	for _, m := range state.Maps {
		v := m.Validate()
		missing += len(v.Missing) + len(v.Null)
	}
	if missing > 0 {
		rt.metrics.PlaceholdersMissing.Add(ctx, int64(missing))
	}

	infrastructure.AddSpanEvent(ctx, "run.completed", map[string]interface{}{
		"run_id":   state.ID,
		"status":   status,
		"duration": duration.Seconds(),
	})

	if state.Error != nil {
		rt.metrics.RunFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("error_type", string(GetErrorType(state.Error)))))
		span.SetStatus(codes.Error, state.Error.Error())
	} else {
		span.SetStatus(codes.Ok, "run completed")
	}
}
