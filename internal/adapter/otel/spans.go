package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "sentinel"

// StartTaskSpan starts a span for a single task execution.
func StartTaskSpan(ctx context.Context, agent, taskID, runID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "task.run",
		trace.WithAttributes(
			attribute.String("agent.name", agent),
			attribute.String("task.id", taskID),
			attribute.String("run.id", runID),
		),
	)
}

// StartTickSpan starts a span covering one scheduler tick.
func StartTickSpan(ctx context.Context, due int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "scheduler.tick",
		trace.WithAttributes(
			attribute.Int("tick.due_tasks", due),
		),
	)
}
