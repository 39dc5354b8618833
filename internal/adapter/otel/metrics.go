// Package otel provides OpenTelemetry instruments and tracing helpers.
package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "sentinel"

// Metrics holds all Sentinel metric instruments.
type Metrics struct {
	TasksRun           metric.Int64Counter
	TasksFailed        metric.Int64Counter
	TaskDuration       metric.Float64Histogram
	NotificationsSent  metric.Int64Counter
	EscalationsOpened  metric.Int64Counter
	EscalationsPending metric.Int64Gauge
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TasksRun, err = meter.Int64Counter("sentinel.tasks.run",
		metric.WithDescription("Number of task executions"))
	if err != nil {
		return nil, err
	}

	m.TasksFailed, err = meter.Int64Counter("sentinel.tasks.failed",
		metric.WithDescription("Number of failed task executions"))
	if err != nil {
		return nil, err
	}

	m.TaskDuration, err = meter.Float64Histogram("sentinel.task.duration_ms",
		metric.WithDescription("Task execution duration in milliseconds"))
	if err != nil {
		return nil, err
	}

	m.NotificationsSent, err = meter.Int64Counter("sentinel.notifications.sent",
		metric.WithDescription("Number of notifications dispatched"))
	if err != nil {
		return nil, err
	}

	m.EscalationsOpened, err = meter.Int64Counter("sentinel.escalations.opened",
		metric.WithDescription("Number of escalations created"))
	if err != nil {
		return nil, err
	}

	m.EscalationsPending, err = meter.Int64Gauge("sentinel.escalations.pending",
		metric.WithDescription("Current number of unresolved escalations"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
