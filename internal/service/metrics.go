package service

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	otelmetrics "github.com/osgard/sentinel/internal/adapter/otel"
	dommetric "github.com/osgard/sentinel/internal/domain/metric"
)

const (
	// pointsCap bounds the in-memory time series; oldest points are evicted.
	pointsCap = 10000
	// recentWindow is the per-agent recent-view size, distinct from the
	// lifetime aggregate.
	recentWindow = 100
)

type aggKey struct {
	agent string
	task  string
}

// MetricsCollector keeps a ring-buffered time series of task outcomes plus
// incrementally updated lifetime aggregates per (agent, task) pair. It also
// mirrors counts into OpenTelemetry instruments when they are provided.
type MetricsCollector struct {
	mu   sync.RWMutex
	pts  []dommetric.Point
	aggs map[aggKey]*dommetric.Aggregate
	inst *otelmetrics.Metrics // optional
}

// NewMetricsCollector creates a collector. inst may be nil when no
// OpenTelemetry meter is configured.
func NewMetricsCollector(inst *otelmetrics.Metrics) *MetricsCollector {
	return &MetricsCollector{
		aggs: make(map[aggKey]*dommetric.Aggregate),
		inst: inst,
	}
}

// Record appends a point, evicting the oldest beyond the cap, and folds it
// into the lifetime aggregate with an incremental mean.
func (c *MetricsCollector) Record(ctx context.Context, p dommetric.Point) {
	c.mu.Lock()
	c.pts = append(c.pts, p)
	if len(c.pts) > pointsCap {
		c.pts = c.pts[len(c.pts)-pointsCap:]
	}

	key := aggKey{agent: p.Agent, task: p.Task}
	agg, ok := c.aggs[key]
	if !ok {
		agg = &dommetric.Aggregate{}
		c.aggs[key] = agg
	}
	agg.TotalRuns++
	if p.Success {
		agg.SuccessCount++
	} else {
		agg.FailureCount++
	}
	agg.TotalTimeMS += p.ExecutionTimeMS
	n := float64(agg.TotalRuns)
	agg.AvgTimeMS = (agg.AvgTimeMS*(n-1) + p.ExecutionTimeMS) / n
	agg.ErrorCount += p.ErrorCount
	agg.WarningCount += p.WarningCount
	c.mu.Unlock()

	if c.inst != nil {
		attrs := metric.WithAttributes(
			attribute.String("agent", p.Agent),
			attribute.String("task", p.Task),
		)
		c.inst.TasksRun.Add(ctx, 1, attrs)
		if !p.Success {
			c.inst.TasksFailed.Add(ctx, 1, attrs)
		}
		c.inst.TaskDuration.Record(ctx, p.ExecutionTimeMS, attrs)
	}
}

// Aggregate returns the lifetime rollup for one (agent, task) pair.
func (c *MetricsCollector) Aggregate(agent, task string) (dommetric.Aggregate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	agg, ok := c.aggs[aggKey{agent: agent, task: task}]
	if !ok {
		return dommetric.Aggregate{}, false
	}
	return *agg, true
}

// AgentMetrics computes success rate and average duration over the agent's
// most recent points (recent-window view, not the lifetime aggregate).
func (c *MetricsCollector) AgentMetrics(agent string) dommetric.AgentSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := dommetric.AgentSummary{Agent: agent}
	successes := 0
	totalMS := 0.0

	// Walk backwards so the window holds the newest points.
	for i := len(c.pts) - 1; i >= 0 && summary.Runs < recentWindow; i-- {
		p := c.pts[i]
		if p.Agent != agent {
			continue
		}
		summary.Runs++
		if p.Success {
			successes++
		}
		totalMS += p.ExecutionTimeMS
	}

	if summary.Runs > 0 {
		summary.SuccessRate = float64(successes) / float64(summary.Runs)
		summary.AvgTimeMS = totalMS / float64(summary.Runs)
	}
	return summary
}

// Timeline buckets points from the last `hours` hours by truncated-to-hour
// timestamp, oldest bucket first. An empty agent matches all agents.
func (c *MetricsCollector) Timeline(hours int, agent string) []dommetric.TimelineBucket {
	if hours <= 0 {
		hours = 24
	}
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	type acc struct {
		runs      int
		successes int
		errors    int
		totalMS   float64
	}

	c.mu.RLock()
	buckets := make(map[time.Time]*acc)
	for _, p := range c.pts {
		if p.Timestamp.Before(cutoff) {
			continue
		}
		if agent != "" && p.Agent != agent {
			continue
		}
		hour := p.Timestamp.UTC().Truncate(time.Hour)
		b, ok := buckets[hour]
		if !ok {
			b = &acc{}
			buckets[hour] = b
		}
		b.runs++
		if p.Success {
			b.successes++
		}
		b.errors += p.ErrorCount
		b.totalMS += p.ExecutionTimeMS
	}
	c.mu.RUnlock()

	hoursSorted := make([]time.Time, 0, len(buckets))
	for h := range buckets {
		hoursSorted = append(hoursSorted, h)
	}
	// Small slice, simple insertion-order sort by time.
	for i := 1; i < len(hoursSorted); i++ {
		for j := i; j > 0 && hoursSorted[j].Before(hoursSorted[j-1]); j-- {
			hoursSorted[j], hoursSorted[j-1] = hoursSorted[j-1], hoursSorted[j]
		}
	}

	out := make([]dommetric.TimelineBucket, 0, len(hoursSorted))
	for _, h := range hoursSorted {
		b := buckets[h]
		tb := dommetric.TimelineBucket{
			Hour:      h,
			Runs:      b.runs,
			Errors:    b.errors,
			AvgTimeMS: b.totalMS / float64(b.runs),
		}
		tb.SuccessRate = float64(b.successes) / float64(b.runs)
		out = append(out, tb)
	}
	return out
}

// PointCount returns the number of retained points.
func (c *MetricsCollector) PointCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pts)
}
