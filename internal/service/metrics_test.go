package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/osgard/sentinel/internal/domain/health"
	dommetric "github.com/osgard/sentinel/internal/domain/metric"
)

func point(agent, task string, success bool, ms float64, ts time.Time) dommetric.Point {
	status := health.StatusHealthy
	if !success {
		status = health.StatusError
	}
	return dommetric.Point{
		Timestamp:       ts,
		Agent:           agent,
		Task:            task,
		Status:          status,
		ExecutionTimeMS: ms,
		Success:         success,
	}
}

func TestMetricsCollector_AggregateAverage(t *testing.T) {
	c := NewMetricsCollector(nil)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, ms := range []float64{10, 20, 30} {
		c.Record(ctx, point("db", "ping", true, ms, now))
	}
	c.Record(ctx, point("db", "ping", false, 40, now))

	agg, ok := c.Aggregate("db", "ping")
	if !ok {
		t.Fatal("expected aggregate")
	}
	if agg.TotalRuns != 4 {
		t.Fatalf("expected 4 runs, got %d", agg.TotalRuns)
	}
	if agg.SuccessCount != 3 || agg.FailureCount != 1 {
		t.Fatalf("expected 3/1 success/failure, got %d/%d", agg.SuccessCount, agg.FailureCount)
	}
	if agg.AvgTimeMS != 25 {
		t.Fatalf("expected average 25ms, got %v", agg.AvgTimeMS)
	}
	if agg.TotalTimeMS != 100 {
		t.Fatalf("expected total 100ms, got %v", agg.TotalTimeMS)
	}
}

func TestMetricsCollector_AggregateMissing(t *testing.T) {
	c := NewMetricsCollector(nil)
	if _, ok := c.Aggregate("db", "nope"); ok {
		t.Fatal("expected no aggregate for unknown pair")
	}
}

func TestMetricsCollector_PointsCapped(t *testing.T) {
	c := NewMetricsCollector(nil)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < pointsCap+50; i++ {
		c.Record(ctx, point("db", "ping", true, 1, now))
	}
	if got := c.PointCount(); got != pointsCap {
		t.Fatalf("expected points capped at %d, got %d", pointsCap, got)
	}
	// The lifetime aggregate keeps counting past the eviction.
	agg, _ := c.Aggregate("db", "ping")
	if agg.TotalRuns != pointsCap+50 {
		t.Fatalf("expected aggregate over all runs, got %d", agg.TotalRuns)
	}
}

func TestMetricsCollector_AgentMetricsRecentWindow(t *testing.T) {
	c := NewMetricsCollector(nil)
	ctx := context.Background()
	now := time.Now().UTC()

	// Old failures that must fall outside the recent window.
	for i := 0; i < recentWindow; i++ {
		c.Record(ctx, point("db", "ping", false, 100, now))
	}
	for i := 0; i < recentWindow; i++ {
		c.Record(ctx, point("db", "ping", true, 10, now))
	}
	// Another agent's points never leak into the summary.
	c.Record(ctx, point("web", "probe", false, 1, now))

	s := c.AgentMetrics("db")
	if s.Runs != recentWindow {
		t.Fatalf("expected %d recent runs, got %d", recentWindow, s.Runs)
	}
	if s.SuccessRate != 1.0 {
		t.Fatalf("expected recent window all-success, got %v", s.SuccessRate)
	}
	if s.AvgTimeMS != 10 {
		t.Fatalf("expected recent average 10ms, got %v", s.AvgTimeMS)
	}
}

func TestMetricsCollector_AgentMetricsEmpty(t *testing.T) {
	c := NewMetricsCollector(nil)
	s := c.AgentMetrics("ghost")
	if s.Runs != 0 || s.SuccessRate != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestMetricsCollector_Timeline(t *testing.T) {
	c := NewMetricsCollector(nil)
	ctx := context.Background()
	now := time.Now().UTC()

	c.Record(ctx, point("db", "ping", true, 10, now.Add(-2*time.Hour)))
	c.Record(ctx, point("db", "ping", false, 30, now.Add(-2*time.Hour)))
	c.Record(ctx, point("db", "ping", true, 20, now))
	// Outside the window.
	c.Record(ctx, point("db", "ping", true, 5, now.Add(-30*time.Hour)))

	buckets := c.Timeline(24, "db")
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %+v", len(buckets), buckets)
	}
	if !buckets[0].Hour.Before(buckets[1].Hour) {
		t.Fatal("expected buckets oldest first")
	}
	if buckets[0].Runs != 2 || buckets[0].SuccessRate != 0.5 {
		t.Fatalf("unexpected first bucket: %+v", buckets[0])
	}
	if buckets[0].AvgTimeMS != 20 {
		t.Fatalf("expected first bucket average 20ms, got %v", buckets[0].AvgTimeMS)
	}
}

func TestMetricsCollector_TimelineAgentFilter(t *testing.T) {
	c := NewMetricsCollector(nil)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, agent := range []string{"db", "web", "db"} {
		c.Record(ctx, point(agent, fmt.Sprintf("t%d", i), true, 1, now))
	}

	all := c.Timeline(24, "")
	if len(all) != 1 || all[0].Runs != 3 {
		t.Fatalf("expected one bucket of 3 runs, got %+v", all)
	}
	dbOnly := c.Timeline(24, "db")
	if len(dbOnly) != 1 || dbOnly[0].Runs != 2 {
		t.Fatalf("expected one bucket of 2 db runs, got %+v", dbOnly)
	}
}
