package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/osgard/sentinel/internal/domain/health"
	"github.com/osgard/sentinel/internal/domain/report"
	"github.com/osgard/sentinel/internal/port/cache"
	"github.com/osgard/sentinel/internal/port/store"
)

// Report period names and their day windows.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

var periodDays = map[string]int{
	PeriodDaily:   1,
	PeriodWeekly:  7,
	PeriodMonthly: 30,
}

// StatisticsService keeps the run-statistics ledger, persists it after
// every recorded run, and serves derived period reports through a cache.
type StatisticsService struct {
	store     store.StatsStore
	cache     cache.Cache // optional
	reportTTL time.Duration

	mu  sync.RWMutex
	doc report.Document
}

// NewStatisticsService loads the persisted ledger. A missing backing file
// yields an empty ledger.
func NewStatisticsService(ctx context.Context, st store.StatsStore, c cache.Cache, reportTTL time.Duration) (*StatisticsService, error) {
	doc, err := st.LoadStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load statistics: %w", err)
	}
	if reportTTL <= 0 {
		reportTTL = time.Minute
	}
	return &StatisticsService{
		store:     st,
		cache:     c,
		reportTTL: reportTTL,
		doc:       doc,
	}, nil
}

// RecordRun folds one completed run into the ledger and persists it.
// Applied fixes are read from the result's "applied" datum; issues are
// the result's error count.
func (s *StatisticsService) RecordRun(ctx context.Context, agent string, res health.Result) error {
	fixes := 0
	if v, ok := res.Data["applied"].(int); ok {
		fixes = v
	}
	issues := len(res.Errors)

	now := res.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// The lock covers the save too: the document's maps are shared, so
	// marshalling must not overlap a concurrent Record.
	s.mu.Lock()
	s.doc.Record(agent, res, fixes, issues, now)
	err := s.store.SaveStats(ctx, s.doc)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("save statistics: %w", err)
	}

	s.invalidateReports(ctx)
	return nil
}

// Report derives the rollup for period ("daily", "weekly" or "monthly"),
// serving a cached copy when one is fresh.
func (s *StatisticsService) Report(ctx context.Context, period string) (report.Report, error) {
	days, ok := periodDays[period]
	if !ok {
		return report.Report{}, fmt.Errorf("unknown report period %q", period)
	}

	key := "report:" + period
	if s.cache != nil {
		if raw, found, err := s.cache.Get(ctx, key); err == nil && found {
			var r report.Report
			if err := json.Unmarshal(raw, &r); err == nil {
				return r, nil
			}
		}
	}

	s.mu.RLock()
	r := s.doc.Build(period, time.Now().UTC(), days)
	s.mu.RUnlock()

	if s.cache != nil {
		if raw, err := json.Marshal(r); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.reportTTL); err != nil {
				slog.Debug("report cache set failed", "period", period, "error", err)
			}
		}
	}
	return r, nil
}

// AgentTotals returns a copy of the lifetime counters for one agent.
func (s *StatisticsService) AgentTotals(agent string) (report.AgentTotals, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at, ok := s.doc.Agents[agent]
	if !ok {
		return report.AgentTotals{}, false
	}
	return *at, true
}

// invalidateReports drops all cached period reports after new data lands.
func (s *StatisticsService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for period := range periodDays {
		if err := s.cache.Delete(ctx, "report:"+period); err != nil {
			slog.Debug("report cache delete failed", "period", period, "error", err)
		}
	}
}
