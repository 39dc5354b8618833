// Package metric defines the time-series types recorded for task runs.
package metric

import (
	"time"

	"github.com/osgard/sentinel/internal/domain/health"
)

// Point is one recorded task outcome. Append-only.
type Point struct {
	Timestamp       time.Time     `json:"timestamp"`
	Agent           string        `json:"agent"`
	Task            string        `json:"task"`
	RunID           string        `json:"run_id,omitempty"`
	Status          health.Status `json:"status"`
	ExecutionTimeMS float64       `json:"execution_time_ms"`
	Success         bool          `json:"success"`
	ErrorCount      int           `json:"error_count"`
	WarningCount    int           `json:"warning_count"`
}

// Aggregate is the lifetime rollup for one (agent, task) pair,
// updated incrementally on every recorded point.
type Aggregate struct {
	TotalRuns    int     `json:"total_runs"`
	SuccessCount int     `json:"success_count"`
	FailureCount int     `json:"failure_count"`
	TotalTimeMS  float64 `json:"total_time_ms"`
	AvgTimeMS    float64 `json:"avg_time_ms"`
	ErrorCount   int     `json:"error_count"`
	WarningCount int     `json:"warning_count"`
}

// AgentSummary is the recent-window view for one agent, distinct from the
// lifetime Aggregate.
type AgentSummary struct {
	Agent       string  `json:"agent"`
	Runs        int     `json:"runs"`
	SuccessRate float64 `json:"success_rate"`
	AvgTimeMS   float64 `json:"avg_time_ms"`
}

// TimelineBucket is one truncated-to-hour slice of recorded points.
type TimelineBucket struct {
	Hour        time.Time `json:"hour"`
	Runs        int       `json:"runs"`
	SuccessRate float64   `json:"success_rate"`
	Errors      int       `json:"errors"`
	AvgTimeMS   float64   `json:"avg_time_ms"`
}
