// Package report defines the persisted run statistics and the derived
// daily/weekly/monthly report views.
package report

import (
	"sort"
	"time"

	"github.com/osgard/sentinel/internal/domain/health"
)

// DateFormat keys the daily buckets.
const DateFormat = "2006-01-02"

// AgentTotals is the lifetime counter set for one agent.
type AgentTotals struct {
	TotalRuns       int           `json:"total_runs"`
	SuccessfulRuns  int           `json:"successful_runs"`
	FailedRuns      int           `json:"failed_runs"`
	TotalFixes      int           `json:"total_fixes"`
	TotalIssues     int           `json:"total_issues_found"`
	AvgDurationMS   float64       `json:"average_duration_ms"`
	LastRun         time.Time     `json:"last_run"`
	LastStatus      health.Status `json:"last_status"`
}

// DailyTotals is the per-date counter set across all agents.
type DailyTotals struct {
	Runs        int `json:"runs"`
	Successes   int `json:"successes"`
	Failures    int `json:"failures"`
	Fixes       int `json:"fixes"`
	IssuesFound int `json:"issues_found"`
}

// Document is the persisted statistics ledger.
type Document struct {
	Agents      map[string]*AgentTotals `json:"agents"`
	Daily       map[string]*DailyTotals `json:"daily"`
	LastUpdated time.Time               `json:"last_updated"`
}

// NewDocument returns an empty statistics document.
func NewDocument() Document {
	return Document{
		Agents: make(map[string]*AgentTotals),
		Daily:  make(map[string]*DailyTotals),
	}
}

// Record folds one completed run into the lifetime and daily counters.
func (d *Document) Record(agent string, res health.Result, fixes, issues int, now time.Time) {
	at, ok := d.Agents[agent]
	if !ok {
		at = &AgentTotals{}
		d.Agents[agent] = at
	}
	at.TotalRuns++
	if res.Success {
		at.SuccessfulRuns++
	} else {
		at.FailedRuns++
	}
	at.TotalFixes += fixes
	at.TotalIssues += issues
	n := float64(at.TotalRuns)
	at.AvgDurationMS = (at.AvgDurationMS*(n-1) + res.ExecutionTimeMS) / n
	at.LastRun = now
	at.LastStatus = res.Status

	key := now.UTC().Format(DateFormat)
	dt, ok := d.Daily[key]
	if !ok {
		dt = &DailyTotals{}
		d.Daily[key] = dt
	}
	dt.Runs++
	if res.Success {
		dt.Successes++
	} else {
		dt.Failures++
	}
	dt.Fixes += fixes
	dt.IssuesFound += issues

	d.LastUpdated = now
}

// AgentRank is one row of the per-agent success ranking.
type AgentRank struct {
	Agent       string  `json:"agent"`
	Runs        int     `json:"runs"`
	SuccessRate float64 `json:"success_rate"`
}

// Report is a derived rollup over a date window. Pure arithmetic,
// recomputed on demand.
type Report struct {
	Period          string      `json:"period"`
	From            string      `json:"from"`
	To              string      `json:"to"`
	Runs            int         `json:"runs"`
	Successes       int         `json:"successes"`
	Failures        int         `json:"failures"`
	Fixes           int         `json:"fixes"`
	IssuesFound     int         `json:"issues_found"`
	SuccessRate     float64     `json:"success_rate"`
	FixRate         float64     `json:"fix_rate"`
	Ranking         []AgentRank `json:"ranking"`
	Recommendations []string    `json:"recommendations"`
}

// Build derives a report over the window [to-days+1, to].
func (d *Document) Build(period string, to time.Time, days int) Report {
	r := Report{
		Period: period,
		From:   to.UTC().AddDate(0, 0, -(days - 1)).Format(DateFormat),
		To:     to.UTC().Format(DateFormat),
	}

	for i := 0; i < days; i++ {
		key := to.UTC().AddDate(0, 0, -i).Format(DateFormat)
		dt, ok := d.Daily[key]
		if !ok {
			continue
		}
		r.Runs += dt.Runs
		r.Successes += dt.Successes
		r.Failures += dt.Failures
		r.Fixes += dt.Fixes
		r.IssuesFound += dt.IssuesFound
	}

	if r.Runs > 0 {
		r.SuccessRate = float64(r.Successes) / float64(r.Runs)
	}
	if r.IssuesFound > 0 {
		r.FixRate = float64(r.Fixes) / float64(r.IssuesFound)
	}

	r.Ranking = d.ranking()
	r.Recommendations = recommend(r, d, to)
	return r
}

// ranking orders agents by lifetime success rate, best first.
func (d *Document) ranking() []AgentRank {
	ranks := make([]AgentRank, 0, len(d.Agents))
	for name, at := range d.Agents {
		rate := 0.0
		if at.TotalRuns > 0 {
			rate = float64(at.SuccessfulRuns) / float64(at.TotalRuns)
		}
		ranks = append(ranks, AgentRank{Agent: name, Runs: at.TotalRuns, SuccessRate: rate})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].SuccessRate != ranks[j].SuccessRate {
			return ranks[i].SuccessRate > ranks[j].SuccessRate
		}
		return ranks[i].Agent < ranks[j].Agent
	})
	return ranks
}

// recommend emits the fixed set of threshold-triggered advice lines.
func recommend(r Report, d *Document, now time.Time) []string {
	var recs []string
	if r.Runs > 0 && r.SuccessRate < 0.8 {
		recs = append(recs, "success rate below 80%: review recently failing tasks")
	}
	if r.IssuesFound > 0 && r.FixRate < 0.5 {
		recs = append(recs, "fix rate below 50%: issues are piling up faster than they are repaired")
	}
	for name, at := range d.Agents {
		if !at.LastRun.IsZero() && now.Sub(at.LastRun) > 7*24*time.Hour {
			recs = append(recs, "agent "+name+" has not run in over a week")
		}
	}
	sort.Strings(recs)
	return recs
}
