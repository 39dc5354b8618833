package health

import (
	"context"
	"time"
)

// TaskType groups tasks for batch filtering. It carries no behavior.
type TaskType string

const (
	TypeStatusCheck TaskType = "status_check"
	TypeErrorFix    TaskType = "error_fix"
	TypeDevelopment TaskType = "development"
	TypeMaintenance TaskType = "maintenance"
	TypeMonitoring  TaskType = "monitoring"
)

// Handler produces a Result when invoked. Implementations must honor
// context cancellation; a returned error is converted to an Error Result
// at the agent boundary and never propagates further.
type Handler interface {
	Run(ctx context.Context) (Result, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context) (Result, error)

// Run implements Handler.
func (f HandlerFunc) Run(ctx context.Context) (Result, error) { return f(ctx) }

// Task is a scheduled unit of work owned by exactly one agent.
// LastRun and LastResult are mutated only by the owning agent's run path.
type Task struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        TaskType      `json:"type"`
	Description string        `json:"description,omitempty"`
	Handler     Handler       `json:"-"`
	Interval    time.Duration `json:"interval"` // 0 = manual-only
	Enabled     bool          `json:"enabled"`
	LastRun     time.Time     `json:"last_run,omitzero"`
	LastResult  *Result       `json:"last_result,omitempty"`
}

// Due reports whether the task should run at now. A task is never due when
// disabled or without an interval. A backwards clock step (now before
// LastRun) counts as no time elapsed rather than going due immediately.
func (t *Task) Due(now time.Time) bool {
	if !t.Enabled || t.Interval <= 0 {
		return false
	}
	if t.LastRun.IsZero() {
		return true
	}
	elapsed := now.Sub(t.LastRun)
	if elapsed < 0 {
		return false
	}
	return elapsed >= t.Interval
}
