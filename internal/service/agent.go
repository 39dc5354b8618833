// Package service contains the application services: agents, registry,
// scheduler, orchestrator, metrics, notifications, escalations, statistics.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osgard/sentinel/internal/domain"
	"github.com/osgard/sentinel/internal/domain/health"
)

// historyCap bounds the per-agent result history.
const historyCap = 100

// Agent is the contract every monitored-subsystem agent satisfies.
// BaseAgent provides the full default behavior; concrete agents embed it
// and shadow the operations they specialize.
type Agent interface {
	Name() string
	Category() string
	Description() string
	Status() health.Status

	RegisterTask(t *health.Task) error
	Tasks() []health.Task
	Task(id string) (health.Task, bool)
	RunTask(ctx context.Context, id string) health.Result
	RunAllTasks(ctx context.Context, filter health.TaskType) map[string]health.Result

	CheckStatus(ctx context.Context) health.Result
	DiagnoseIssues(ctx context.Context) health.Result
	FixErrors(ctx context.Context, autoFix bool) health.Result
	DevelopmentSuggestions(ctx context.Context) health.Result

	History() []health.Result
}

// BaseAgent owns a task set and a capped run history. All mutable state is
// mutex-guarded because the HTTP adapter reads concurrently with the
// scheduler loop.
type BaseAgent struct {
	name        string
	category    string
	description string

	mu      sync.RWMutex
	status  health.Status
	tasks   map[string]*health.Task
	order   []string // task ids in registration order
	history []health.Result
}

// NewBaseAgent creates an agent with no tasks and Unknown status.
func NewBaseAgent(name, category, description string) *BaseAgent {
	return &BaseAgent{
		name:        name,
		category:    category,
		description: description,
		status:      health.StatusUnknown,
		tasks:       make(map[string]*health.Task),
	}
}

func (a *BaseAgent) Name() string        { return a.name }
func (a *BaseAgent) Category() string    { return a.category }
func (a *BaseAgent) Description() string { return a.description }

// Status returns the agent's derived status: a projection of the latest
// CheckStatus call, not an independently transitioned state machine.
func (a *BaseAgent) Status() health.Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

func (a *BaseAgent) setStatus(s health.Status) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
}

// RegisterTask inserts a task. A duplicate id is rejected so that a
// misconfigured agent fails fast instead of silently losing a task.
func (a *BaseAgent) RegisterTask(t *health.Task) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("agent %s: task id is required", a.name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.tasks[t.ID]; exists {
		slog.Error("duplicate task registration rejected", "agent", a.name, "task", t.ID)
		return fmt.Errorf("agent %s: task %q: %w", a.name, t.ID, domain.ErrConflict)
	}
	a.tasks[t.ID] = t
	a.order = append(a.order, t.ID)
	return nil
}

// Tasks returns value snapshots of the agent's tasks in registration
// order. The live tasks never leave the lock: the run path mutates
// LastRun and LastResult while the scheduler and the HTTP adapter read.
func (a *BaseAgent) Tasks() []health.Task {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]health.Task, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.tasks[id])
	}
	return out
}

// Task returns a snapshot of one task by id.
func (a *BaseAgent) Task(id string) (health.Task, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	t, ok := a.tasks[id]
	if !ok {
		return health.Task{}, false
	}
	return *t, true
}

// RunTask executes one task by id. Missing or disabled tasks yield a
// synthetic Error result without invoking the handler. Handler panics and
// errors are converted to Error results here and never propagate.
func (a *BaseAgent) RunTask(ctx context.Context, id string) health.Result {
	a.mu.RLock()
	t, ok := a.tasks[id]
	a.mu.RUnlock()

	if !ok {
		return health.Failure(health.StatusError,
			fmt.Sprintf("task %q not found on agent %s", id, a.name),
			domain.ErrNotFound.Error())
	}
	if !t.Enabled {
		return health.Failure(health.StatusError,
			fmt.Sprintf("task %q is disabled", id),
			domain.ErrDisabled.Error())
	}

	res := a.invoke(ctx, t)

	a.mu.Lock()
	t.LastRun = res.Timestamp
	t.LastResult = &res
	a.history = append(a.history, res)
	if len(a.history) > historyCap {
		a.history = a.history[len(a.history)-historyCap:]
	}
	a.mu.Unlock()

	return res
}

// invoke times the handler call and absorbs panics and errors.
func (a *BaseAgent) invoke(ctx context.Context, t *health.Task) (res health.Result) {
	start := time.Now()
	runID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			res = health.Failure(health.StatusError,
				fmt.Sprintf("task %q panicked: %v", t.ID, r),
				fmt.Sprintf("%v", r), string(debug.Stack()))
		}
		res.RunID = runID
		res.ExecutionTimeMS = float64(time.Since(start).Microseconds()) / 1000.0
		res.Timestamp = time.Now().UTC()
	}()

	if t.Handler == nil {
		return health.Failure(health.StatusError, fmt.Sprintf("task %q has no handler", t.ID))
	}

	out, err := t.Handler.Run(ctx)
	if err != nil {
		return health.Failure(health.StatusError,
			fmt.Sprintf("task %q failed: %v", t.ID, err), err.Error())
	}
	return out
}

// RunAllTasks runs every enabled task matching the type filter (empty filter
// = all types), sequentially in registration order to bound resource usage.
func (a *BaseAgent) RunAllTasks(ctx context.Context, filter health.TaskType) map[string]health.Result {
	a.mu.RLock()
	ids := make([]string, 0, len(a.order))
	for _, id := range a.order {
		t := a.tasks[id]
		if !t.Enabled {
			continue
		}
		if filter != "" && t.Type != filter {
			continue
		}
		ids = append(ids, id)
	}
	a.mu.RUnlock()

	results := make(map[string]health.Result, len(ids))
	for _, id := range ids {
		results[id] = a.RunTask(ctx, id)
	}
	return results
}

// CheckStatus runs all status-check tasks and reduces them into one summary
// Result, updating the agent's derived status as a side effect.
func (a *BaseAgent) CheckStatus(ctx context.Context) health.Result {
	results := a.RunAllTasks(ctx, health.TypeStatusCheck)

	statuses := make([]health.Status, 0, len(results))
	var errs, warnings []string
	for id, r := range results {
		statuses = append(statuses, r.Status)
		if r.Status.WorseThan(health.StatusHealthy) {
			errs = append(errs, fmt.Sprintf("%s: %s", id, r.Message))
		}
		warnings = append(warnings, r.Warnings...)
	}

	overall := health.Reduce(statuses)
	a.setStatus(overall)

	return health.Result{
		Success:   !overall.WorseThan(health.StatusWarning),
		Status:    overall,
		Message:   fmt.Sprintf("%s: %d checks, status %s", a.name, len(results), overall),
		Errors:    errs,
		Warnings:  warnings,
		Data:      map[string]any{"checks": len(results)},
		Timestamp: time.Now().UTC(),
	}
}

// DiagnoseIssues re-runs the status checks and gathers every failing task's
// message and every task's suggestions, duplicates removed.
func (a *BaseAgent) DiagnoseIssues(ctx context.Context) health.Result {
	summary := a.CheckStatus(ctx)

	var errs []string
	suggestions := make([]string, 0)
	seen := make(map[string]bool)

	for _, t := range a.Tasks() {
		if t.LastResult == nil {
			continue
		}
		if t.LastResult.Status.WorseThan(health.StatusHealthy) {
			errs = append(errs, fmt.Sprintf("%s: %s", t.ID, t.LastResult.Message))
		}
		for _, s := range t.LastResult.Suggestions {
			if !seen[s] {
				seen[s] = true
				suggestions = append(suggestions, s)
			}
		}
	}

	return health.Result{
		Success:     true,
		Status:      summary.Status,
		Message:     fmt.Sprintf("%s: %d issues found", a.name, len(errs)),
		Errors:      errs,
		Suggestions: suggestions,
		Timestamp:   time.Now().UTC(),
	}
}

// FixErrors runs the error-fix tasks. With autoFix false it reports what
// would be fixed as suggestions only, without invoking any fix handler.
func (a *BaseAgent) FixErrors(ctx context.Context, autoFix bool) health.Result {
	if !autoFix {
		var suggestions []string
		for _, t := range a.Tasks() {
			if t.Type == health.TypeErrorFix && t.Enabled {
				suggestions = append(suggestions, fmt.Sprintf("would run %s: %s", t.ID, t.Description))
			}
		}
		return health.Result{
			Success:     true,
			Status:      health.StatusHealthy,
			Message:     fmt.Sprintf("%s: %d fixes available (dry run)", a.name, len(suggestions)),
			Suggestions: suggestions,
			Data:        map[string]any{"applied": 0},
			Timestamp:   time.Now().UTC(),
		}
	}

	results := a.RunAllTasks(ctx, health.TypeErrorFix)

	applied := 0
	var errs []string
	statuses := make([]health.Status, 0, len(results))
	for id, r := range results {
		statuses = append(statuses, r.Status)
		if r.Success {
			applied++
		} else {
			errs = append(errs, fmt.Sprintf("%s: %s", id, r.Message))
		}
	}

	return health.Result{
		Success:   len(errs) == 0,
		Status:    health.Reduce(statuses),
		Message:   fmt.Sprintf("%s: applied %d of %d fixes", a.name, applied, len(results)),
		Errors:    errs,
		Data:      map[string]any{"applied": applied},
		Timestamp: time.Now().UTC(),
	}
}

// DevelopmentSuggestions runs the development tasks and aggregates their
// suggestions. Advisory only: the result is always Healthy.
func (a *BaseAgent) DevelopmentSuggestions(ctx context.Context) health.Result {
	results := a.RunAllTasks(ctx, health.TypeDevelopment)

	var suggestions []string
	for _, r := range results {
		suggestions = append(suggestions, r.Suggestions...)
	}

	return health.Result{
		Success:     true,
		Status:      health.StatusHealthy,
		Message:     fmt.Sprintf("%s: %d suggestions", a.name, len(suggestions)),
		Suggestions: suggestions,
		Timestamp:   time.Now().UTC(),
	}
}

// History returns a copy of the bounded run history, oldest first.
func (a *BaseAgent) History() []health.Result {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]health.Result, len(a.history))
	copy(out, a.history)
	return out
}
