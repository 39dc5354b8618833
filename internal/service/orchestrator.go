package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/osgard/sentinel/internal/adapter/ws"
	"github.com/osgard/sentinel/internal/domain"
	"github.com/osgard/sentinel/internal/domain/health"
	"github.com/osgard/sentinel/internal/port/broadcast"
)

// Orchestrator fans operations out across the whole fleet. It owns no
// scheduling of its own; periodic execution is delegated to the Scheduler.
type Orchestrator struct {
	registry  *Registry
	scheduler *Scheduler
	hub       broadcast.Broadcaster // optional
}

// NewOrchestrator wires the fleet-wide operations over the registry.
func NewOrchestrator(registry *Registry, scheduler *Scheduler, hub broadcast.Broadcaster) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		scheduler: scheduler,
		hub:       hub,
	}
}

// FleetStatus is the fleet-wide status reduction.
type FleetStatus struct {
	Status    health.Status            `json:"status"`
	Agents    map[string]health.Result `json:"agents"`
	Statuses  map[string]health.Status `json:"statuses"`
	CheckedAt time.Time                `json:"checked_at"`
}

// CheckAllStatus runs every agent's status checks and reduces the results
// to one fleet status. One misbehaving agent never takes down the sweep:
// a panic is converted into a critical result for that agent alone.
func (o *Orchestrator) CheckAllStatus(ctx context.Context) FleetStatus {
	agents := o.registry.All()

	fs := FleetStatus{
		Agents:    make(map[string]health.Result, len(agents)),
		Statuses:  make(map[string]health.Status, len(agents)),
		CheckedAt: time.Now().UTC(),
	}

	statuses := make([]health.Status, 0, len(agents))
	for _, a := range agents {
		res := o.safeCall(ctx, a, "status check", func(ctx context.Context) health.Result {
			return a.CheckStatus(ctx)
		})
		fs.Agents[a.Name()] = res
		fs.Statuses[a.Name()] = res.Status
		statuses = append(statuses, res.Status)

		if o.hub != nil {
			o.hub.BroadcastEvent(ctx, ws.EventAgentStatus, ws.AgentStatusEvent{
				Agent:  a.Name(),
				Status: string(res.Status),
			})
		}
	}
	fs.Status = health.Reduce(statuses)

	if o.hub != nil {
		o.hub.BroadcastEvent(ctx, ws.EventOverallStatus, ws.OverallStatusEvent{
			Status: string(fs.Status),
			Agents: len(agents),
		})
	}
	return fs
}

// DiagnoseAll collects issue diagnoses from every agent.
func (o *Orchestrator) DiagnoseAll(ctx context.Context) map[string]health.Result {
	return o.fanOut(ctx, "diagnose", func(ctx context.Context, a Agent) health.Result {
		return a.DiagnoseIssues(ctx)
	})
}

// FixAllErrors runs every agent's error-fix pass. With autoFix false the
// agents only report what they would fix.
func (o *Orchestrator) FixAllErrors(ctx context.Context, autoFix bool) map[string]health.Result {
	return o.fanOut(ctx, "fix errors", func(ctx context.Context, a Agent) health.Result {
		return a.FixErrors(ctx, autoFix)
	})
}

// AllSuggestions collects development suggestions from every agent.
func (o *Orchestrator) AllSuggestions(ctx context.Context) map[string]health.Result {
	return o.fanOut(ctx, "suggestions", func(ctx context.Context, a Agent) health.Result {
		return a.DevelopmentSuggestions(ctx)
	})
}

// RunAgentTask runs one task of one agent on demand.
func (o *Orchestrator) RunAgentTask(ctx context.Context, agentName, taskID string) (health.Result, error) {
	a, ok := o.registry.Get(agentName)
	if !ok {
		return health.Result{}, fmt.Errorf("agent %q: %w", agentName, domain.ErrNotFound)
	}
	return a.RunTask(ctx, taskID), nil
}

// OverallStatus reduces the agents' last-known statuses without running
// any checks.
func (o *Orchestrator) OverallStatus() health.Status {
	agents := o.registry.All()
	statuses := make([]health.Status, 0, len(agents))
	for _, a := range agents {
		statuses = append(statuses, a.Status())
	}
	return health.Reduce(statuses)
}

// StartScheduler delegates to the single scheduling loop.
func (o *Orchestrator) StartScheduler(ctx context.Context) error {
	return o.scheduler.Start(ctx)
}

// StopScheduler delegates to the single scheduling loop.
func (o *Orchestrator) StopScheduler() {
	o.scheduler.Stop()
}

// SchedulerStatus reports the loop's inspection view.
func (o *Orchestrator) SchedulerStatus() SchedulerStatus {
	return o.scheduler.Status()
}

// fanOut applies op to every agent sequentially with panic isolation.
func (o *Orchestrator) fanOut(ctx context.Context, opName string, op func(context.Context, Agent) health.Result) map[string]health.Result {
	agents := o.registry.All()
	results := make(map[string]health.Result, len(agents))
	for _, a := range agents {
		results[a.Name()] = o.safeCall(ctx, a, opName, func(ctx context.Context) health.Result {
			return op(ctx, a)
		})
	}
	return results
}

// safeCall converts a panicking agent operation into a critical result.
func (o *Orchestrator) safeCall(ctx context.Context, a Agent, opName string, fn func(context.Context) health.Result) (res health.Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("agent operation panicked",
				"agent", a.Name(),
				"operation", opName,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			res = health.Result{
				Success:   false,
				Status:    health.StatusCritical,
				Message:   fmt.Sprintf("%s panicked during %s: %v", a.Name(), opName, r),
				Errors:    []string{fmt.Sprintf("panic: %v", r)},
				Timestamp: time.Now().UTC(),
			}
		}
	}()
	return fn(ctx)
}
