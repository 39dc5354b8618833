package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	otelspans "github.com/osgard/sentinel/internal/adapter/otel"
	"github.com/osgard/sentinel/internal/adapter/ws"
	"github.com/osgard/sentinel/internal/domain/escalation"
	"github.com/osgard/sentinel/internal/domain/health"
	dommetric "github.com/osgard/sentinel/internal/domain/metric"
	"github.com/osgard/sentinel/internal/port/broadcast"
	"github.com/osgard/sentinel/internal/port/notifier"
)

// Scheduler is the single periodic control loop of the process. Every tick
// it scans all agents' tasks, executes the due ones sequentially in
// registration order, records metrics, notifies on failures, and escalates
// issues the owning agent cannot fix itself.
type Scheduler struct {
	registry    *Registry
	collector   *MetricsCollector
	notifier    *NotificationService
	escalations *EscalationService
	statistics  *StatisticsService    // optional
	hub         broadcast.Broadcaster // optional
	interval    time.Duration
	chatChannel notifier.Channel

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
	ticks   int64
}

// SchedulerStatus is the inspection view of the loop.
type SchedulerStatus struct {
	Running      bool          `json:"running"`
	TickInterval time.Duration `json:"tick_interval"`
	Ticks        int64         `json:"ticks"`
}

// NewScheduler wires the control loop. chatChannel is the chat channel
// failure notifications are sent to alongside the log channel.
func NewScheduler(
	registry *Registry,
	collector *MetricsCollector,
	notifications *NotificationService,
	escalations *EscalationService,
	statistics *StatisticsService,
	hub broadcast.Broadcaster,
	interval time.Duration,
	chatChannel notifier.Channel,
) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		registry:    registry,
		collector:   collector,
		notifier:    notifications,
		escalations: escalations,
		statistics:  statistics,
		hub:         hub,
		interval:    interval,
		chatChannel: chatChannel,
	}
}

// Start launches the loop in a background goroutine. Starting a running
// scheduler is an error.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(loopCtx)

	slog.Info("scheduler started", "tick_interval", s.interval)
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventSchedulerState, ws.SchedulerStateEvent{Running: true})
	}
	return nil
}

// Stop cancels the loop and waits for the in-flight tick to finish.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	slog.Info("scheduler stopped")
	if s.hub != nil {
		s.hub.BroadcastEvent(context.Background(), ws.EventSchedulerState, ws.SchedulerStateEvent{Running: false})
	}
}

// RunBlocking runs the loop in the foreground until ctx is cancelled.
func (s *Scheduler) RunBlocking(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns the inspection view.
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerStatus{
		Running:      s.running,
		TickInterval: s.interval,
		Ticks:        s.ticks,
	}
}

// run is the loop body: tick, sleep, repeat. A panic inside one tick is
// logged and the loop continues; a cancelled context exits cleanly.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.safeTick(ctx, time.Now().UTC())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// safeTick shields the loop from a single bad tick.
func (s *Scheduler) safeTick(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduler tick panicked",
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	s.tick(ctx, now)
}

// dueTask pairs a due task with its owning agent, in discovery order.
// The task is the snapshot taken during the scan, so its LastResult is
// the state the tick decided on.
type dueTask struct {
	agent Agent
	task  health.Task
}

// tick executes one scan-and-run pass.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	var due []dueTask
	for _, agent := range s.registry.All() {
		for _, t := range agent.Tasks() {
			if t.Due(now) {
				due = append(due, dueTask{agent: agent, task: t})
			}
		}
	}

	s.mu.Lock()
	s.ticks++
	s.mu.Unlock()

	if len(due) == 0 {
		return
	}

	ctx, span := otelspans.StartTickSpan(ctx, len(due))
	defer span.End()

	slog.Debug("scheduler tick", "due_tasks", len(due))

	for _, d := range due {
		if ctx.Err() != nil {
			return
		}
		s.runDue(ctx, d)
	}
}

// runDue executes one due task and handles its aftermath: metrics,
// statistics, broadcast, notification, escalation.
func (s *Scheduler) runDue(ctx context.Context, d dueTask) {
	agentName := d.agent.Name()
	taskID := d.task.ID

	prevStatus := health.StatusUnknown
	if d.task.LastResult != nil {
		prevStatus = d.task.LastResult.Status
	}

	runCtx, span := otelspans.StartTaskSpan(ctx, agentName, taskID, "")
	res := d.agent.RunTask(runCtx, taskID)
	span.End()

	s.collector.Record(ctx, dommetric.Point{
		Timestamp:       res.Timestamp,
		Agent:           agentName,
		Task:            taskID,
		RunID:           res.RunID,
		Status:          res.Status,
		ExecutionTimeMS: res.ExecutionTimeMS,
		Success:         res.Success,
		ErrorCount:      len(res.Errors),
		WarningCount:    len(res.Warnings),
	})

	if s.statistics != nil {
		if err := s.statistics.RecordRun(ctx, agentName, res); err != nil {
			slog.Error("record run statistics", "agent", agentName, "error", err)
		}
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventTaskResult, ws.TaskResultEvent{
			Agent:           agentName,
			TaskID:          taskID,
			Status:          string(res.Status),
			Success:         res.Success,
			Message:         res.Message,
			ExecutionTimeMS: res.ExecutionTimeMS,
		})
	}

	failing := !res.Success || res.Status == health.StatusError || res.Status == health.StatusCritical
	if !failing {
		return
	}

	priority := notifier.PriorityHigh
	if res.Status == health.StatusCritical {
		priority = notifier.PriorityCritical
	}

	s.notifier.Notify(ctx, notifier.Notification{
		Agent:    agentName,
		Title:    fmt.Sprintf("Task %s failed on %s", taskID, agentName),
		Message:  res.Message,
		Priority: priority,
		Data: map[string]any{
			"task":   taskID,
			"status": string(res.Status),
			"errors": len(res.Errors),
		},
		Channels: []notifier.Channel{notifier.ChannelLog, s.chatChannel},
	})

	// Escalate on the transition into Critical, not on every critical
	// tick, so a persistent failure files one ticket rather than one per
	// interval.
	if res.Status == health.StatusCritical && prevStatus != health.StatusCritical {
		s.escalateCritical(ctx, d, res)
	}
}

// escalateCritical files a human-action ticket for a critical result the
// agent could not remediate on its own.
func (s *Scheduler) escalateCritical(ctx context.Context, d dueTask, res health.Result) {
	if s.escalations == nil {
		return
	}

	agentName := d.agent.Name()
	title := fmt.Sprintf("Critical: %s/%s", agentName, d.task.ID)

	if s.escalations.HasPendingFor(agentName, title) {
		return
	}

	// Give the agent one shot at remediating on its own; a human only
	// needs to step in when it applied nothing.
	fix := d.agent.FixErrors(ctx, true)
	if applied, ok := fix.Data["applied"].(int); ok && applied > 0 && fix.Success {
		slog.Info("auto-fix applied, skipping escalation",
			"agent", agentName, "task", d.task.ID, "applied", applied)
		return
	}

	req := CreateEscalationRequest{
		Title:       title,
		Description: res.Message + "\n" + strings.Join(res.Errors, "\n"),
		Reason:      escalation.ReasonRequiresDecision,
		Priority:    escalation.PriorityHigh,
		SourceAgent: agentName,
		WhyNotAuto:  fmt.Sprintf("agent %s has no automatic fix for task %s", agentName, d.task.ID),
	}
	if files, ok := res.Data["files"].([]string); ok {
		req.AffectedFiles = files
	}

	if _, err := s.escalations.Create(ctx, req); err != nil {
		slog.Error("escalation create failed", "agent", agentName, "task", d.task.ID, "error", err)
	}
}
