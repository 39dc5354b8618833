package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/osgard/sentinel/internal/adapter/jsonfile"
	"github.com/osgard/sentinel/internal/domain/health"
	"github.com/osgard/sentinel/internal/port/notifier"
)

type schedulerFixture struct {
	scheduler   *Scheduler
	registry    *Registry
	collector   *MetricsCollector
	chat        *mockNotifier
	escalations *EscalationService
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()

	registry := NewRegistry()
	collector := NewMetricsCollector(nil)
	chat := &mockNotifier{channel: notifier.ChannelSlack}
	notifications := NewNotificationService([]notifier.Notifier{chat}, nil)

	store := jsonfile.NewEscalationStore(filepath.Join(t.TempDir(), "escalations.json"))
	escalations, err := NewEscalationService(context.Background(), store, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	sched := NewScheduler(registry, collector, notifications, escalations, nil, nil,
		time.Hour, notifier.ChannelSlack)

	return &schedulerFixture{
		scheduler:   sched,
		registry:    registry,
		collector:   collector,
		chat:        chat,
		escalations: escalations,
	}
}

func registerAgentTask(t *testing.T, f *schedulerFixture, agent, taskID string, h health.Handler) *BaseAgent {
	t.Helper()
	a := NewBaseAgent(agent, "infra", "")
	task := newTask(taskID, health.TypeStatusCheck, h)
	task.Interval = time.Minute
	if err := a.RegisterTask(task); err != nil {
		t.Fatal(err)
	}
	if err := f.registry.Register(a); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestScheduler_TickRunsDueTasks(t *testing.T) {
	f := newSchedulerFixture(t)
	runs := 0
	registerAgentTask(t, f, "db", "ping", health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
		runs++
		return health.Result{Success: true, Status: health.StatusHealthy}, nil
	}))

	now := time.Now().UTC()
	f.scheduler.tick(context.Background(), now)
	if runs != 1 {
		t.Fatalf("expected 1 run, got %d", runs)
	}

	// Immediately after, nothing is due.
	f.scheduler.tick(context.Background(), time.Now().UTC())
	if runs != 1 {
		t.Fatalf("expected still 1 run, got %d", runs)
	}

	agg, ok := f.collector.Aggregate("db", "ping")
	if !ok || agg.TotalRuns != 1 {
		t.Fatalf("expected 1 recorded metric point, got ok=%v %+v", ok, agg)
	}
}

func TestScheduler_TickSkipsManualOnlyTasks(t *testing.T) {
	f := newSchedulerFixture(t)
	runs := 0
	a := NewBaseAgent("db", "infra", "")
	manual := newTask("reindex", health.TypeMaintenance, health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
		runs++
		return health.Result{Success: true, Status: health.StatusHealthy}, nil
	}))
	// Interval zero: manual-only.
	if err := a.RegisterTask(manual); err != nil {
		t.Fatal(err)
	}
	if err := f.registry.Register(a); err != nil {
		t.Fatal(err)
	}

	f.scheduler.tick(context.Background(), time.Now().UTC())
	if runs != 0 {
		t.Fatalf("manual-only task must not run on tick, ran %d times", runs)
	}
}

func TestScheduler_FailureNotifiesChatChannel(t *testing.T) {
	f := newSchedulerFixture(t)
	registerAgentTask(t, f, "db", "ping", health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
		return health.Failure(health.StatusError, "connection refused", "dial tcp: refused"), nil
	}))

	f.scheduler.tick(context.Background(), time.Now().UTC())

	if len(f.chat.sent) != 1 {
		t.Fatalf("expected 1 chat notification, got %d", len(f.chat.sent))
	}
	n := f.chat.sent[0]
	if n.Priority != notifier.PriorityHigh {
		t.Fatalf("expected high priority, got %s", n.Priority)
	}
	if n.Agent != "db" {
		t.Fatalf("expected agent db, got %s", n.Agent)
	}
}

func TestScheduler_CriticalEscalates(t *testing.T) {
	f := newSchedulerFixture(t)
	registerAgentTask(t, f, "db", "ping", health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
		return health.Failure(health.StatusCritical, "data directory gone", "stat /data: no such file"), nil
	}))

	f.scheduler.tick(context.Background(), time.Now().UTC())

	if len(f.chat.sent) != 1 || f.chat.sent[0].Priority != notifier.PriorityCritical {
		t.Fatalf("expected critical chat notification, got %+v", f.chat.sent)
	}
	pending := f.escalations.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected 1 escalation, got %d", len(pending))
	}
	if pending[0].SourceAgent != "db" {
		t.Fatalf("expected source agent db, got %s", pending[0].SourceAgent)
	}
}

func TestScheduler_CriticalEscalatesOnceWhilePending(t *testing.T) {
	f := newSchedulerFixture(t)
	a := registerAgentTask(t, f, "db", "ping", health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
		return health.Failure(health.StatusCritical, "still down"), nil
	}))

	now := time.Now().UTC()
	f.scheduler.tick(context.Background(), now)

	// Force the task due again while the escalation is still open.
	a.mu.Lock()
	a.tasks["ping"].LastRun = now.Add(-2 * time.Minute)
	a.mu.Unlock()
	f.scheduler.tick(context.Background(), time.Now().UTC())

	if got := len(f.escalations.Pending()); got != 1 {
		t.Fatalf("expected a single escalation for the ongoing issue, got %d", got)
	}
}

func TestScheduler_AutoFixSuppressesEscalation(t *testing.T) {
	f := newSchedulerFixture(t)
	a := NewBaseAgent("db", "infra", "")

	check := newTask("ping", health.TypeStatusCheck, health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
		return health.Failure(health.StatusCritical, "wal full"), nil
	}))
	check.Interval = time.Minute
	if err := a.RegisterTask(check); err != nil {
		t.Fatal(err)
	}
	fix := newTask("truncate-wal", health.TypeErrorFix, health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
		return health.Result{Success: true, Status: health.StatusHealthy, Message: "truncated"}, nil
	}))
	if err := a.RegisterTask(fix); err != nil {
		t.Fatal(err)
	}
	if err := f.registry.Register(a); err != nil {
		t.Fatal(err)
	}

	f.scheduler.tick(context.Background(), time.Now().UTC())

	if got := len(f.escalations.Pending()); got != 0 {
		t.Fatalf("expected auto-fix to suppress the escalation, got %d", got)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	f := newSchedulerFixture(t)
	ctx := context.Background()

	if f.scheduler.Running() {
		t.Fatal("new scheduler must not be running")
	}
	if err := f.scheduler.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !f.scheduler.Running() {
		t.Fatal("expected running after start")
	}
	if err := f.scheduler.Start(ctx); err == nil {
		t.Fatal("expected error starting a running scheduler")
	}

	f.scheduler.Stop()
	if f.scheduler.Running() {
		t.Fatal("expected stopped")
	}
	// Stop again is a no-op.
	f.scheduler.Stop()

	status := f.scheduler.Status()
	if status.Running {
		t.Fatal("status must report stopped")
	}
	if status.Ticks < 1 {
		t.Fatalf("expected at least the startup tick, got %d", status.Ticks)
	}
}

func TestScheduler_RunBlockingStopsOnCancel(t *testing.T) {
	f := newSchedulerFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.scheduler.RunBlocking(ctx) }()

	// Let the loop start, then cancel.
	deadline := time.After(2 * time.Second)
	for !f.scheduler.Running() {
		select {
		case <-deadline:
			t.Fatal("scheduler never started")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run blocking: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
	if f.scheduler.Running() {
		t.Fatal("expected stopped after cancel")
	}
}
