package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/osgard/sentinel/internal/adapter/ws"
	"github.com/osgard/sentinel/internal/config"
	"github.com/osgard/sentinel/internal/domain/health"
	"github.com/osgard/sentinel/internal/service"
)

const (
	goroutineWarnThreshold = 2000
	heapWarnBytes          = 1 << 30 // 1 GiB
	queueDepthWarn         = 10
)

// registerBuiltinAgents wires the self-monitoring agents every deployment
// gets: process runtime, ledger storage and the escalation queue itself.
// Deployment-specific agents are registered by the embedding service.
func registerBuiltinAgents(
	registry *service.Registry,
	hub *ws.Hub,
	escalations *service.EscalationService,
	st config.Store,
) error {
	agents := []service.Agent{
		runtimeAgent(),
		ledgerAgent(st),
		gatewayAgent(hub),
		queueAgent(escalations),
	}
	for _, a := range agents {
		if err := registry.Register(a); err != nil {
			return err
		}
	}
	return nil
}

// runtimeAgent watches the process itself: goroutine count and heap usage.
func runtimeAgent() service.Agent {
	a := service.NewBaseAgent("runtime", "system", "process goroutines and memory")

	must(a.RegisterTask(&health.Task{
		ID:       "goroutines",
		Name:     "goroutine count",
		Type:     health.TypeStatusCheck,
		Interval: time.Minute,
		Enabled:  true,
		Handler: health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
			n := runtime.NumGoroutine()
			res := health.OK(fmt.Sprintf("%d goroutines", n))
			res.Data = map[string]any{"goroutines": n}
			if n > goroutineWarnThreshold {
				res.Status = health.StatusWarning
				res.Warnings = []string{fmt.Sprintf("goroutine count %d above %d", n, goroutineWarnThreshold)}
			}
			return res, nil
		}),
	}))

	must(a.RegisterTask(&health.Task{
		ID:       "heap",
		Name:     "heap usage",
		Type:     health.TypeStatusCheck,
		Interval: time.Minute,
		Enabled:  true,
		Handler: health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			res := health.OK(fmt.Sprintf("%d MiB heap in use", ms.HeapInuse>>20))
			res.Data = map[string]any{"heap_inuse_bytes": ms.HeapInuse}
			if ms.HeapInuse > heapWarnBytes {
				res.Status = health.StatusWarning
				res.Warnings = []string{"heap usage above 1 GiB"}
			}
			return res, nil
		}),
	}))

	return a
}

// ledgerAgent checks that the durable ledgers stay reachable and writable,
// and can recreate a missing data directory on its own.
func ledgerAgent(st config.Store) service.Agent {
	a := service.NewBaseAgent("ledger", "storage", "escalation and statistics files")

	checkPath := func(name, path string) *health.Task {
		return &health.Task{
			ID:       name,
			Name:     name,
			Type:     health.TypeStatusCheck,
			Interval: 5 * time.Minute,
			Enabled:  true,
			Handler: health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
				dir := filepath.Dir(path)
				if _, err := os.Stat(dir); err != nil {
					return health.Failure(health.StatusError,
						fmt.Sprintf("data directory %s missing", dir), err.Error()), nil
				}
				if _, err := os.Stat(path); err != nil && !os.IsNotExist(err) {
					return health.Failure(health.StatusError,
						fmt.Sprintf("ledger %s unreadable", path), err.Error()), nil
				}
				return health.OK(path + " reachable"), nil
			}),
		}
	}

	must(a.RegisterTask(checkPath("escalations-file", st.EscalationsPath)))
	must(a.RegisterTask(checkPath("statistics-file", st.StatisticsPath)))

	must(a.RegisterTask(&health.Task{
		ID:          "create-data-dir",
		Name:        "create data directory",
		Type:        health.TypeErrorFix,
		Description: "recreate the data directory when it has gone missing",
		Enabled:     true,
		Handler: health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
			for _, p := range []string{st.EscalationsPath, st.StatisticsPath} {
				if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
					return health.Result{}, err
				}
			}
			return health.OK("data directories present"), nil
		}),
	}))

	return a
}

// gatewayAgent reports on the WebSocket event stream.
func gatewayAgent(hub *ws.Hub) service.Agent {
	a := service.NewBaseAgent("gateway", "network", "websocket event stream")

	must(a.RegisterTask(&health.Task{
		ID:       "ws-clients",
		Name:     "websocket clients",
		Type:     health.TypeMonitoring,
		Interval: time.Minute,
		Enabled:  true,
		Handler: health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
			n := hub.ConnectionCount()
			res := health.OK(fmt.Sprintf("%d websocket clients", n))
			res.Data = map[string]any{"clients": n}
			return res, nil
		}),
	}))

	return a
}

// queueAgent watches the escalation queue depth so a backlog of unresolved
// issues is itself surfaced as a health problem.
func queueAgent(escalations *service.EscalationService) service.Agent {
	a := service.NewBaseAgent("escalation-queue", "system", "unresolved escalation backlog")

	must(a.RegisterTask(&health.Task{
		ID:       "queue-depth",
		Name:     "queue depth",
		Type:     health.TypeStatusCheck,
		Interval: 5 * time.Minute,
		Enabled:  true,
		Handler: health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
			stats := escalations.Stats()
			res := health.OK(fmt.Sprintf("%d unresolved escalations", stats.Pending))
			res.Data = map[string]any{"pending": stats.Pending}
			if stats.Pending > queueDepthWarn {
				res.Status = health.StatusWarning
				res.Warnings = []string{fmt.Sprintf("%d unresolved escalations, oldest ones may be stuck", stats.Pending)}
			}
			return res, nil
		}),
	}))

	must(a.RegisterTask(&health.Task{
		ID:          "suggest-cleanup",
		Name:        "cleanup suggestions",
		Type:        health.TypeDevelopment,
		Description: "suggest clearing resolved escalations",
		Interval:    time.Hour,
		Enabled:     true,
		Handler: health.HandlerFunc(func(ctx context.Context) (health.Result, error) {
			res := health.OK("cleanup review")
			if len(escalations.Pending()) == 0 {
				res.Suggestions = []string{"queue empty, consider clearing resolved entries"}
			}
			return res, nil
		}),
	}))

	return a
}

// must panics on a task registration error; built-in task ids are static,
// so a failure here is a programming mistake, not a runtime condition.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
