package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	sentinelhttp "github.com/osgard/sentinel/internal/adapter/http"
	"github.com/osgard/sentinel/internal/adapter/jsonfile"
	"github.com/osgard/sentinel/internal/adapter/otel"
	"github.com/osgard/sentinel/internal/adapter/ristretto"
	"github.com/osgard/sentinel/internal/adapter/ws"
	"github.com/osgard/sentinel/internal/config"
	"github.com/osgard/sentinel/internal/logger"
	"github.com/osgard/sentinel/internal/port/notifier"
	"github.com/osgard/sentinel/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"tick_interval", cfg.Scheduler.TickInterval,
		"chat_channel", cfg.Scheduler.ChatChannel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---

	escalationStore := jsonfile.NewEscalationStore(cfg.Store.EscalationsPath)
	statsStore := jsonfile.NewStatsStore(cfg.Store.StatisticsPath)

	reportCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer reportCache.Close()

	hub := ws.NewHub()

	inst, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	notifiers, err := buildNotifiers(cfg.Notify)
	if err != nil {
		return fmt.Errorf("notifiers: %w", err)
	}

	// --- Services ---

	registry := service.NewRegistry()
	collector := service.NewMetricsCollector(inst)
	notifications := service.NewNotificationService(notifiers, inst)

	escalations, err := service.NewEscalationService(ctx, escalationStore, hub, inst)
	if err != nil {
		return fmt.Errorf("escalations: %w", err)
	}
	statistics, err := service.NewStatisticsService(ctx, statsStore, reportCache, cfg.Cache.ReportTTL)
	if err != nil {
		return fmt.Errorf("statistics: %w", err)
	}

	scheduler := service.NewScheduler(registry, collector, notifications, escalations,
		statistics, hub, cfg.Scheduler.TickInterval, notifier.Channel(cfg.Scheduler.ChatChannel))
	orchestrator := service.NewOrchestrator(registry, scheduler, hub)

	if err := registerBuiltinAgents(registry, hub, escalations, cfg.Store); err != nil {
		return fmt.Errorf("builtin agents: %w", err)
	}
	slog.Info("agents registered", "count", registry.Len())

	// --- HTTP ---

	handlers := &sentinelhttp.Handlers{
		Registry:      registry,
		Orchestrator:  orchestrator,
		Metrics:       collector,
		Notifications: notifications,
		Escalations:   escalations,
		Statistics:    statistics,
		Hub:           hub,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(sentinelhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(sentinelhttp.Logger)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))

	sentinelhttp.MountRoutes(r, handlers)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if cfg.Scheduler.AutoStart {
		if err := scheduler.Start(context.Background()); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildNotifiers constructs a notifier for each configured channel via the
// factory registry. Channels without configuration are skipped; the log
// channel needs none and is always added by the notification service.
func buildNotifiers(cfg config.Notify) ([]notifier.Notifier, error) {
	var out []notifier.Notifier

	if cfg.Slack.WebhookURL != "" {
		n, err := notifier.New(notifier.ChannelSlack, map[string]string{
			"webhook_url": cfg.Slack.WebhookURL,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if cfg.Discord.WebhookURL != "" {
		n, err := notifier.New(notifier.ChannelDiscord, map[string]string{
			"webhook_url": cfg.Discord.WebhookURL,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if cfg.Email.Host != "" {
		n, err := notifier.New(notifier.ChannelEmail, map[string]string{
			"host":     cfg.Email.Host,
			"port":     cfg.Email.Port,
			"from":     cfg.Email.From,
			"password": cfg.Email.Password,
			"to":       cfg.Email.To,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}

	return out, nil
}
