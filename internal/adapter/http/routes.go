package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if h.Hub != nil {
		r.Get("/ws", h.Hub.HandleWS)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Agents
		r.Get("/agents", h.ListAgents)
		r.Get("/agents/{name}", h.GetAgent)
		r.Get("/agents/{name}/history", h.AgentHistory)
		r.Get("/agents/{name}/metrics", h.AgentMetrics)
		r.Get("/agents/{name}/suggestions", h.AgentSuggestions)
		r.Post("/agents/{name}/check", h.CheckAgent)
		r.Post("/agents/{name}/diagnose", h.DiagnoseAgent)
		r.Post("/agents/{name}/fix", h.FixAgent)
		r.Post("/agents/{name}/tasks/{task}/run", h.RunAgentTask)
		r.Get("/agents/{name}/tasks/{task}/metrics", h.TaskAggregate)

		// Fleet-wide operations
		r.Get("/fleet/status", h.FleetStatus)
		r.Get("/fleet/suggestions", h.FleetSuggestions)
		r.Post("/fleet/check", h.CheckFleet)
		r.Post("/fleet/diagnose", h.DiagnoseFleet)
		r.Post("/fleet/fix", h.FixFleet)

		// Scheduler control
		r.Get("/scheduler", h.SchedulerStatus)
		r.Post("/scheduler/start", h.StartScheduler)
		r.Post("/scheduler/stop", h.StopScheduler)

		// Escalations
		r.Get("/escalations", h.ListEscalations)
		r.Post("/escalations", h.CreateEscalation)
		r.Get("/escalations/stats", h.EscalationStats)
		r.Post("/escalations/clear-resolved", h.ClearResolvedEscalations)
		r.Get("/escalations/{id}", h.GetEscalation)
		r.Post("/escalations/{id}/resolve", h.ResolveEscalation)

		// Metrics and reporting
		r.Get("/metrics/timeline", h.MetricsTimeline)
		r.Get("/notifications", h.RecentNotifications)
		r.Get("/notifications/channels", h.NotificationChannels)
		r.Get("/reports/{period}", h.GetReport)
	})
}
