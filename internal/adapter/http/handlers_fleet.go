package http

import (
	"context"
	"net/http"
	"strconv"
)

// FleetStatus reduces the last-known agent statuses without running checks.
func (h *Handlers) FleetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": h.Orchestrator.OverallStatus(),
		"agents": h.Registry.Len(),
	})
}

// CheckFleet runs every agent's status checks and reduces the results.
func (h *Handlers) CheckFleet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Orchestrator.CheckAllStatus(r.Context()))
}

// DiagnoseFleet collects diagnoses from every agent.
func (h *Handlers) DiagnoseFleet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Orchestrator.DiagnoseAll(r.Context()))
}

// FixFleet runs every agent's error-fix pass. ?apply=true executes the
// fixes; the default is a dry run.
func (h *Handlers) FixFleet(w http.ResponseWriter, r *http.Request) {
	apply, _ := strconv.ParseBool(r.URL.Query().Get("apply"))
	writeJSON(w, http.StatusOK, h.Orchestrator.FixAllErrors(r.Context(), apply))
}

// FleetSuggestions collects development suggestions from every agent.
func (h *Handlers) FleetSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Orchestrator.AllSuggestions(r.Context()))
}

// SchedulerStatus reports whether the loop is running.
func (h *Handlers) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Orchestrator.SchedulerStatus())
}

// StartScheduler starts the periodic loop. The loop outlives the request,
// so it runs on a background context and is stopped explicitly.
func (h *Handlers) StartScheduler(w http.ResponseWriter, r *http.Request) {
	if err := h.Orchestrator.StartScheduler(context.Background()); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Orchestrator.SchedulerStatus())
}

// StopScheduler stops the periodic loop, letting the in-flight tick finish.
func (h *Handlers) StopScheduler(w http.ResponseWriter, r *http.Request) {
	h.Orchestrator.StopScheduler()
	writeJSON(w, http.StatusOK, h.Orchestrator.SchedulerStatus())
}
