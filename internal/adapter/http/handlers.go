package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/osgard/sentinel/internal/adapter/ws"
	"github.com/osgard/sentinel/internal/domain/health"
	"github.com/osgard/sentinel/internal/service"
)

// Handlers bundles the services the API exposes.
type Handlers struct {
	Registry      *service.Registry
	Orchestrator  *service.Orchestrator
	Metrics       *service.MetricsCollector
	Notifications *service.NotificationService
	Escalations   *service.EscalationService
	Statistics    *service.StatisticsService
	Hub           *ws.Hub
}

// agentSummary is the list view of one agent.
type agentSummary struct {
	Name        string        `json:"name"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Status      health.Status `json:"status"`
	Tasks       int           `json:"tasks"`
}

// taskView is the externally visible shape of a task.
type taskView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        health.TaskType `json:"type"`
	Description string          `json:"description,omitempty"`
	Interval    string          `json:"interval"`
	Enabled     bool            `json:"enabled"`
	LastRun     *time.Time      `json:"last_run,omitempty"`
	LastResult  *health.Result  `json:"last_result,omitempty"`
}

func toTaskView(t health.Task) taskView {
	v := taskView{
		ID:          t.ID,
		Name:        t.Name,
		Type:        t.Type,
		Description: t.Description,
		Interval:    t.Interval.String(),
		Enabled:     t.Enabled,
		LastResult:  t.LastResult,
	}
	if !t.LastRun.IsZero() {
		lr := t.LastRun
		v.LastRun = &lr
	}
	return v
}

// ListAgents returns every registered agent in registration order.
func (h *Handlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	var agents []service.Agent
	if category != "" {
		agents = h.Registry.ByCategory(category)
	} else {
		agents = h.Registry.All()
	}

	out := make([]agentSummary, 0, len(agents))
	for _, a := range agents {
		out = append(out, agentSummary{
			Name:        a.Name(),
			Category:    a.Category(),
			Description: a.Description(),
			Status:      a.Status(),
			Tasks:       len(a.Tasks()),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAgent returns one agent with its full task list.
func (h *Handlers) GetAgent(w http.ResponseWriter, r *http.Request) {
	a, ok := h.Registry.Get(urlParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}

	tasks := a.Tasks()
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, toTaskView(t))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":        a.Name(),
		"category":    a.Category(),
		"description": a.Description(),
		"status":      a.Status(),
		"tasks":       views,
	})
}

// AgentHistory returns the agent's retained run results, oldest first.
func (h *Handlers) AgentHistory(w http.ResponseWriter, r *http.Request) {
	a, ok := h.Registry.Get(urlParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, a.History())
}

// CheckAgent runs the agent's status checks.
func (h *Handlers) CheckAgent(w http.ResponseWriter, r *http.Request) {
	a, ok := h.Registry.Get(urlParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, a.CheckStatus(r.Context()))
}

// DiagnoseAgent runs the agent's issue diagnosis.
func (h *Handlers) DiagnoseAgent(w http.ResponseWriter, r *http.Request) {
	a, ok := h.Registry.Get(urlParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, a.DiagnoseIssues(r.Context()))
}

// FixAgent runs the agent's error-fix pass. ?apply=true executes the fixes;
// the default is a dry run.
func (h *Handlers) FixAgent(w http.ResponseWriter, r *http.Request) {
	a, ok := h.Registry.Get(urlParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	apply, _ := strconv.ParseBool(r.URL.Query().Get("apply"))
	writeJSON(w, http.StatusOK, a.FixErrors(r.Context(), apply))
}

// AgentSuggestions runs the agent's development-suggestion tasks.
func (h *Handlers) AgentSuggestions(w http.ResponseWriter, r *http.Request) {
	a, ok := h.Registry.Get(urlParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, a.DevelopmentSuggestions(r.Context()))
}

// RunAgentTask executes one named task on demand, regardless of schedule.
func (h *Handlers) RunAgentTask(w http.ResponseWriter, r *http.Request) {
	res, err := h.Orchestrator.RunAgentTask(r.Context(), urlParam(r, "name"), urlParam(r, "task"))
	if err != nil {
		writeDomainError(w, err, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AgentMetrics returns the recent-window summary for one agent.
func (h *Handlers) AgentMetrics(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	if _, ok := h.Registry.Get(name); !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, h.Metrics.AgentMetrics(name))
}
