package http

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/osgard/sentinel/internal/port/notifier"
)

// TaskAggregate returns the lifetime rollup for one (agent, task) pair.
func (h *Handlers) TaskAggregate(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.Metrics.Aggregate(urlParam(r, "name"), urlParam(r, "task"))
	if !ok {
		writeError(w, http.StatusNotFound, "no metrics recorded for task")
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// MetricsTimeline returns hourly buckets. ?hours= bounds the window
// (default 24) and ?agent= filters to one agent.
func (h *Handlers) MetricsTimeline(w http.ResponseWriter, r *http.Request) {
	hours, _ := strconv.Atoi(r.URL.Query().Get("hours"))
	agent := r.URL.Query().Get("agent")
	writeJSON(w, http.StatusOK, h.Metrics.Timeline(hours, agent))
}

// RecentNotifications returns the retained notifications, oldest first.
func (h *Handlers) RecentNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Notifications.Recent())
}

// NotificationChannels reports which channel adapters are compiled into
// the binary and how many are wired with configuration.
func (h *Handlers) NotificationChannels(w http.ResponseWriter, r *http.Request) {
	available := notifier.Available()
	sort.Slice(available, func(i, j int) bool { return available[i] < available[j] })

	writeJSON(w, http.StatusOK, map[string]any{
		"available": available,
		"active":    h.Notifications.ChannelCount(),
	})
}

// GetReport builds the daily, weekly or monthly report.
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Statistics.Report(r.Context(), urlParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
