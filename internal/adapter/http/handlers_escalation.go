package http

import (
	"net/http"

	"github.com/osgard/sentinel/internal/service"
)

// ListEscalations returns the unresolved queue, most urgent first.
func (h *Handlers) ListEscalations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Escalations.Pending())
}

// EscalationStats summarizes the unresolved queue by priority and reason.
func (h *Handlers) EscalationStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Escalations.Stats())
}

// GetEscalation returns one escalation by id, resolved or not.
func (h *Handlers) GetEscalation(w http.ResponseWriter, r *http.Request) {
	e, ok := h.Escalations.Get(urlParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "escalation not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CreateEscalation files a new escalation.
func (h *Handlers) CreateEscalation(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[service.CreateEscalationRequest](w, r)
	if !ok {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if !req.Reason.Valid() {
		writeError(w, http.StatusBadRequest, "unknown escalation reason")
		return
	}

	e, err := h.Escalations.Create(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// ResolveEscalation marks one escalation resolved.
func (h *Handlers) ResolveEscalation(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	ok, err := h.Escalations.Resolve(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "escalation not found")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "escalation not found")
		return
	}
	e, _ := h.Escalations.Get(id)
	writeJSON(w, http.StatusOK, e)
}

// ClearResolvedEscalations deletes all resolved escalations.
func (h *Handlers) ClearResolvedEscalations(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Escalations.ClearResolved(r.Context())
	if err != nil {
		writeDomainError(w, err, "escalations unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
