package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	otelmetrics "github.com/osgard/sentinel/internal/adapter/otel"
	"github.com/osgard/sentinel/internal/adapter/ws"
	"github.com/osgard/sentinel/internal/domain/escalation"
	"github.com/osgard/sentinel/internal/port/broadcast"
	"github.com/osgard/sentinel/internal/port/store"
)

// EscalationService owns the durable, priority-ordered queue of issues that
// need a human. Every mutation rewrites the backing store; the store itself
// is responsible for doing that atomically.
type EscalationService struct {
	mu      sync.RWMutex
	store   store.EscalationStore
	counter int
	items   map[string]*escalation.Escalation
	hub     broadcast.Broadcaster // optional
	inst    *otelmetrics.Metrics  // optional
}

// CreateEscalationRequest holds the fields for a new escalation.
type CreateEscalationRequest struct {
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Reason        escalation.Reason       `json:"reason"`
	Priority      escalation.Priority     `json:"priority"`
	SourceAgent   string                  `json:"source_agent"`
	AffectedFiles []string                `json:"affected_files,omitempty"`
	WhyNotAuto    string                  `json:"why_not_auto"`
	ManualSteps   []escalation.ManualStep `json:"manual_steps,omitempty"`
}

// EscalationStats summarizes the unresolved queue.
type EscalationStats struct {
	Pending    int            `json:"pending"`
	ByPriority map[string]int `json:"by_priority"`
	ByReason   map[string]int `json:"by_reason"`
}

// NewEscalationService loads the persisted ledger and resumes its counter.
func NewEscalationService(ctx context.Context, st store.EscalationStore, hub broadcast.Broadcaster, inst *otelmetrics.Metrics) (*EscalationService, error) {
	doc, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load escalations: %w", err)
	}

	s := &EscalationService{
		store:   st,
		counter: doc.Counter,
		items:   make(map[string]*escalation.Escalation, len(doc.Escalations)),
		hub:     hub,
		inst:    inst,
	}
	for i := range doc.Escalations {
		e := doc.Escalations[i]
		s.items[e.ID] = &e
	}

	slog.Info("escalation ledger loaded", "count", len(s.items), "counter", s.counter)
	return s, nil
}

// Create allocates the next persisted id and stores the escalation. When no
// manual steps are supplied they are backfilled from the description's
// template match, if any.
func (s *EscalationService) Create(ctx context.Context, req CreateEscalationRequest) (*escalation.Escalation, error) {
	if req.Priority < escalation.PriorityCritical || req.Priority > escalation.PriorityInfo {
		return nil, fmt.Errorf("escalation priority %d out of range", req.Priority)
	}
	if !req.Reason.Valid() {
		return nil, fmt.Errorf("escalation reason %q unknown", req.Reason)
	}

	steps := req.ManualSteps
	if len(steps) == 0 {
		steps = escalation.TemplateSteps(req.Description)
	}

	s.mu.Lock()
	s.counter++
	e := &escalation.Escalation{
		ID:            fmt.Sprintf("ESC-%04d", s.counter),
		Title:         req.Title,
		Description:   req.Description,
		Reason:        req.Reason,
		Priority:      req.Priority,
		SourceAgent:   req.SourceAgent,
		AffectedFiles: req.AffectedFiles,
		WhyNotAuto:    req.WhyNotAuto,
		ManualSteps:   steps,
		CreatedAt:     time.Now().UTC(),
	}
	s.items[e.ID] = e

	if err := s.persistLocked(ctx); err != nil {
		// An unwritable ledger is the one failure with no
		// report-and-continue path: undo and surface it.
		delete(s.items, e.ID)
		s.counter--
		s.mu.Unlock()
		return nil, err
	}
	pending := s.pendingCountLocked()
	s.mu.Unlock()

	if s.inst != nil {
		s.inst.EscalationsOpened.Add(ctx, 1, metric.WithAttributes(
			attribute.String("priority", e.Priority.String()),
		))
		s.inst.EscalationsPending.Record(ctx, int64(pending))
	}

	slog.Info("escalation created",
		"id", e.ID,
		"priority", e.Priority.String(),
		"reason", e.Reason,
		"agent", e.SourceAgent,
	)

	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventEscalationCreated, ws.EscalationCreatedEvent{
			ID:       e.ID,
			Title:    e.Title,
			Priority: int(e.Priority),
			Agent:    e.SourceAgent,
		})
	}

	out := *e
	return &out, nil
}

// Get returns one escalation by id.
func (s *EscalationService) Get(id string) (escalation.Escalation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[id]
	if !ok {
		return escalation.Escalation{}, false
	}
	return *e, true
}

// Resolve marks an escalation resolved and rewrites the store. An unknown
// id returns false without touching the store.
func (s *EscalationService) Resolve(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return false, nil
	}
	if e.Resolved {
		return true, nil
	}

	now := time.Now().UTC()
	e.Resolved = true
	e.ResolvedAt = &now

	if err := s.persistLocked(ctx); err != nil {
		e.Resolved = false
		e.ResolvedAt = nil
		return false, err
	}

	if s.inst != nil {
		s.inst.EscalationsPending.Record(ctx, int64(s.pendingCountLocked()))
	}

	slog.Info("escalation resolved", "id", id)
	return true, nil
}

// ClearResolved deletes every resolved entry in one store rewrite and
// returns the number removed.
func (s *EscalationService) ClearResolved(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, e := range s.items {
		if e.Resolved {
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}

	backup := make(map[string]*escalation.Escalation, len(removed))
	for _, id := range removed {
		backup[id] = s.items[id]
		delete(s.items, id)
	}

	if err := s.persistLocked(ctx); err != nil {
		for id, e := range backup {
			s.items[id] = e
		}
		return 0, err
	}

	slog.Info("resolved escalations cleared", "count", len(removed))
	return len(removed), nil
}

// Pending returns the unresolved escalations sorted by ascending priority
// value (Critical=1 first), ties broken by creation time.
func (s *EscalationService) Pending() []escalation.Escalation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]escalation.Escalation, 0)
	for _, e := range s.items {
		if !e.Resolved {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// pendingCountLocked counts unresolved entries. Caller holds s.mu.
func (s *EscalationService) pendingCountLocked() int {
	n := 0
	for _, e := range s.items {
		if !e.Resolved {
			n++
		}
	}
	return n
}

// HasPendingFor reports whether an unresolved escalation from the given
// agent with the given title already exists. The scheduler uses this to
// avoid refiling the same issue every tick.
func (s *EscalationService) HasPendingFor(sourceAgent, title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.items {
		if !e.Resolved && e.SourceAgent == sourceAgent && e.Title == title {
			return true
		}
	}
	return false
}

// Stats counts unresolved escalations by priority and by reason.
func (s *EscalationService) Stats() EscalationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := EscalationStats{
		ByPriority: make(map[string]int),
		ByReason:   make(map[string]int),
	}
	for _, e := range s.items {
		if e.Resolved {
			continue
		}
		stats.Pending++
		stats.ByPriority[e.Priority.String()]++
		stats.ByReason[string(e.Reason)]++
	}
	return stats
}

// persistLocked rewrites the full ledger. Caller holds s.mu.
func (s *EscalationService) persistLocked(ctx context.Context) error {
	doc := escalation.Document{
		Counter:     s.counter,
		Escalations: make([]escalation.Escalation, 0, len(s.items)),
		LastUpdated: time.Now().UTC(),
	}
	for _, e := range s.items {
		doc.Escalations = append(doc.Escalations, *e)
	}
	// Stable file layout keeps diffs readable.
	sort.Slice(doc.Escalations, func(i, j int) bool {
		return doc.Escalations[i].ID < doc.Escalations[j].ID
	})

	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("persist escalations: %w", err)
	}
	return nil
}
