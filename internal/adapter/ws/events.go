package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventTaskResult        = "task.result"
	EventAgentStatus       = "agent.status"
	EventOverallStatus     = "fleet.status"
	EventEscalationCreated = "escalation.created"
	EventSchedulerState    = "scheduler.state"
)

// TaskResultEvent is broadcast after each scheduled or manual task run.
type TaskResultEvent struct {
	Agent           string  `json:"agent"`
	TaskID          string  `json:"task_id"`
	Status          string  `json:"status"`
	Success         bool    `json:"success"`
	Message         string  `json:"message,omitempty"`
	ExecutionTimeMS float64 `json:"execution_time_ms"`
}

// AgentStatusEvent is broadcast when an agent's derived status changes.
type AgentStatusEvent struct {
	Agent  string `json:"agent"`
	Status string `json:"status"`
}

// OverallStatusEvent is broadcast after a fleet-wide status reduction.
type OverallStatusEvent struct {
	Status string `json:"status"`
	Agents int    `json:"agents"`
}

// EscalationCreatedEvent is broadcast when a new escalation is persisted.
type EscalationCreatedEvent struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
	Agent    string `json:"agent"`
}

// SchedulerStateEvent is broadcast when the scheduler starts or stops.
type SchedulerStateEvent struct {
	Running bool `json:"running"`
}

// BroadcastEvent marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
