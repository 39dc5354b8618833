// Package broadcast defines the port for pushing real-time events to connected clients.
package broadcast

import "context"

// Broadcaster sends real-time events (task results, status changes,
// escalations) to all connected clients.
type Broadcaster interface {
	// BroadcastEvent sends a typed event to all connected clients.
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
