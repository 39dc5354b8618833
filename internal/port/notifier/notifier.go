// Package notifier defines the notification port (interface) and channel taxonomy.
package notifier

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned when a notifier is not properly configured.
var ErrNotConfigured = errors.New("notifier: not configured")

// Channel identifies a delivery channel.
type Channel string

const (
	ChannelLog     Channel = "log"
	ChannelEmail   Channel = "email"
	ChannelSlack   Channel = "slack"
	ChannelDiscord Channel = "discord"
)

// Priority classifies how urgent a notification is.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Notification is the payload fanned out to channels. Ephemeral: only a
// bounded number of recent notifications are retained for inspection.
type Notification struct {
	Agent     string         `json:"agent"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Priority  Priority       `json:"priority"`
	Data      map[string]any `json:"data,omitempty"`
	Channels  []Channel      `json:"channels"`
	Timestamp time.Time      `json:"timestamp"`
}

// Capabilities declares which features a channel supports.
type Capabilities struct {
	RichFormatting bool `json:"rich_formatting"`
	Threads        bool `json:"threads"`
}

// Notifier is the port interface for one delivery channel.
type Notifier interface {
	// Channel returns the channel this notifier serves.
	Channel() Channel

	// Capabilities returns what this notifier supports.
	Capabilities() Capabilities

	// Send delivers a notification. Failures must be channel-local:
	// the caller isolates them so other channels still receive delivery.
	Send(ctx context.Context, notification Notification) error
}
