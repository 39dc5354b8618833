// Package logchan implements the always-present log notification channel.
package logchan

import (
	"context"
	"log/slog"

	"github.com/osgard/sentinel/internal/port/notifier"
)

// Notifier writes notifications to the process log. It never fails, so the
// log channel is the delivery floor every alert is guaranteed to reach.
type Notifier struct{}

// NewNotifier creates the log channel notifier.
func NewNotifier() *Notifier { return &Notifier{} }

func (n *Notifier) Channel() notifier.Channel { return notifier.ChannelLog }

func (n *Notifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{}
}

// Send logs the notification at a level matching its priority.
func (n *Notifier) Send(_ context.Context, notification notifier.Notification) error {
	attrs := []any{
		"agent", notification.Agent,
		"title", notification.Title,
		"priority", notification.Priority,
	}
	switch notification.Priority {
	case notifier.PriorityCritical, notifier.PriorityHigh:
		slog.Error(notification.Message, attrs...)
	case notifier.PriorityMedium:
		slog.Warn(notification.Message, attrs...)
	default:
		slog.Info(notification.Message, attrs...)
	}
	return nil
}

func init() {
	notifier.Register(notifier.ChannelLog, func(_ map[string]string) (notifier.Notifier, error) {
		return NewNotifier(), nil
	})
}
