package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/osgard/sentinel/internal/adapter/logchan"
	otelmetrics "github.com/osgard/sentinel/internal/adapter/otel"
	"github.com/osgard/sentinel/internal/port/notifier"
)

// recentCap bounds the retained notifications kept for inspection.
const recentCap = 100

// NotificationService fans a notification out to its listed channels.
// Channel failures are isolated: one broken webhook never blocks delivery
// to the others.
type NotificationService struct {
	mu          sync.RWMutex
	channels    map[notifier.Channel]notifier.Notifier
	subscribers []func(notifier.Notification)
	recent      []notifier.Notification
	inst        *otelmetrics.Metrics // optional
}

// NewNotificationService creates the service with the given channel
// notifiers. The log channel is always present even when not supplied.
func NewNotificationService(notifiers []notifier.Notifier, inst *otelmetrics.Metrics) *NotificationService {
	s := &NotificationService{
		channels: make(map[notifier.Channel]notifier.Notifier, len(notifiers)+1),
		inst:     inst,
	}
	for _, n := range notifiers {
		s.channels[n.Channel()] = n
	}
	if _, ok := s.channels[notifier.ChannelLog]; !ok {
		s.channels[notifier.ChannelLog] = logchan.NewNotifier()
	}
	return s
}

// Subscribe registers an in-process observer invoked before channel
// delivery on every notification.
func (s *NotificationService) Subscribe(fn func(notifier.Notification)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Notify stamps and dispatches the notification. Subscribers run first,
// then each listed channel independently.
func (s *NotificationService) Notify(ctx context.Context, n notifier.Notification) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	if len(n.Channels) == 0 {
		n.Channels = []notifier.Channel{notifier.ChannelLog}
	}

	s.mu.Lock()
	subs := make([]func(notifier.Notification), len(s.subscribers))
	copy(subs, s.subscribers)
	s.recent = append(s.recent, n)
	if len(s.recent) > recentCap {
		s.recent = s.recent[len(s.recent)-recentCap:]
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}

	for _, ch := range n.Channels {
		s.mu.RLock()
		target, ok := s.channels[ch]
		s.mu.RUnlock()

		if !ok {
			slog.Warn("notification channel not configured", "channel", ch, "title", n.Title)
			continue
		}
		if err := target.Send(ctx, n); err != nil {
			slog.Warn("notification send failed",
				"channel", ch,
				"title", n.Title,
				"error", err,
			)
			continue
		}
		if s.inst != nil {
			s.inst.NotificationsSent.Add(ctx, 1, metric.WithAttributes(
				attribute.String("channel", string(ch)),
			))
		}
		slog.Debug("notification sent", "channel", ch, "title", n.Title)
	}
}

// Recent returns a copy of the retained notifications, oldest first.
func (s *NotificationService) Recent() []notifier.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]notifier.Notification, len(s.recent))
	copy(out, s.recent)
	return out
}

// ChannelCount returns the number of configured channels.
func (s *NotificationService) ChannelCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels)
}
