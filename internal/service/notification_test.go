package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/osgard/sentinel/internal/port/notifier"
)

// mockNotifier implements notifier.Notifier for testing.
type mockNotifier struct {
	channel notifier.Channel
	sent    []notifier.Notification
	sendErr error
}

func (m *mockNotifier) Channel() notifier.Channel           { return m.channel }
func (m *mockNotifier) Capabilities() notifier.Capabilities { return notifier.Capabilities{} }
func (m *mockNotifier) Send(_ context.Context, n notifier.Notification) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, n)
	return nil
}

func TestNotificationService_NotifyListedChannels(t *testing.T) {
	slack := &mockNotifier{channel: notifier.ChannelSlack}
	discord := &mockNotifier{channel: notifier.ChannelDiscord}
	svc := NewNotificationService([]notifier.Notifier{slack, discord}, nil)

	svc.Notify(context.Background(), notifier.Notification{
		Title:    "Disk filling up",
		Message:  "85% used",
		Priority: notifier.PriorityHigh,
		Channels: []notifier.Channel{notifier.ChannelSlack},
	})

	if len(slack.sent) != 1 {
		t.Fatalf("expected 1 notification on slack, got %d", len(slack.sent))
	}
	if len(discord.sent) != 0 {
		t.Fatalf("expected 0 notifications on discord, got %d", len(discord.sent))
	}
	if slack.sent[0].Timestamp.IsZero() {
		t.Fatal("expected timestamp to be stamped")
	}
}

func TestNotificationService_DefaultsToLogChannel(t *testing.T) {
	slack := &mockNotifier{channel: notifier.ChannelSlack}
	svc := NewNotificationService([]notifier.Notifier{slack}, nil)

	// No channels listed: only the log channel receives it.
	svc.Notify(context.Background(), notifier.Notification{Title: "heartbeat"})

	if len(slack.sent) != 0 {
		t.Fatalf("expected slack untouched, got %d", len(slack.sent))
	}
	recent := svc.Recent()
	if len(recent) != 1 {
		t.Fatalf("expected 1 retained notification, got %d", len(recent))
	}
	if len(recent[0].Channels) != 1 || recent[0].Channels[0] != notifier.ChannelLog {
		t.Fatalf("expected default log channel, got %v", recent[0].Channels)
	}
}

func TestNotificationService_ChannelFailureIsolated(t *testing.T) {
	failing := &mockNotifier{channel: notifier.ChannelSlack, sendErr: errors.New("webhook 500")}
	ok := &mockNotifier{channel: notifier.ChannelDiscord}
	svc := NewNotificationService([]notifier.Notifier{failing, ok}, nil)

	svc.Notify(context.Background(), notifier.Notification{
		Title:    "DB down",
		Channels: []notifier.Channel{notifier.ChannelSlack, notifier.ChannelDiscord},
	})

	if len(ok.sent) != 1 {
		t.Fatalf("expected discord delivery despite slack failure, got %d", len(ok.sent))
	}
}

func TestNotificationService_UnconfiguredChannelSkipped(t *testing.T) {
	svc := NewNotificationService(nil, nil)

	// Must not panic or error out; just logs a warning.
	svc.Notify(context.Background(), notifier.Notification{
		Title:    "orphan",
		Channels: []notifier.Channel{notifier.ChannelEmail},
	})

	if len(svc.Recent()) != 1 {
		t.Fatal("notification should still be retained")
	}
}

func TestNotificationService_LogChannelAlwaysPresent(t *testing.T) {
	svc := NewNotificationService(nil, nil)
	if svc.ChannelCount() != 1 {
		t.Fatalf("expected the log channel, got %d channels", svc.ChannelCount())
	}
}

func TestNotificationService_SubscribersRunFirst(t *testing.T) {
	slack := &mockNotifier{channel: notifier.ChannelSlack}
	svc := NewNotificationService([]notifier.Notifier{slack}, nil)

	var seen []string
	svc.Subscribe(func(n notifier.Notification) {
		seen = append(seen, n.Title)
	})

	svc.Notify(context.Background(), notifier.Notification{
		Title:    "cache cold",
		Channels: []notifier.Channel{notifier.ChannelSlack},
	})

	if len(seen) != 1 || seen[0] != "cache cold" {
		t.Fatalf("expected subscriber to observe the notification, got %v", seen)
	}
	if len(slack.sent) != 1 {
		t.Fatalf("expected channel delivery too, got %d", len(slack.sent))
	}
}

func TestNotificationService_RecentCapped(t *testing.T) {
	svc := NewNotificationService(nil, nil)
	for i := 0; i < recentCap+10; i++ {
		svc.Notify(context.Background(), notifier.Notification{
			Title: fmt.Sprintf("n-%d", i),
		})
	}

	recent := svc.Recent()
	if len(recent) != recentCap {
		t.Fatalf("expected %d retained, got %d", recentCap, len(recent))
	}
	if recent[len(recent)-1].Title != fmt.Sprintf("n-%d", recentCap+9) {
		t.Fatalf("expected newest last, got %s", recent[len(recent)-1].Title)
	}
}
