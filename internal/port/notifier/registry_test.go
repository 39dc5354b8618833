package notifier

import (
	"context"
	"testing"
)

type stubNotifier struct {
	ch Channel
}

func (s *stubNotifier) Channel() Channel           { return s.ch }
func (s *stubNotifier) Capabilities() Capabilities { return Capabilities{} }
func (s *stubNotifier) Send(context.Context, Notification) error {
	return nil
}

func TestRegistryFactoryLifecycle(t *testing.T) {
	const ch = Channel("pager")
	Register(ch, func(config map[string]string) (Notifier, error) {
		return &stubNotifier{ch: ch}, nil
	})

	n, err := New(ch, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n.Channel() != ch {
		t.Fatalf("expected channel %q, got %q", ch, n.Channel())
	}

	found := false
	for _, c := range Available() {
		if c == ch {
			found = true
		}
	}
	if !found {
		t.Fatalf("Available() = %v, missing %q", Available(), ch)
	}
}

func TestRegistryUnknownChannel(t *testing.T) {
	if _, err := New(Channel("carrier-pigeon"), nil); err == nil {
		t.Fatal("expected error for unregistered channel")
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	const ch = Channel("pager-dup")
	Register(ch, func(map[string]string) (Notifier, error) {
		return &stubNotifier{ch: ch}, nil
	})

	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	Register(ch, func(map[string]string) (Notifier, error) {
		return &stubNotifier{ch: ch}, nil
	})
}
