package slack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/osgard/sentinel/internal/port/notifier"
)

func TestSendPostsBlockKitPayload(t *testing.T) {
	var got slackMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("invalid payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	err := n.Send(context.Background(), notifier.Notification{
		Agent:    "db-agent",
		Title:    "Check failed",
		Message:  "replication lag over threshold",
		Priority: notifier.PriorityHigh,
		Data:     map[string]any{"lag_seconds": 91},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(got.Blocks) != 4 {
		t.Fatalf("expected 4 blocks (header, section, data, context), got %d", len(got.Blocks))
	}
	if !strings.Contains(got.Blocks[0].Text.Text, "[HIGH]") {
		t.Fatalf("header missing priority tag: %q", got.Blocks[0].Text.Text)
	}
	if !strings.Contains(got.Blocks[2].Text.Text, "lag_seconds") {
		t.Fatalf("data block missing payload: %q", got.Blocks[2].Text.Text)
	}
	if !strings.Contains(got.Blocks[3].Text.Text, "db-agent") {
		t.Fatalf("context block missing agent: %q", got.Blocks[3].Text.Text)
	}
}

func TestSendHTTPErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	err := n.Send(context.Background(), notifier.Notification{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected 400 error, got %v", err)
	}
}

func TestSendUnconfigured(t *testing.T) {
	n := NewNotifier("")
	err := n.Send(context.Background(), notifier.Notification{Title: "x"})
	if !errors.Is(err, notifier.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
