package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/osgard/sentinel/internal/port/notifier"
)

func TestSendPostsEmbed(t *testing.T) {
	var got discordWebhook
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("invalid payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	err := n.Send(context.Background(), notifier.Notification{
		Agent:    "fs-agent",
		Title:    "Disk critical",
		Message:  "volume at 98%",
		Priority: notifier.PriorityCritical,
		Data:     map[string]any{"volume": "/var", "used_pct": 98},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(got.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(got.Embeds))
	}
	e := got.Embeds[0]
	if e.Title != "Disk critical" || e.Color != 0x992D22 {
		t.Fatalf("unexpected embed: %+v", e)
	}
	if len(e.Fields) != 2 || e.Fields[0].Name != "used_pct" {
		t.Fatalf("data fields not sorted/complete: %+v", e.Fields)
	}
	if e.Footer == nil || !strings.Contains(e.Footer.Text, "fs-agent") {
		t.Fatalf("footer missing agent: %+v", e.Footer)
	}
}

func TestSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	if err := n.Send(context.Background(), notifier.Notification{Title: "x"}); err == nil {
		t.Fatal("expected error on 429")
	}
}
