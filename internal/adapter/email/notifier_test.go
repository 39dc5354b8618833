package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/osgard/sentinel/internal/port/notifier"
)

func TestSendBuildsMail(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	n := NewNotifier(SMTPConfig{
		Host: "smtp.example.com",
		Port: "587",
		From: "sentinel@example.com",
		To:   []string{"ops@example.com"},
	})
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := n.Send(context.Background(), notifier.Notification{
		Agent:    "db-agent",
		Title:    "Backup stale",
		Message:  "no backup in 48h",
		Priority: notifier.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotAddr != "smtp.example.com:587" || gotFrom != "sentinel@example.com" {
		t.Fatalf("unexpected addr/from: %s %s", gotAddr, gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "ops@example.com" {
		t.Fatalf("unexpected recipients: %v", gotTo)
	}
	mail := string(gotMsg)
	if !strings.Contains(mail, "Subject: [HIGH] Backup stale") {
		t.Fatalf("subject missing priority/title:\n%s", mail)
	}
	if !strings.Contains(mail, "db-agent") {
		t.Fatalf("body missing agent:\n%s", mail)
	}
}

func TestSendUnconfigured(t *testing.T) {
	n := NewNotifier(SMTPConfig{})
	err := n.Send(context.Background(), notifier.Notification{Title: "x"})
	if !errors.Is(err, notifier.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
