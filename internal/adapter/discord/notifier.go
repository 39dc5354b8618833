// Package discord implements a notifier.Notifier for Discord webhooks.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/osgard/sentinel/internal/port/notifier"
	"github.com/osgard/sentinel/internal/resilience"
)

// Notifier sends notifications to Discord via incoming webhook. Deliveries
// go through a circuit breaker so a dead webhook is not hammered every tick.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewNotifier creates a Discord notifier with the given webhook URL.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
		breaker:    resilience.NewBreaker(5, 2*time.Minute),
	}
}

func (n *Notifier) Channel() notifier.Channel { return notifier.ChannelDiscord }

func (n *Notifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{
		RichFormatting: true,
		Threads:        true,
	}
}

// discordWebhook is the Discord webhook payload with embeds.
type discordWebhook struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      *discordFooter `json:"footer,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

func (n *Notifier) Send(ctx context.Context, notification notifier.Notification) error {
	if n.webhookURL == "" {
		return notifier.ErrNotConfigured
	}

	embed := discordEmbed{
		Title:       notification.Title,
		Description: notification.Message,
		Color:       priorityColor(notification.Priority),
		Fields:      dataFields(notification.Data),
	}

	if notification.Agent != "" {
		embed.Footer = &discordFooter{Text: "Agent: " + notification.Agent}
	}

	msg := discordWebhook{
		Embeds: []discordEmbed{embed},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("discord marshal: %w", err)
	}

	return n.breaker.Execute(func() error {
		return n.post(ctx, body)
	})
}

func (n *Notifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req) //nolint:gosec // webhook URL from trusted config
	if err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Discord returns 204 on success
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord API %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// dataFields renders the structured payload as embed fields in stable order.
func dataFields(data map[string]any) []discordField {
	if len(data) == 0 {
		return nil
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]discordField, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, discordField{
			Name:   k,
			Value:  fmt.Sprintf("%v", data[k]),
			Inline: true,
		})
	}
	return fields
}

// priorityColor returns Discord embed color integers for notification priorities.
func priorityColor(p notifier.Priority) int {
	switch p {
	case notifier.PriorityCritical:
		return 0x992D22 // dark red
	case notifier.PriorityHigh:
		return 0xE74C3C // red
	case notifier.PriorityMedium:
		return 0xF39C12 // orange
	default:
		return 0x3498DB // blue
	}
}
