// Package slack implements a notifier.Notifier for Slack incoming webhooks.
package slack

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

// Notifier sends notifications to Slack via incoming webhook. Deliveries go
// through a circuit breaker so a dead webhook is not hammered every tick.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewNotifier creates a Slack notifier with the given webhook URL.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
		breaker:    resilience.NewBreaker(5, 2*time.Minute),
	}
}

func (n *Notifier) Channel() notifier.Channel { return notifier.ChannelSlack }

func (n *Notifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{
		RichFormatting: true,
		Threads:        false,
	}
}

// slackMessage is the Slack Block Kit message payload.
type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (n *Notifier) Send(ctx context.Context, notification notifier.Notification) error {
	if n.webhookURL == "" {
		return notifier.ErrNotConfigured
	}

	header := fmt.Sprintf("%s %s", priorityTag(notification.Priority), notification.Title)

	msg := slackMessage{
		Blocks: []slackBlock{
			{Type: "header", Text: &slackText{Type: "plain_text", Text: header}},
			{Type: "section", Text: &slackText{Type: "mrkdwn", Text: notification.Message}},
		},
	}

	if len(notification.Data) > 0 {
		msg.Blocks = append(msg.Blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: formatData(notification.Data)},
		})
	}

	if notification.Agent != "" {
		msg.Blocks = append(msg.Blocks, slackBlock{
			Type: "context",
			Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("_Agent: %s_", notification.Agent)},
		})
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack marshal: %w", err)
	}

	return n.breaker.Execute(func() error {
		return n.post(ctx, body)
	})
}

func (n *Notifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req) //nolint:gosec // webhook URL from trusted config
	if err != nil {
		return fmt.Errorf("slack send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack API %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// formatData renders the structured payload as stable mrkdwn bullet lines.
func formatData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "• *%s*: %v\n", k, data[k])
	}
	return buf.String()
}

func priorityTag(p notifier.Priority) string {
	switch p {
	case notifier.PriorityCritical:
		return "[CRITICAL]"
	case notifier.PriorityHigh:
		return "[HIGH]"
	case notifier.PriorityMedium:
		return "[MEDIUM]"
	default:
		return "[LOW]"
	}
}
