// Package email provides an SMTP-based notifier for the notification subsystem.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/osgard/sentinel/internal/port/notifier"
)

// SMTPConfig holds the configuration for SMTP connections.
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
	To       []string
}

// Notifier sends email notifications via SMTP.
type Notifier struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg SMTPConfig) *Notifier {
	return &Notifier{cfg: cfg, send: smtp.SendMail}
}

func (n *Notifier) Channel() notifier.Channel { return notifier.ChannelEmail }

func (n *Notifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{RichFormatting: true}
}

// Send delivers the notification as a plain HTML mail.
func (n *Notifier) Send(_ context.Context, notification notifier.Notification) error {
	if n.cfg.Host == "" || n.cfg.From == "" || len(n.cfg.To) == 0 {
		return notifier.ErrNotConfigured
	}

	addr := fmt.Sprintf("%s:%s", n.cfg.Host, n.cfg.Port)
	subject := fmt.Sprintf("[%s] %s", strings.ToUpper(string(notification.Priority)), notification.Title)
	body := buildBody(notification)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		n.cfg.From, strings.Join(n.cfg.To, ", "), subject, body)

	var auth smtp.Auth
	if n.cfg.Password != "" {
		auth = smtp.PlainAuth("", n.cfg.From, n.cfg.Password, n.cfg.Host)
	}

	return n.send(addr, auth, n.cfg.From, n.cfg.To, []byte(msg))
}

func buildBody(notification notifier.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%s</p>", notification.Message)
	if notification.Agent != "" {
		fmt.Fprintf(&b, "<p><em>Agent: %s</em></p>", notification.Agent)
	}
	if len(notification.Data) > 0 {
		b.WriteString("<ul>")
		for k, v := range notification.Data {
			fmt.Fprintf(&b, "<li><b>%s</b>: %v</li>", k, v)
		}
		b.WriteString("</ul>")
	}
	return b.String()
}

func init() {
	notifier.Register(notifier.ChannelEmail, func(config map[string]string) (notifier.Notifier, error) {
		cfg := SMTPConfig{
			Host:     config["host"],
			Port:     config["port"],
			From:     config["from"],
			Password: config["password"],
		}
		if to := config["to"]; to != "" {
			for _, addr := range strings.Split(to, ",") {
				cfg.To = append(cfg.To, strings.TrimSpace(addr))
			}
		}
		if cfg.Port == "" {
			cfg.Port = "587"
		}
		return NewNotifier(cfg), nil
	})
}
