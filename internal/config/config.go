// Package config provides hierarchical configuration loading for Sentinel.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the sentinel core service.
type Config struct {
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
	Scheduler Scheduler `yaml:"scheduler"`
	Store     Store     `yaml:"store"`
	Cache     Cache     `yaml:"cache"`
	Notify    Notify    `yaml:"notify"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Scheduler holds the periodic control-loop configuration.
type Scheduler struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	AutoStart    bool          `yaml:"auto_start"`
	ChatChannel  string        `yaml:"chat_channel"` // "slack" or "discord"
}

// Store holds the durable ledger file paths.
type Store struct {
	EscalationsPath string `yaml:"escalations_path"`
	StatisticsPath  string `yaml:"statistics_path"`
}

// Cache holds report cache configuration.
type Cache struct {
	MaxSizeMB int64         `yaml:"max_size_mb"`
	ReportTTL time.Duration `yaml:"report_ttl"`
}

// Notify holds per-channel notifier configuration. A channel with an empty
// config is simply not constructed; the log channel always exists.
type Notify struct {
	Slack   SlackNotify   `yaml:"slack"`
	Discord DiscordNotify `yaml:"discord"`
	Email   EmailNotify   `yaml:"email"`
}

// SlackNotify holds the Slack incoming-webhook configuration.
type SlackNotify struct {
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordNotify holds the Discord webhook configuration.
type DiscordNotify struct {
	WebhookURL string `yaml:"webhook_url"`
}

// EmailNotify holds the SMTP configuration.
type EmailNotify struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	From     string `yaml:"from"`
	Password string `yaml:"password"`
	To       string `yaml:"to"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:3000",
		},
		Logging: Logging{
			Level:   "info",
			Service: "sentinel-core",
		},
		Scheduler: Scheduler{
			TickInterval: 30 * time.Second,
			AutoStart:    true,
			ChatChannel:  "slack",
		},
		Store: Store{
			EscalationsPath: "data/escalations.json",
			StatisticsPath:  "data/statistics.json",
		},
		Cache: Cache{
			MaxSizeMB: 16,
			ReportTTL: time.Minute,
		},
	}
}
