package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q, want default 8080", cfg.Server.Port)
	}
	if cfg.Scheduler.TickInterval != 30*time.Second {
		t.Fatalf("tick_interval = %v, want 30s", cfg.Scheduler.TickInterval)
	}
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentinel.yaml")
	data := []byte("server:\n  port: \"9090\"\nscheduler:\n  tick_interval: 10s\n  chat_channel: discord\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Scheduler.TickInterval != 10*time.Second {
		t.Fatalf("tick_interval = %v, want 10s", cfg.Scheduler.TickInterval)
	}
	if cfg.Scheduler.ChatChannel != "discord" {
		t.Fatalf("chat_channel = %q, want discord", cfg.Scheduler.ChatChannel)
	}
	// Untouched fields keep their defaults.
	if cfg.Store.EscalationsPath != "data/escalations.json" {
		t.Fatalf("escalations_path = %q, want default", cfg.Store.EscalationsPath)
	}
}

func TestLoadFromEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentinel.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SENTINEL_PORT", "7070")
	t.Setenv("SENTINEL_TICK_INTERVAL", "5s")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("port = %q, want env override 7070", cfg.Server.Port)
	}
	if cfg.Scheduler.TickInterval != 5*time.Second {
		t.Fatalf("tick_interval = %v, want 5s", cfg.Scheduler.TickInterval)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"sub-second tick", func(c *Config) { c.Scheduler.TickInterval = 100 * time.Millisecond }},
		{"bad chat channel", func(c *Config) { c.Scheduler.ChatChannel = "pager" }},
		{"empty escalations path", func(c *Config) { c.Store.EscalationsPath = "" }},
		{"zero cache size", func(c *Config) { c.Cache.MaxSizeMB = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if err := validate(&cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
