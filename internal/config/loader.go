package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "sentinel.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "SENTINEL_PORT")
	setString(&cfg.Server.CORSOrigin, "SENTINEL_CORS_ORIGIN")
	setString(&cfg.Logging.Level, "SENTINEL_LOG_LEVEL")
	setString(&cfg.Logging.Service, "SENTINEL_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "SENTINEL_LOG_ASYNC")
	setDuration(&cfg.Scheduler.TickInterval, "SENTINEL_TICK_INTERVAL")
	setBool(&cfg.Scheduler.AutoStart, "SENTINEL_SCHEDULER_AUTOSTART")
	setString(&cfg.Scheduler.ChatChannel, "SENTINEL_CHAT_CHANNEL")
	setString(&cfg.Store.EscalationsPath, "SENTINEL_ESCALATIONS_PATH")
	setString(&cfg.Store.StatisticsPath, "SENTINEL_STATISTICS_PATH")
	setInt64(&cfg.Cache.MaxSizeMB, "SENTINEL_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.ReportTTL, "SENTINEL_REPORT_TTL")
	setString(&cfg.Notify.Slack.WebhookURL, "SENTINEL_SLACK_WEBHOOK")
	setString(&cfg.Notify.Discord.WebhookURL, "SENTINEL_DISCORD_WEBHOOK")
	setString(&cfg.Notify.Email.Host, "SENTINEL_SMTP_HOST")
	setString(&cfg.Notify.Email.Port, "SENTINEL_SMTP_PORT")
	setString(&cfg.Notify.Email.From, "SENTINEL_SMTP_FROM")
	setString(&cfg.Notify.Email.Password, "SENTINEL_SMTP_PASSWORD")
	setString(&cfg.Notify.Email.To, "SENTINEL_SMTP_TO")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Scheduler.TickInterval < time.Second {
		return errors.New("scheduler.tick_interval must be >= 1s")
	}
	switch cfg.Scheduler.ChatChannel {
	case "slack", "discord":
	default:
		return fmt.Errorf("scheduler.chat_channel must be slack or discord, got %q", cfg.Scheduler.ChatChannel)
	}
	if cfg.Store.EscalationsPath == "" {
		return errors.New("store.escalations_path is required")
	}
	if cfg.Store.StatisticsPath == "" {
		return errors.New("store.statistics_path is required")
	}
	if cfg.Cache.MaxSizeMB < 1 {
		return errors.New("cache.max_size_mb must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
