package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ChannelConfig describes one webhook-style notification endpoint.
// List order is priority order: the first entry is the primary channel,
// the rest are backups.
type ChannelConfig struct {
	Type       string `yaml:"type"` // discord | telegram
	WebhookURL string `yaml:"webhook_url,omitempty"`
	BotToken   string `yaml:"bot_token,omitempty"`
	ChatID     string `yaml:"chat_id,omitempty"`
	Enabled    bool   `yaml:"enabled"`
}

// EmailConfig describes the secondary mail channel.
type EmailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	SMTPHost string   `yaml:"smtp_host"`
	SMTPPort int      `yaml:"smtp_port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// Config holds all application configuration.
type Config struct {
	// Assets maps a category label to the symbols monitored under it.
	Assets map[string][]string `yaml:"assets"`

	Monitor struct {
		PollingIntervalMinutes int     `yaml:"polling_interval_minutes"`
		WindowRadius           int     `yaml:"window_radius"`
		SensitivityMode        string  `yaml:"sensitivity_mode"` // fixed | volatility_normalized
		MinMovementFraction    float64 `yaml:"min_movement_fraction"`
		VolatilityFactor       float64 `yaml:"volatility_factor"`
		TrendFilterSpan        int     `yaml:"trend_filter_span"`
		TrendStrengthThreshold float64 `yaml:"trend_strength_threshold"`
		LookbackDays           int     `yaml:"lookback_days"`
		Timezone               string  `yaml:"timezone"`
		BackoffBaseSeconds     int     `yaml:"backoff_base_seconds"`
		BackoffCapSeconds      int     `yaml:"backoff_cap_seconds"`
	} `yaml:"monitor"`

	Notifications struct {
		Policy            string          `yaml:"policy"` // any | all
		Channels          []ChannelConfig `yaml:"channels"`
		Email             EmailConfig     `yaml:"email"`
		MaxAttempts       int             `yaml:"max_attempts"`
		RetryDelaySeconds int             `yaml:"retry_delay_seconds"`
	} `yaml:"notifications"`

	DataSource struct {
		Mock bool `yaml:"mock"`
	} `yaml:"data_source"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Telemetry struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"telemetry"`

	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		applied := false
		for i := range cfg.Notifications.Channels {
			if cfg.Notifications.Channels[i].Type == "discord" {
				cfg.Notifications.Channels[i].WebhookURL = v
				applied = true
			}
		}
		if !applied {
			cfg.Notifications.Channels = append(cfg.Notifications.Channels, ChannelConfig{
				Type: "discord", WebhookURL: v, Enabled: true,
			})
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		for i := range cfg.Notifications.Channels {
			if cfg.Notifications.Channels[i].Type == "telegram" {
				cfg.Notifications.Channels[i].BotToken = v
			}
		}
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		for i := range cfg.Notifications.Channels {
			if cfg.Notifications.Channels[i].Type == "telegram" {
				cfg.Notifications.Channels[i].ChatID = v
			}
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("POLLING_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.PollingIntervalMinutes = n
		}
	}

	// Defaults
	if len(cfg.Assets) == 0 {
		cfg.Assets = map[string][]string{"indices": {"^GSPC"}}
	}
	if cfg.Monitor.PollingIntervalMinutes == 0 {
		cfg.Monitor.PollingIntervalMinutes = 15
	}
	if cfg.Monitor.WindowRadius == 0 {
		cfg.Monitor.WindowRadius = 5
	}
	if cfg.Monitor.SensitivityMode == "" {
		cfg.Monitor.SensitivityMode = "volatility_normalized"
	}
	if cfg.Monitor.MinMovementFraction == 0 {
		cfg.Monitor.MinMovementFraction = 0.005
	}
	if cfg.Monitor.VolatilityFactor == 0 {
		cfg.Monitor.VolatilityFactor = 1.5
	}
	if cfg.Monitor.LookbackDays == 0 {
		cfg.Monitor.LookbackDays = 5
	}
	if cfg.Monitor.Timezone == "" {
		cfg.Monitor.Timezone = "America/New_York"
	}
	if cfg.Monitor.BackoffBaseSeconds == 0 {
		cfg.Monitor.BackoffBaseSeconds = 60
	}
	if cfg.Monitor.BackoffCapSeconds == 0 {
		cfg.Monitor.BackoffCapSeconds = 900
	}
	if cfg.Notifications.Policy == "" {
		cfg.Notifications.Policy = "any"
	}
	if cfg.Notifications.MaxAttempts == 0 {
		cfg.Notifications.MaxAttempts = 3
	}
	if cfg.Notifications.RetryDelaySeconds == 0 {
		cfg.Notifications.RetryDelaySeconds = 5
	}

	return cfg, nil
}

// Validate checks that all required fields are consistent. Configuration
// errors are the only fatal error class; nothing here can occur in
// steady state.
func (c *Config) Validate() error {
	total := 0
	for category, symbols := range c.Assets {
		if len(symbols) == 0 {
			return fmt.Errorf("assets.%s has no symbols", category)
		}
		total += len(symbols)
	}
	if total == 0 {
		return fmt.Errorf("no assets configured")
	}

	if c.Monitor.WindowRadius < 1 {
		return fmt.Errorf("monitor.window_radius must be >= 1")
	}
	switch c.Monitor.SensitivityMode {
	case "fixed", "volatility_normalized":
	default:
		return fmt.Errorf("monitor.sensitivity_mode must be fixed or volatility_normalized, got %q", c.Monitor.SensitivityMode)
	}
	if c.Monitor.TrendStrengthThreshold < 0 || c.Monitor.TrendStrengthThreshold >= 1 {
		return fmt.Errorf("monitor.trend_strength_threshold must be in [0, 1)")
	}
	if _, err := time.LoadLocation(c.Monitor.Timezone); err != nil {
		return fmt.Errorf("monitor.timezone: %w", err)
	}

	switch c.Notifications.Policy {
	case "any", "all":
	default:
		return fmt.Errorf("notifications.policy must be any or all, got %q", c.Notifications.Policy)
	}
	enabled := 0
	for i, ch := range c.Notifications.Channels {
		switch ch.Type {
		case "discord":
			if ch.Enabled && ch.WebhookURL == "" {
				return fmt.Errorf("notifications.channels[%d]: discord channel needs webhook_url", i)
			}
		case "telegram":
			if ch.Enabled && (ch.BotToken == "" || ch.ChatID == "") {
				return fmt.Errorf("notifications.channels[%d]: telegram channel needs bot_token and chat_id", i)
			}
		default:
			return fmt.Errorf("notifications.channels[%d]: unknown type %q", i, ch.Type)
		}
		if ch.Enabled {
			enabled++
		}
	}
	if c.Notifications.Email.Enabled {
		if c.Notifications.Email.SMTPHost == "" || len(c.Notifications.Email.To) == 0 {
			return fmt.Errorf("notifications.email needs smtp_host and at least one recipient")
		}
		enabled++
	}
	if enabled == 0 {
		return fmt.Errorf("no notification channel is enabled")
	}
	return nil
}

// PollingInterval returns the tick cadence as a duration.
func (c *Config) PollingInterval() time.Duration {
	return time.Duration(c.Monitor.PollingIntervalMinutes) * time.Minute
}

// Lookback returns the fetch window as a duration.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Monitor.LookbackDays) * 24 * time.Hour
}
