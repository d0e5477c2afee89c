// Package config provides centralized configuration for dailyclocks runtime values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "DAILYCLOCKS_"

// RuntimeConfig holds all runtime configuration values.
type RuntimeConfig struct {
	// Timer configuration
	Timer TimerConfig `yaml:"timer"`

	// Scheduler configuration
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Completion alert configuration
	Notify NotifyConfig `yaml:"notify"`

	// HTTP client configuration
	HTTP HTTPConfig `yaml:"http"`

	// Headless runner configuration
	Daemon DaemonConfig `yaml:"daemon"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Dashboard configuration
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// TimerConfig holds countdown configuration.
type TimerConfig struct {
	// TickInterval is how often a running timer recomputes its remaining time.
	// Default: 1s
	TickInterval time.Duration `yaml:"tick_interval"`

	// GraceDelay is how long a completed timer stays visible before removal.
	// Default: 2s
	GraceDelay time.Duration `yaml:"grace_delay"`
}

// SchedulerConfig holds midnight rollover configuration.
type SchedulerConfig struct {
	// PollSpec is the cron spec (with seconds) of the rollover check.
	// Default: every minute at second 0
	PollSpec string `yaml:"poll_spec"`

	// RolloverWindow is how long after local midnight a poll still rolls over.
	// Default: 1m
	RolloverWindow time.Duration `yaml:"rollover_window"`
}

// NotifyConfig holds completion alert configuration.
type NotifyConfig struct {
	// Bell writes a terminal bell on completion.
	Bell bool `yaml:"bell"`

	// Audio plays a short tone on completion.
	Audio bool `yaml:"audio"`

	// AlertDuration is the length of the tone.
	// Default: 2s
	AlertDuration time.Duration `yaml:"alert_duration"`

	// WebhookURL receives a JSON payload on completion when set.
	WebhookURL string `yaml:"webhook_url"`

	// WebhookType selects the payload shape: generic, slack or discord.
	// Default: generic
	WebhookType string `yaml:"webhook_type"`

	// WebhookTemplate is an optional text/template for generic payloads.
	WebhookTemplate string `yaml:"webhook_template"`
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the maximum number of attempts.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// RetryDelays are the delays before each attempt.
	// Default: [0s, 2s, 5s]
	RetryDelays []time.Duration `yaml:"retry_delays"`
}

// DaemonConfig holds headless runner configuration.
type DaemonConfig struct {
	// KillTimeout is how long 'run --stop' waits for the runner to exit.
	// Default: 5s
	KillTimeout time.Duration `yaml:"kill_timeout"`
}

// StorageConfig holds storage-related configuration.
type StorageConfig struct {
	// Path is the database directory. Empty uses the XDG data directory,
	// ":memory:" uses a throwaway in-memory store.
	Path string `yaml:"path"`
}

// DashboardConfig holds dashboard configuration.
type DashboardConfig struct {
	// RefreshInterval is how often the dashboard redraws.
	// Default: 250ms
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Timer: TimerConfig{
			TickInterval: time.Second,
			GraceDelay:   2 * time.Second,
		},
		Scheduler: SchedulerConfig{
			PollSpec:       "0 * * * * *",
			RolloverWindow: time.Minute,
		},
		Notify: NotifyConfig{
			Bell:          true,
			Audio:         true,
			AlertDuration: 2 * time.Second,
			WebhookType:   "generic",
		},
		HTTP: HTTPConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 3,
			RetryDelays: []time.Duration{
				0,               // Immediate first attempt
				2 * time.Second, // Retry after 2s
				5 * time.Second, // Retry after 5s
			},
		},
		Daemon: DaemonConfig{
			KillTimeout: 5 * time.Second,
		},
		Dashboard: DashboardConfig{
			RefreshInterval: 250 * time.Millisecond,
		},
	}
}

func envDuration(name string, dst *time.Duration) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			*dst = d
		}
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// loadFromEnv loads configuration overrides from environment variables.
// Unparseable values are ignored.
func (c *RuntimeConfig) loadFromEnv() {
	envDuration("TICK_INTERVAL", &c.Timer.TickInterval)
	envDuration("GRACE_DELAY", &c.Timer.GraceDelay)

	if v := os.Getenv(EnvPrefix + "POLL_SPEC"); v != "" {
		c.Scheduler.PollSpec = v
	}
	envDuration("ROLLOVER_WINDOW", &c.Scheduler.RolloverWindow)

	envBool("BELL", &c.Notify.Bell)
	envBool("AUDIO", &c.Notify.Audio)
	if v := os.Getenv(EnvPrefix + "WEBHOOK_URL"); v != "" {
		c.Notify.WebhookURL = v
	}
	if v := os.Getenv(EnvPrefix + "WEBHOOK_TYPE"); v != "" {
		c.Notify.WebhookType = v
	}

	envDuration("HTTP_TIMEOUT", &c.HTTP.Timeout)
	if v := os.Getenv(EnvPrefix + "HTTP_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.HTTP.MaxRetries = n
		}
	}

	if v := os.Getenv(EnvPrefix + "DATABASE"); v != "" {
		c.Storage.Path = v
	}
}

// ReloadFromEnv reloads configuration from environment variables.
func (c *RuntimeConfig) ReloadFromEnv() {
	c.loadFromEnv()
}

// Reset resets the configuration to defaults.
// This is primarily useful for testing.
func (c *RuntimeConfig) Reset() {
	defaults := DefaultRuntimeConfig()
	*c = *defaults
}

// Validate reports the first value that cannot drive the timers.
func (c *RuntimeConfig) Validate() error {
	switch {
	case c.Timer.TickInterval <= 0:
		return fmt.Errorf("timer.tick_interval must be positive, got %s", c.Timer.TickInterval)
	case c.Timer.GraceDelay < 0:
		return fmt.Errorf("timer.grace_delay must not be negative, got %s", c.Timer.GraceDelay)
	case c.Scheduler.PollSpec == "":
		return fmt.Errorf("scheduler.poll_spec must not be empty")
	case c.Scheduler.RolloverWindow <= 0:
		return fmt.Errorf("scheduler.rollover_window must be positive, got %s", c.Scheduler.RolloverWindow)
	case c.Dashboard.RefreshInterval <= 0:
		return fmt.Errorf("dashboard.refresh_interval must be positive, got %s", c.Dashboard.RefreshInterval)
	}
	return nil
}
