// Package config defines the engine's YAML configuration: file
// loading, defaults, environment overrides, and validation.
package config

import "time"

// Config is the root configuration.
type Config struct {
	// Court is the court identifier this instance serves, e.g. "nd-cal".
	Court string `yaml:"court"`

	Logging  LoggingConfig  `yaml:"logging"`
	Rules    RulesConfig    `yaml:"rules"`
	Storage  StorageConfig  `yaml:"storage"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Reminder ReminderConfig `yaml:"reminder"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactKeys lists log attribute keys to redact (sealed-case party
	// names and similar).
	RedactKeys []string `yaml:"redact_keys"`
}

// RulesConfig configures the local-rule source.
type RulesConfig struct {
	// Path is the rule file or directory. Empty means rules come only
	// from the rule store in the state database.
	Path string `yaml:"path"`

	// Watch enables hot-reload of rule files.
	Watch bool `yaml:"watch"`

	// DebounceMS is the watch debounce interval in milliseconds.
	DebounceMS int `yaml:"debounce_ms"`
}

// StorageConfig configures the state and audit databases.
type StorageConfig struct {
	// StatePath is the engine state SQLite file.
	StatePath string `yaml:"state_path"`

	// AuditPath is the append-only audit log SQLite file. Kept separate
	// from state on purpose.
	AuditPath string `yaml:"audit_path"`

	// BusyTimeout is the SQLite lock wait.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// ListenAddress serves /metrics when enabled.
	ListenAddress string `yaml:"listen_address"`
}

// ReminderConfig configures the deadline reminder scanner.
type ReminderConfig struct {
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression; default is hourly.
	Schedule string `yaml:"schedule"`

	// LookaheadDays flags open deadlines due within this many days.
	LookaheadDays int `yaml:"lookahead_days"`
}
