package config

import "time"

// Default values for configuration fields.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultStatePath   = "data/gavel.db"
	DefaultAuditPath   = "data/audit.db"
	DefaultBusyTimeout = 5 * time.Second

	DefaultMetricsListenAddress = "127.0.0.1:9090"

	DefaultReminderSchedule      = "0 * * * *" // hourly
	DefaultReminderLookaheadDays = 7

	DefaultRuleDebounceMS = 100
)

// ApplyDefaults fills unset fields with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Storage.StatePath == "" {
		cfg.Storage.StatePath = DefaultStatePath
	}
	if cfg.Storage.AuditPath == "" {
		cfg.Storage.AuditPath = DefaultAuditPath
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = DefaultBusyTimeout
	}
	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Reminder.Schedule == "" {
		cfg.Reminder.Schedule = DefaultReminderSchedule
	}
	if cfg.Reminder.LookaheadDays == 0 {
		cfg.Reminder.LookaheadDays = DefaultReminderLookaheadDays
	}
	if cfg.Rules.DebounceMS == 0 {
		cfg.Rules.DebounceMS = DefaultRuleDebounceMS
	}
}

// Defaults returns a fully defaulted configuration.
func Defaults() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
