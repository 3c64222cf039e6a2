package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads, defaults, and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadWithEnvOverrides loads a config file and applies GAVEL_*
// environment overrides on top, re-validating the result. Environment
// always wins over file values.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("GAVEL_COURT", &cfg.Court)
	setString("GAVEL_LOG_LEVEL", &cfg.Logging.Level)
	setString("GAVEL_LOG_FORMAT", &cfg.Logging.Format)
	setString("GAVEL_RULES_PATH", &cfg.Rules.Path)
	setBool("GAVEL_RULES_WATCH", &cfg.Rules.Watch)
	setString("GAVEL_STATE_PATH", &cfg.Storage.StatePath)
	setString("GAVEL_AUDIT_PATH", &cfg.Storage.AuditPath)
	setBool("GAVEL_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setString("GAVEL_METRICS_LISTEN_ADDRESS", &cfg.Metrics.ListenAddress)
	setBool("GAVEL_REMINDER_ENABLED", &cfg.Reminder.Enabled)
	setString("GAVEL_REMINDER_SCHEDULE", &cfg.Reminder.Schedule)
	setInt("GAVEL_REMINDER_LOOKAHEAD_DAYS", &cfg.Reminder.LookaheadDays)
}
