package config

import (
	"fmt"
	"strings"
)

// FieldError is a validation error for one configuration field.
type FieldError struct {
	// Field is the dotted path to the field, e.g. "storage.state_path".
	Field string

	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects all field errors found in one pass.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "configuration validation failed: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("  - " + err.Error() + "\n")
	}
	return sb.String()
}

// Validate checks the configuration, collecting every error rather
// than stopping at the first.
func Validate(cfg *Config) error {
	var errs []FieldError
	add := func(field, message string) {
		errs = append(errs, FieldError{Field: field, Message: message})
	}

	if cfg.Court == "" {
		add("court", "court identifier is required")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("logging.level", fmt.Sprintf("unknown level %q", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		add("logging.format", fmt.Sprintf("unknown format %q", cfg.Logging.Format))
	}

	if cfg.Storage.StatePath == "" {
		add("storage.state_path", "state database path is required")
	}
	if cfg.Storage.AuditPath == "" {
		add("storage.audit_path", "audit database path is required")
	}
	if cfg.Storage.StatePath != "" && cfg.Storage.StatePath == cfg.Storage.AuditPath {
		add("storage.audit_path", "audit database must not share a file with state")
	}

	if cfg.Rules.Watch && cfg.Rules.Path == "" {
		add("rules.watch", "watch requires rules.path")
	}
	if cfg.Rules.DebounceMS < 0 {
		add("rules.debounce_ms", "must not be negative")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddress == "" {
		add("metrics.listen_address", "required when metrics are enabled")
	}

	if cfg.Reminder.LookaheadDays < 0 {
		add("reminder.lookahead_days", "must not be negative")
	}
	if cfg.Reminder.Enabled && cfg.Reminder.Schedule == "" {
		add("reminder.schedule", "required when the reminder scanner is enabled")
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
