package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gavel.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "court: nd-cal\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != DefaultLogLevel || cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("logging defaults not applied: %+v", cfg.Logging)
	}
	if cfg.Storage.StatePath != DefaultStatePath || cfg.Storage.AuditPath != DefaultAuditPath {
		t.Errorf("storage defaults not applied: %+v", cfg.Storage)
	}
	if cfg.Reminder.Schedule != DefaultReminderSchedule {
		t.Errorf("reminder schedule = %q", cfg.Reminder.Schedule)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
court: nd-cal
logging:
  level: loud
storage:
  state_path: same.db
  audit_path: same.db
rules:
  watch: true
`)
	_, err := Load(path)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("got %d field errors, want 3: %v", len(verr.Errors), verr)
	}
}

func TestLoadMissingCourt(t *testing.T) {
	path := writeConfig(t, "logging: {level: info}\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing court")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "court: nd-cal\n")
	t.Setenv("GAVEL_COURT", "sdny")
	t.Setenv("GAVEL_LOG_LEVEL", "debug")
	t.Setenv("GAVEL_REMINDER_LOOKAHEAD_DAYS", "14")

	cfg, err := LoadWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadWithEnvOverrides: %v", err)
	}
	if cfg.Court != "sdny" {
		t.Errorf("court = %q, want env override", cfg.Court)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Reminder.LookaheadDays != 14 {
		t.Errorf("lookahead = %d", cfg.Reminder.LookaheadDays)
	}
}
