// Package auditlog is the append-only audit trail. Every evaluation
// outcome — deadlines generated, violations raised, overrides granted,
// judge assignments — lands here as an immutable row. The store has no
// update or delete path; corrections are new rows.
//
// The audit database is deliberately separate from the state database
// (pkg/storage): state rows change as cases move, audit rows never do,
// and keeping them in different files lets the audit file be retained
// and backed up on its own schedule.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"lexhaven/gavel/pkg/docket"
)

// Entry is one audit row.
type Entry struct {
	ID         int64
	Court      string
	CaseID     uuid.UUID
	EventID    uuid.UUID
	Trigger    docket.Trigger
	Actor      string
	EntryType  string
	Detail     string
	RecordedAt time.Time
}

// Query filters audit reads. Zero fields match everything.
type Query struct {
	CaseID    uuid.UUID
	EntryType string
	Since     time.Time
	Limit     int
}

// Config configures the audit store.
type Config struct {
	// Path is the audit database file path.
	Path string

	// BusyTimeout is how long to wait for locks. Default: 5 seconds.
	BusyTimeout time.Duration
}

// Store is the SQLite-backed audit log.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the audit database.
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("audit db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	s := &Store{db: db, logger: logger.With("component", "auditlog")}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.BusyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit schema: %w", err)
	}

	s.logger.Info("audit log opened", "path", cfg.Path)
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		court TEXT NOT NULL,
		case_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		trigger_name TEXT NOT NULL,
		actor TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		detail TEXT NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_case ON audit_entries(case_id, recorded_at);
	CREATE INDEX IF NOT EXISTS idx_audit_type ON audit_entries(entry_type, recorded_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one audit entry for an event. It satisfies
// storage.AuditSink.
func (s *Store) Append(ctx context.Context, event *docket.CaseEvent, entryType, detail string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (court, case_id, event_id, trigger_name, actor, entry_type, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Court, event.CaseID.String(), event.ID.String(),
		string(event.Trigger), event.Actor, entryType, detail, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// List returns audit entries matching the query, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Entry, error) {
	query := `SELECT id, court, case_id, event_id, trigger_name, actor, entry_type, detail, recorded_at
		FROM audit_entries WHERE 1=1`
	var args []any
	if q.CaseID != uuid.Nil {
		query += " AND case_id = ?"
		args = append(args, q.CaseID.String())
	}
	if q.EntryType != "" {
		query += " AND entry_type = ?"
		args = append(args, q.EntryType)
	}
	if !q.Since.IsZero() {
		query += " AND recorded_at >= ?"
		args = append(args, q.Since.Unix())
	}
	query += " ORDER BY recorded_at DESC, id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                     Entry
			caseID, eventID, trig string
			recorded              int64
		)
		if err := rows.Scan(&e.ID, &e.Court, &caseID, &eventID, &trig, &e.Actor, &e.EntryType, &e.Detail, &recorded); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if e.CaseID, err = uuid.Parse(caseID); err != nil {
			return nil, fmt.Errorf("audit case id %q: %w", caseID, err)
		}
		if e.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, fmt.Errorf("audit event id %q: %w", eventID, err)
		}
		e.Trigger = docket.Trigger(trig)
		e.RecordedAt = time.Unix(recorded, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the audit database.
func (s *Store) Close() error {
	return s.db.Close()
}
