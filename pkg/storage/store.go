package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store is the SQLite-backed engine state store. Suitable for
// single-instance deployments; SQLite permits one writer, which the
// connection pool settings enforce.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Config configures the store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// Open opens (creating if needed) the state database at path with
// default settings.
func Open(path string, logger *slog.Logger) (*Store, error) {
	return OpenWithConfig(Config{DBPath: path}, logger)
}

// OpenWithConfig opens the state database with explicit settings.
func OpenWithConfig(cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, logger: logger.With("component", "storage")}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS deadlines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		case_id TEXT NOT NULL,
		title TEXT NOT NULL,
		due_at INTEGER NOT NULL,
		citation TEXT NOT NULL,
		notes TEXT,
		closed INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_deadlines_case ON deadlines(case_id, closed);
	CREATE INDEX IF NOT EXISTS idx_deadlines_due ON deadlines(closed, due_at);

	CREATE TABLE IF NOT EXISTS queue_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		case_id TEXT NOT NULL,
		queue_type TEXT NOT NULL,
		title TEXT NOT NULL,
		priority TEXT NOT NULL,
		resolved INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_queue_type ON queue_items(queue_type, resolved);

	CREATE TABLE IF NOT EXISTS judge_assignments (
		case_id TEXT PRIMARY KEY,
		judge TEXT NOT NULL,
		reason TEXT,
		assigned_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS clocks (
		case_id TEXT PRIMARY KEY,
		court TEXT NOT NULL,
		arrest_date INTEGER,
		indictment_date INTEGER,
		arraignment_date INTEGER,
		filing_date INTEGER,
		trial_deadline INTEGER,
		elapsed_days INTEGER NOT NULL DEFAULT 0,
		remaining_days INTEGER NOT NULL DEFAULT 70,
		is_tolled INTEGER NOT NULL DEFAULT 0,
		waived INTEGER NOT NULL DEFAULT 0,
		state TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS excludable_delays (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL,
		start_date INTEGER NOT NULL,
		end_date INTEGER,
		reason TEXT NOT NULL,
		statutory_ref TEXT,
		days_excluded INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_delays_case ON excludable_delays(case_id);

	CREATE TABLE IF NOT EXISTS wheel_configs (
		court TEXT NOT NULL,
		judge TEXT NOT NULL,
		case_type TEXT NOT NULL,
		weight INTEGER NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		max_caseload INTEGER NOT NULL DEFAULT 0,
		current_caseload INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (court, judge, case_type)
	);

	CREATE TABLE IF NOT EXISTS conflicts (
		judge TEXT NOT NULL,
		party TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (judge, party)
	);

	CREATE TABLE IF NOT EXISTS local_rules (
		id TEXT PRIMARY KEY,
		court TEXT NOT NULL,
		name TEXT NOT NULL,
		citation TEXT,
		priority INTEGER NOT NULL,
		status TEXT NOT NULL,
		document TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rules_court ON local_rules(court, status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database after a final WAL checkpoint.
func (s *Store) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// nullTime converts a nullable unix-seconds column to *time.Time.
func nullTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

// timeVal converts *time.Time to a nullable unix-seconds value.
func timeVal(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func boolVal(b bool) int {
	if b {
		return 1
	}
	return 0
}

func execContext(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}
