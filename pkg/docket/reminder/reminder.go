// Package reminder runs the scheduled deadline scan: on a cron
// schedule it finds open deadlines due within the lookahead window and
// routes each to the clerk work queue. Scanning never mutates the
// deadlines themselves; the queue is the output.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"lexhaven/gavel/pkg/docket"
)

// Queue receives flagged deadlines. Implemented by pkg/storage through
// its queue_items table.
type Queue interface {
	EnqueueReminder(ctx context.Context, caseID uuid.UUID, d docket.Deadline) error
}

// DeadlineSource lists open deadlines due by a cutoff, grouped by case.
type DeadlineSource interface {
	DeadlinesDueBy(ctx context.Context, cutoff time.Time) (map[uuid.UUID][]docket.Deadline, error)
}

// Recorder counts flagged deadlines; satisfied by
// telemetry/metrics.Metrics.
type Recorder interface {
	RemindersFlagged(n int)
}

type nopRecorder struct{}

func (nopRecorder) RemindersFlagged(int) {}

// Config configures the scanner.
type Config struct {
	// Schedule is a standard cron expression.
	Schedule string

	// LookaheadDays flags deadlines due within this many days.
	LookaheadDays int
}

// Scanner runs the scheduled scan.
type Scanner struct {
	source   DeadlineSource
	queue    Queue
	config   Config
	logger   *slog.Logger
	recorder Recorder

	cron    *cron.Cron
	mu      sync.Mutex
	running bool

	// now is replaceable in tests.
	now func() time.Time
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithRecorder installs a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Scanner) { s.recorder = r }
}

// WithNow replaces the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// New creates a deadline scanner.
func New(source DeadlineSource, queue Queue, cfg Config, logger *slog.Logger, opts ...Option) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scanner{
		source:   source,
		queue:    queue,
		config:   cfg,
		logger:   logger.With("component", "reminder"),
		recorder: nopRecorder{},
		cron:     cron.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules the scan and returns. The scanner stops when ctx is
// cancelled. An empty schedule disables scanning.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("reminder schedule not configured, scanner disabled")
		return nil
	}
	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.config.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.Scan(ctx); err != nil {
			s.logger.Error("scheduled deadline scan failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule deadline scan: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("deadline scanner started",
		"schedule", s.config.Schedule,
		"lookahead_days", s.config.LookaheadDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the schedule. Safe to call more than once.
func (s *Scanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("deadline scanner stopped")
}

// Scan runs one pass immediately and returns the number of deadlines
// flagged. Usable directly for a CLI-triggered scan.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	cutoff := s.now().AddDate(0, 0, s.config.LookaheadDays)
	due, err := s.source.DeadlinesDueBy(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list due deadlines: %w", err)
	}

	flagged := 0
	for caseID, deadlines := range due {
		for _, d := range deadlines {
			if err := s.queue.EnqueueReminder(ctx, caseID, d); err != nil {
				return flagged, fmt.Errorf("enqueue reminder for case %s: %w", caseID, err)
			}
			flagged++
		}
	}

	s.recorder.RemindersFlagged(flagged)
	if flagged > 0 {
		s.logger.Info("deadline scan completed", "flagged", flagged, "cutoff", cutoff.Format("2006-01-02"))
	}
	return flagged, nil
}
