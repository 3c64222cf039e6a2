package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lexhaven/gavel/pkg/compliance"
	"lexhaven/gavel/pkg/docket"
)

// AuditSink receives audit events after a decision commits.
// Implemented by pkg/auditlog; a nil sink drops audit rows.
type AuditSink interface {
	Append(ctx context.Context, event *docket.CaseEvent, entryType, detail string) error
}

// ApplyDecision applies every effect of one decision atomically, in
// effect order. On any failure the transaction rolls back and the
// database is untouched. LogAuditEvent effects are forwarded to the
// audit sink only after the transaction commits.
func (s *Store) ApplyDecision(ctx context.Context, event *docket.CaseEvent, decision *compliance.Decision, audit AuditSink) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	caseID := event.CaseID.String()
	var auditEvents []docket.LogAuditEvent

	for _, effect := range decision.Effects {
		switch e := effect.(type) {
		case docket.CreateDeadline:
			err = execContext(ctx, tx, `
				INSERT INTO deadlines (case_id, title, due_at, citation, notes, closed, created_at)
				VALUES (?, ?, ?, ?, ?, 0, ?)`,
				caseID, e.Title, e.DueAt.Unix(), e.Citation, e.Notes, now)

		case docket.CreateQueueItem:
			err = execContext(ctx, tx, `
				INSERT INTO queue_items (case_id, queue_type, title, priority, resolved, created_at)
				VALUES (?, ?, ?, ?, 0, ?)`,
				caseID, e.Type, e.Title, e.Priority, now)

		case docket.AssignJudge:
			err = execContext(ctx, tx, `
				INSERT INTO judge_assignments (case_id, judge, reason, assigned_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (case_id) DO UPDATE SET
					judge = excluded.judge,
					reason = excluded.reason,
					assigned_at = excluded.assigned_at`,
				caseID, e.Judge, e.Reason, now)
			if err == nil {
				err = execContext(ctx, tx, `
					UPDATE wheel_configs SET current_caseload = current_caseload + 1
					WHERE court = ? AND judge = ? AND case_type = ?`,
					event.Court, e.Judge, string(event.CaseType))
			}

		case docket.StartClock, docket.TollClock, docket.ResumeClock:
			// Clock state is persisted once below from decision.Clock;
			// these effects carry no extra rows of their own.

		case docket.LogAuditEvent:
			auditEvents = append(auditEvents, e)

		default:
			err = fmt.Errorf("unhandled effect kind %q", effect.Kind())
		}
		if err != nil {
			return fmt.Errorf("apply %s: %w", effect.Kind(), err)
		}
	}

	if decision.Clock != nil {
		if err := s.saveClockTx(ctx, tx, decision.Clock); err != nil {
			return fmt.Errorf("apply clock: %w", err)
		}
	}
	if decision.NewDelay != nil {
		if err := s.insertDelayTx(ctx, tx, decision.NewDelay); err != nil {
			return fmt.Errorf("apply new delay: %w", err)
		}
	}
	if decision.ClosedDelay != nil {
		if err := s.closeDelayTx(ctx, tx, decision.ClosedDelay); err != nil {
			return fmt.Errorf("apply closed delay: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if audit != nil {
		for _, e := range auditEvents {
			if err := audit.Append(ctx, event, e.Type, e.Detail); err != nil {
				// The decision is already committed; an audit failure is
				// logged loudly but cannot undo applied state.
				s.logger.Error("audit append failed after commit",
					"case_id", caseID,
					"entry_type", e.Type,
					"error", err,
				)
			}
		}
	}

	s.logger.Info("decision applied",
		"case_id", caseID,
		"trigger", event.Trigger,
		"effect_count", len(decision.Effects),
		"overridden", decision.Overridden,
	)
	return nil
}

func (s *Store) saveClockTx(ctx context.Context, tx *sql.Tx, clock *docket.Clock) error {
	var filing any
	if !clock.FilingDate.IsZero() {
		filing = clock.FilingDate.Unix()
	}
	return execContext(ctx, tx, `
		INSERT INTO clocks (case_id, court, arrest_date, indictment_date, arraignment_date,
			filing_date, trial_deadline, elapsed_days, remaining_days, is_tolled, waived, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (case_id) DO UPDATE SET
			arrest_date = excluded.arrest_date,
			indictment_date = excluded.indictment_date,
			arraignment_date = excluded.arraignment_date,
			filing_date = excluded.filing_date,
			trial_deadline = excluded.trial_deadline,
			elapsed_days = excluded.elapsed_days,
			remaining_days = excluded.remaining_days,
			is_tolled = excluded.is_tolled,
			waived = excluded.waived,
			state = excluded.state`,
		clock.CaseID.String(), clock.Court,
		timeVal(clock.ArrestDate), timeVal(clock.IndictmentDate), timeVal(clock.ArraignmentDate),
		filing, clock.TrialDeadline.Unix(), clock.ElapsedDays, clock.RemainingDays,
		boolVal(clock.IsTolled), boolVal(clock.Waived), string(clock.State))
}

func (s *Store) insertDelayTx(ctx context.Context, tx *sql.Tx, d *docket.ExcludableDelay) error {
	id := d.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return execContext(ctx, tx, `
		INSERT INTO excludable_delays (id, case_id, start_date, end_date, reason, statutory_ref, days_excluded)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), d.CaseID.String(), d.Start.Unix(), timeVal(d.End), d.Reason, d.StatutoryRef, d.DaysExcluded)
}

func (s *Store) closeDelayTx(ctx context.Context, tx *sql.Tx, d *docket.ExcludableDelay) error {
	return execContext(ctx, tx, `
		UPDATE excludable_delays
		SET end_date = ?, days_excluded = ?
		WHERE id = ? AND end_date IS NULL`,
		timeVal(d.End), d.DaysExcluded, d.ID.String())
}
