package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lexhaven/gavel/pkg/docket"
	"lexhaven/gavel/pkg/docket/wheel"
)

// LoadClock returns the persisted speedy-trial clock for a case, or
// nil when none exists.
func (s *Store) LoadClock(ctx context.Context, caseID uuid.UUID) (*docket.Clock, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT court, arrest_date, indictment_date, arraignment_date, filing_date,
			trial_deadline, elapsed_days, remaining_days, is_tolled, waived, state
		FROM clocks WHERE case_id = ?`, caseID.String())

	var (
		court                       string
		arrest, indicted, arraigned sql.NullInt64
		filed, deadline             sql.NullInt64
		elapsed, remaining          int
		tolled, waived              int
		state                       string
	)
	err := row.Scan(&court, &arrest, &indicted, &arraigned, &filed, &deadline, &elapsed, &remaining, &tolled, &waived, &state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load clock: %w", err)
	}

	clock := &docket.Clock{
		CaseID:          caseID,
		Court:           court,
		ArrestDate:      nullTime(arrest),
		IndictmentDate:  nullTime(indicted),
		ArraignmentDate: nullTime(arraigned),
		ElapsedDays:     elapsed,
		RemainingDays:   remaining,
		IsTolled:        tolled == 1,
		Waived:          waived == 1,
		State:           docket.ClockState(state),
	}
	if filed.Valid {
		clock.FilingDate = time.Unix(filed.Int64, 0).UTC()
	}
	if deadline.Valid {
		clock.TrialDeadline = time.Unix(deadline.Int64, 0).UTC()
	}
	return clock, nil
}

// LoadDelays returns the case's excludable delays, oldest first.
func (s *Store) LoadDelays(ctx context.Context, caseID uuid.UUID) ([]docket.ExcludableDelay, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_date, end_date, reason, statutory_ref, days_excluded
		FROM excludable_delays WHERE case_id = ? ORDER BY start_date, id`, caseID.String())
	if err != nil {
		return nil, fmt.Errorf("load delays: %w", err)
	}
	defer rows.Close()

	var delays []docket.ExcludableDelay
	for rows.Next() {
		var (
			id           string
			start        int64
			end          sql.NullInt64
			reason, ref  string
			daysExcluded int
		)
		if err := rows.Scan(&id, &start, &end, &reason, &ref, &daysExcluded); err != nil {
			return nil, fmt.Errorf("scan delay: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("delay id %q: %w", id, err)
		}
		delays = append(delays, docket.ExcludableDelay{
			ID:           parsed,
			CaseID:       caseID,
			Start:        time.Unix(start, 0).UTC(),
			End:          nullTime(end),
			Reason:       reason,
			StatutoryRef: ref,
			DaysExcluded: daysExcluded,
		})
	}
	return delays, rows.Err()
}

// OpenDeadlines returns the case's unclosed deadlines ordered by due date.
func (s *Store) OpenDeadlines(ctx context.Context, caseID uuid.UUID) ([]docket.Deadline, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, due_at, citation FROM deadlines
		WHERE case_id = ? AND closed = 0 ORDER BY due_at`, caseID.String())
	if err != nil {
		return nil, fmt.Errorf("load deadlines: %w", err)
	}
	defer rows.Close()

	var deadlines []docket.Deadline
	for rows.Next() {
		var (
			title, citation string
			due             int64
		)
		if err := rows.Scan(&title, &due, &citation); err != nil {
			return nil, fmt.Errorf("scan deadline: %w", err)
		}
		deadlines = append(deadlines, docket.Deadline{
			Title:    title,
			DueAt:    time.Unix(due, 0).UTC(),
			Citation: citation,
		})
	}
	return deadlines, rows.Err()
}

// DeadlinesDueBy returns open deadlines due at or before the cutoff,
// across all cases. Used by the reminder scanner.
func (s *Store) DeadlinesDueBy(ctx context.Context, cutoff time.Time) (map[uuid.UUID][]docket.Deadline, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT case_id, title, due_at, citation FROM deadlines
		WHERE closed = 0 AND due_at <= ? ORDER BY due_at`, cutoff.Unix())
	if err != nil {
		return nil, fmt.Errorf("load due deadlines: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]docket.Deadline)
	for rows.Next() {
		var (
			caseID, title, citation string
			due                     int64
		)
		if err := rows.Scan(&caseID, &title, &due, &citation); err != nil {
			return nil, fmt.Errorf("scan deadline: %w", err)
		}
		id, err := uuid.Parse(caseID)
		if err != nil {
			return nil, fmt.Errorf("case id %q: %w", caseID, err)
		}
		out[id] = append(out[id], docket.Deadline{
			Title:    title,
			DueAt:    time.Unix(due, 0).UTC(),
			Citation: citation,
		})
	}
	return out, rows.Err()
}

// EnqueueReminder adds a deadline reminder to the clerk queue,
// deduplicated against unresolved reminders for the same case and
// deadline title. It satisfies reminder.Queue.
func (s *Store) EnqueueReminder(ctx context.Context, caseID uuid.UUID, d docket.Deadline) error {
	title := fmt.Sprintf("%s due %s (%s)", d.Title, d.DueAt.Format("2006-01-02"), d.Citation)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queue_items (case_id, queue_type, title, priority, resolved, created_at)
		SELECT ?, 'deadline_reminder', ?, 'high', 0, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM queue_items
			WHERE case_id = ? AND queue_type = 'deadline_reminder' AND title = ? AND resolved = 0
		)`,
		caseID.String(), title, time.Now().Unix(), caseID.String(), title)
	if err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	return nil
}

// QueueItems returns unresolved items for one queue type, oldest first.
func (s *Store) QueueItems(ctx context.Context, queueType string) ([]QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_id, title, priority, created_at FROM queue_items
		WHERE queue_type = ? AND resolved = 0 ORDER BY created_at, id`, queueType)
	if err != nil {
		return nil, fmt.Errorf("load queue items: %w", err)
	}
	defer rows.Close()

	var items []QueueItem
	for rows.Next() {
		var (
			item    QueueItem
			caseID  string
			created int64
		)
		if err := rows.Scan(&item.ID, &caseID, &item.Title, &item.Priority, &created); err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		if item.CaseID, err = uuid.Parse(caseID); err != nil {
			return nil, fmt.Errorf("queue case id %q: %w", caseID, err)
		}
		item.Type = queueType
		item.CreatedAt = time.Unix(created, 0).UTC()
		items = append(items, item)
	}
	return items, rows.Err()
}

// QueueItem is one unresolved manual work item.
type QueueItem struct {
	ID        int64
	CaseID    uuid.UUID
	Type      string
	Title     string
	Priority  string
	CreatedAt time.Time
}

// AssignedJudge returns the judge assigned to a case, or "" when
// unassigned.
func (s *Store) AssignedJudge(ctx context.Context, caseID uuid.UUID) (string, error) {
	var judge string
	err := s.db.QueryRowContext(ctx,
		`SELECT judge FROM judge_assignments WHERE case_id = ?`, caseID.String()).Scan(&judge)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load assignment: %w", err)
	}
	return judge, nil
}

// WheelConfigs returns the wheel rows for a court and case type.
func (s *Store) WheelConfigs(ctx context.Context, court string, caseType docket.CaseType) ([]wheel.Config, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT judge, weight, active, max_caseload, current_caseload
		FROM wheel_configs WHERE court = ? AND case_type = ? ORDER BY judge`,
		court, string(caseType))
	if err != nil {
		return nil, fmt.Errorf("load wheel configs: %w", err)
	}
	defer rows.Close()

	var configs []wheel.Config
	for rows.Next() {
		var (
			judge                    string
			weight, maxLoad, curLoad int
			active                   int
		)
		if err := rows.Scan(&judge, &weight, &active, &maxLoad, &curLoad); err != nil {
			return nil, fmt.Errorf("scan wheel config: %w", err)
		}
		configs = append(configs, wheel.Config{
			Court:           court,
			Judge:           judge,
			CaseType:        caseType,
			Weight:          weight,
			Active:          active == 1,
			MaxCaseload:     maxLoad,
			CurrentCaseload: curLoad,
		})
	}
	return configs, rows.Err()
}

// SaveWheelConfig inserts or updates one judge's wheel row.
func (s *Store) SaveWheelConfig(ctx context.Context, cfg wheel.Config) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wheel_configs (court, judge, case_type, weight, active, max_caseload, current_caseload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (court, judge, case_type) DO UPDATE SET
			weight = excluded.weight,
			active = excluded.active,
			max_caseload = excluded.max_caseload,
			current_caseload = excluded.current_caseload`,
		cfg.Court, cfg.Judge, string(cfg.CaseType), cfg.Weight, boolVal(cfg.Active), cfg.MaxCaseload, cfg.CurrentCaseload)
	if err != nil {
		return fmt.Errorf("save wheel config: %w", err)
	}
	return nil
}

// Conflicts returns all conflict rows.
func (s *Store) Conflicts(ctx context.Context) ([]wheel.Conflict, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT judge, party, active FROM conflicts`)
	if err != nil {
		return nil, fmt.Errorf("load conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []wheel.Conflict
	for rows.Next() {
		var (
			judge, party string
			active       int
		)
		if err := rows.Scan(&judge, &party, &active); err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		conflicts = append(conflicts, wheel.Conflict{Judge: judge, Party: party, Active: active == 1})
	}
	return conflicts, rows.Err()
}

// SaveConflict inserts or updates a judge/party conflict.
func (s *Store) SaveConflict(ctx context.Context, c wheel.Conflict) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conflicts (judge, party, active) VALUES (?, ?, ?)
		ON CONFLICT (judge, party) DO UPDATE SET active = excluded.active`,
		c.Judge, c.Party, boolVal(c.Active))
	if err != nil {
		return fmt.Errorf("save conflict: %w", err)
	}
	return nil
}
