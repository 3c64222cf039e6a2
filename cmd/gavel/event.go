package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lexhaven/gavel/pkg/auditlog"
	"lexhaven/gavel/pkg/compliance"
	"lexhaven/gavel/pkg/docket"
	"lexhaven/gavel/pkg/rules/engine"
	"lexhaven/gavel/pkg/storage"
)

var eventFlags struct {
	file string
}

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Evaluate one docket event",
	Long: `Evaluate one docket event against the rule set and apply its effects.

The event file carries the triggering event plus the case fields the
engine cannot derive from stored state (case type, current status,
parties). Stored state - the speedy-trial clock, excludable delays,
the assigned judge, and open deadlines - is loaded from the state
database. On success every effect is applied in one transaction and
the audit entries are appended to the audit log.

A blocking violation leaves all state untouched and exits non-zero;
rerun with an "override" block in the event file to resolve it.

Examples:
  # Evaluate a filing
  gavel event --file filing.json

  # With a custom config
  gavel event --config /etc/gavel/config.yaml --file filing.json`,
	RunE: evaluateEvent,
}

func init() {
	rootCmd.AddCommand(eventCmd)

	eventCmd.Flags().StringVarP(&eventFlags.file, "file", "f", "", "event file (JSON)")
	_ = eventCmd.MarkFlagRequired("file")
}

// eventInput is the JSON shape of an event file: the triggering event
// plus the caller-supplied slice of case context.
type eventInput struct {
	Court      string            `json:"court"`
	CaseID     string            `json:"case_id"`
	CaseType   string            `json:"case_type"`
	Trigger    string            `json:"trigger"`
	Actor      string            `json:"actor"`
	Payload    map[string]string `json:"payload"`
	OccurredAt string            `json:"occurred_at"`

	Status     string            `json:"status"`
	FilingDate string            `json:"filing_date"`
	FeePaid    bool              `json:"fee_paid"`
	Parties    []partyInput      `json:"parties"`
	Metadata   map[string]string `json:"metadata"`

	Override *overrideInput `json:"override"`
}

type partyInput struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	CoConspirator bool   `json:"co_conspirator"`
}

type overrideInput struct {
	Actor  string `json:"actor"`
	Role   string `json:"role"`
	Reason string `json:"reason"`
}

func evaluateEvent(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(eventFlags.file)
	if err != nil {
		return fmt.Errorf("failed to read event file: %w", err)
	}
	var input eventInput
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("invalid event file: %w", err)
	}
	if input.Court == "" {
		input.Court = cfg.Court
	}

	ctx := context.Background()

	store, err := storage.OpenWithConfig(storage.Config{
		DBPath:      cfg.Storage.StatePath,
		BusyTimeout: cfg.Storage.BusyTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer store.Close()

	audit, err := auditlog.Open(auditlog.Config{
		Path:        cfg.Storage.AuditPath,
		BusyTimeout: cfg.Storage.BusyTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer audit.Close()

	event, caseCtx, override, err := buildRequest(ctx, &input, store)
	if err != nil {
		return err
	}

	rules, err := ruleSource(cfg, store, logger).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load local rules: %w", err)
	}

	wheelConfigs, err := store.WheelConfigs(ctx, event.Court, event.CaseType)
	if err != nil {
		return err
	}
	conflicts, err := store.Conflicts(ctx)
	if err != nil {
		return err
	}

	req := &compliance.Request{
		Event:        event,
		Case:         caseCtx,
		Override:     override,
		Snapshot:     engine.NewSnapshot(rules, event.OccurredAt),
		WheelConfigs: wheelConfigs,
		Conflicts:    conflicts,
	}

	decision, err := compliance.New(logger).Evaluate(ctx, req)
	if err != nil {
		var verr *docket.ViolationError
		if errors.As(err, &verr) {
			printViolation(verr.Violation)
			return fmt.Errorf("event blocked")
		}
		return err
	}

	if err := store.ApplyDecision(ctx, event, decision, audit); err != nil {
		return fmt.Errorf("failed to apply decision: %w", err)
	}

	printDecision(decision)
	return nil
}

// buildRequest assembles the event and case context, merging the event
// file's fields with stored case state.
func buildRequest(ctx context.Context, input *eventInput, store *storage.Store) (*docket.CaseEvent, *docket.CaseContext, *docket.Override, error) {
	caseID, err := uuid.Parse(input.CaseID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid case_id %q: %w", input.CaseID, err)
	}

	occurredAt := time.Now().UTC()
	if input.OccurredAt != "" {
		if occurredAt, err = time.Parse(time.RFC3339, input.OccurredAt); err != nil {
			return nil, nil, nil, fmt.Errorf("invalid occurred_at: %w", err)
		}
	}

	event := &docket.CaseEvent{
		ID:         uuid.New(),
		Court:      input.Court,
		CaseID:     caseID,
		CaseType:   docket.CaseType(input.CaseType),
		Trigger:    docket.Trigger(input.Trigger),
		Actor:      input.Actor,
		Payload:    input.Payload,
		OccurredAt: occurredAt,
	}

	caseCtx := &docket.CaseContext{
		Court:    input.Court,
		CaseID:   caseID,
		CaseType: event.CaseType,
		Status:   input.Status,
		FeePaid:  input.FeePaid,
		Metadata: input.Metadata,
	}
	if input.FilingDate != "" {
		filed, err := time.Parse("2006-01-02", input.FilingDate)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid filing_date: %w", err)
		}
		caseCtx.FilingDate = filed
	}
	for _, p := range input.Parties {
		caseCtx.Parties = append(caseCtx.Parties, docket.Party{
			Name:          p.Name,
			Role:          p.Role,
			CoConspirator: p.CoConspirator,
		})
	}

	// Stored state wins over anything the file could claim.
	if caseCtx.AssignedJudge, err = store.AssignedJudge(ctx, caseID); err != nil {
		return nil, nil, nil, err
	}
	if caseCtx.Clock, err = store.LoadClock(ctx, caseID); err != nil {
		return nil, nil, nil, err
	}
	if caseCtx.Delays, err = store.LoadDelays(ctx, caseID); err != nil {
		return nil, nil, nil, err
	}
	if caseCtx.OpenDeadlines, err = store.OpenDeadlines(ctx, caseID); err != nil {
		return nil, nil, nil, err
	}

	var override *docket.Override
	if input.Override != nil {
		override = &docket.Override{
			Actor:  input.Override.Actor,
			Role:   input.Override.Role,
			Reason: input.Override.Reason,
		}
	}
	return event, caseCtx, override, nil
}

func printViolation(v docket.Violation) {
	fmt.Printf("✗ BLOCKED: %s\n", v.Message)
	fmt.Printf("  Citation: %s\n", v.Citation)
	if v.OverrideAllowed {
		fmt.Printf("  Override: requires %s or above\n", v.RequiredOverrideRole)
	} else {
		fmt.Println("  Override: not permitted")
	}
}

func printDecision(decision *compliance.Decision) {
	if decision.Overridden {
		fmt.Println("✓ Allowed (violations overridden)")
		for _, v := range decision.Violations {
			fmt.Printf("  Overridden: %s (%s)\n", v.Message, v.Citation)
		}
	} else {
		fmt.Println("✓ Allowed")
	}

	for _, effect := range decision.Effects {
		switch e := effect.(type) {
		case docket.CreateDeadline:
			fmt.Printf("  Deadline: %s due %s (%s)\n", e.Title, e.DueAt.Format("2006-01-02"), e.Citation)
		case docket.AssignJudge:
			fmt.Printf("  Judge assigned: %s\n", e.Judge)
		case docket.CreateQueueItem:
			fmt.Printf("  Queued (%s): %s\n", e.Type, e.Title)
		default:
			fmt.Printf("  Effect: %s\n", effect.Kind())
		}
	}

	if decision.Clock != nil {
		c := decision.Clock
		fmt.Printf("  Speedy trial clock: %s, %d elapsed, %d remaining",
			c.State, c.ElapsedDays, c.RemainingDays)
		if !c.TrialDeadline.IsZero() {
			fmt.Printf(", trial deadline %s", c.TrialDeadline.Format("2006-01-02"))
		}
		fmt.Println()
	}

	if verbose {
		for _, entry := range decision.Trail {
			marker := " "
			if entry.Matched {
				marker = "*"
			}
			fmt.Printf("  %s [%s] %s", marker, entry.Source, entry.Citation)
			if entry.Note != "" {
				fmt.Printf(" (%s)", entry.Note)
			}
			fmt.Println()
		}
	}
}
