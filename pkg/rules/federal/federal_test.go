package federal

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"lexhaven/gavel/pkg/docket"
)

func event(caseType docket.CaseType, trigger docket.Trigger, at time.Time, payload map[string]string) *docket.CaseEvent {
	return &docket.CaseEvent{
		ID:         uuid.New(),
		Court:      "nd-cal",
		CaseID:     uuid.New(),
		CaseType:   caseType,
		Trigger:    trigger,
		Actor:      "clerk",
		Payload:    payload,
		OccurredAt: at,
	}
}

func run(t *testing.T, ruleID string, ev *docket.CaseEvent, caseCtx *docket.CaseContext) ([]docket.Effect, []docket.Violation) {
	t.Helper()
	for _, r := range All() {
		if r.ID != ruleID {
			continue
		}
		if !r.Applies(ev) {
			t.Fatalf("rule %s does not apply to event %s/%s", ruleID, ev.CaseType, ev.Trigger)
		}
		effects, violations, err := r.Evaluate(ev, caseCtx)
		if err != nil {
			t.Fatalf("rule %s: %v", ruleID, err)
		}
		return effects, violations
	}
	t.Fatalf("no such rule %q", ruleID)
	return nil, nil
}

func TestServiceOfProcess_NinetyDays(t *testing.T) {
	filed := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC) // Monday
	ev := event(docket.CaseTypeCivil, docket.TriggerCaseFiled, filed, nil)

	effects, violations := run(t, "frcp-4m-service", ev, &docket.CaseContext{})
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %v", violations)
	}
	if len(effects) != 1 {
		t.Fatalf("got %d effects, want 1", len(effects))
	}

	dl, ok := effects[0].(docket.CreateDeadline)
	if !ok {
		t.Fatalf("effect is %T, want CreateDeadline", effects[0])
	}
	// 90 calendar days lands on Sunday May 31; extended to Monday June 1.
	want := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	if !dl.DueAt.Equal(want) {
		t.Errorf("due = %s, want %s", dl.DueAt.Format("2006-01-02"), want.Format("2006-01-02"))
	}
	if dl.Citation != "FRCP 4(m)" {
		t.Errorf("citation = %q", dl.Citation)
	}
}

func TestCivilFilingFee(t *testing.T) {
	ev := event(docket.CaseTypeCivil, docket.TriggerCaseFiled, time.Now(), nil)

	effects, _ := run(t, "usc-1914-fee", ev, &docket.CaseContext{FeePaid: false})
	if len(effects) != 1 {
		t.Fatalf("got %d effects, want 1", len(effects))
	}
	q, ok := effects[0].(docket.CreateQueueItem)
	if !ok || q.Type != "billing" {
		t.Fatalf("expected billing queue item, got %+v", effects[0])
	}

	effects, _ = run(t, "usc-1914-fee", ev, &docket.CaseContext{FeePaid: true})
	if len(effects) != 0 {
		t.Errorf("fee already paid should produce no effects, got %d", len(effects))
	}
}

func TestAnswerDeadline_MailService(t *testing.T) {
	served := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	ev := event(docket.CaseTypeCivil, docket.TriggerServiceCompleted, served, map[string]string{
		"service_method": "mail",
	})

	effects, _ := run(t, "frcp-12a-answer", ev, &docket.CaseContext{})
	dl := effects[0].(docket.CreateDeadline)

	// 21 + 3 mail days from Mar 2 = Mar 26 (Thursday), no correction.
	want := time.Date(2026, time.March, 26, 0, 0, 0, 0, time.UTC)
	if !dl.DueAt.Equal(want) {
		t.Errorf("due = %s, want %s", dl.DueAt.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestInitialAppearance(t *testing.T) {
	arrest := time.Date(2026, time.March, 2, 14, 30, 0, 0, time.UTC)
	ev := event(docket.CaseTypeCriminal, docket.TriggerCaseFiled, arrest, map[string]string{
		"arrest_date": arrest.Format(time.RFC3339),
	})

	effects, _ := run(t, "frcrp-5a-appearance", ev, &docket.CaseContext{})
	dl := effects[0].(docket.CreateDeadline)
	if !dl.DueAt.Equal(arrest.Add(48 * time.Hour)) {
		t.Errorf("due = %s, want arrest+48h", dl.DueAt)
	}

	// No arrest payload: rule does not apply, not an error.
	ev = event(docket.CaseTypeCriminal, docket.TriggerCaseFiled, arrest, nil)
	effects, _ = run(t, "frcrp-5a-appearance", ev, &docket.CaseContext{})
	if len(effects) != 0 {
		t.Errorf("expected no effects without arrest_date, got %d", len(effects))
	}
}

func TestInitialAppearance_BadPayload(t *testing.T) {
	ev := event(docket.CaseTypeCriminal, docket.TriggerCaseFiled, time.Now(), map[string]string{
		"arrest_date": "yesterday-ish",
	})
	for _, r := range All() {
		if r.ID != "frcrp-5a-appearance" {
			continue
		}
		_, _, err := r.Evaluate(ev, &docket.CaseContext{})
		if err == nil {
			t.Fatal("expected input error for malformed arrest_date")
		}
	}
}

func TestIndictmentDeadline_ThirtyDays(t *testing.T) {
	filed := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	ev := event(docket.CaseTypeCriminal, docket.TriggerCaseFiled, filed, nil)

	effects, _ := run(t, "sta-3161b-indictment", ev, &docket.CaseContext{})
	dl := effects[0].(docket.CreateDeadline)

	// Mar 2 + 30 = Apr 1 (Wednesday).
	want := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !dl.DueAt.Equal(want) {
		t.Errorf("due = %s, want %s", dl.DueAt.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestTrialDateCheck(t *testing.T) {
	deadline := time.Date(2026, time.May, 11, 0, 0, 0, 0, time.UTC)
	caseCtx := &docket.CaseContext{
		Clock: &docket.Clock{TrialDeadline: deadline},
	}

	late := deadline.AddDate(0, 0, 10)
	ev := event(docket.CaseTypeCriminal, docket.TriggerTrialDateSet, time.Now(), map[string]string{
		"trial_date": late.Format(time.RFC3339),
	})
	_, violations := run(t, "sta-trial-date-check", ev, caseCtx)
	if len(violations) != 1 {
		t.Fatalf("expected violation for late trial date, got %d", len(violations))
	}
	if !violations[0].OverrideAllowed || violations[0].RequiredOverrideRole != docket.RoleJudge {
		t.Errorf("trial date violations should be judge-overridable: %+v", violations[0])
	}

	early := deadline.AddDate(0, 0, -10)
	ev = event(docket.CaseTypeCriminal, docket.TriggerTrialDateSet, time.Now(), map[string]string{
		"trial_date": early.Format(time.RFC3339),
	})
	_, violations = run(t, "sta-trial-date-check", ev, caseCtx)
	if len(violations) != 0 {
		t.Errorf("timely trial date should not violate: %v", violations)
	}
}

// TestApplies checks case-type and trigger gating.
func TestApplies(t *testing.T) {
	civilFiled := event(docket.CaseTypeCivil, docket.TriggerCaseFiled, time.Now(), nil)
	criminalFiled := event(docket.CaseTypeCriminal, docket.TriggerCaseFiled, time.Now(), nil)

	for _, r := range All() {
		if r.ID == "frcp-4m-service" {
			if !r.Applies(civilFiled) {
				t.Error("FRCP 4(m) should apply to civil filings")
			}
			if r.Applies(criminalFiled) {
				t.Error("FRCP 4(m) should not apply to criminal filings")
			}
		}
	}
}
