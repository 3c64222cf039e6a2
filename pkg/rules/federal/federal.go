// Package federal holds the compiled federal procedure rules. Unlike
// local rules, these are not data: each is a fixed predicate-then-
// directive function, and the set is a closed, versioned enumeration —
// not a plugin registry. Changing the trigger vocabulary means editing
// this file, which is the point: a rule cannot be silently skipped by
// a stale registration.
//
// Every function is pure over (event, case snapshot) and its cost is
// constant; the federal pass is proportional to the rule count here,
// never to case history.
package federal

import (
	"fmt"
	"time"

	"lexhaven/gavel/pkg/docket"
	"lexhaven/gavel/pkg/docket/calendar"
	"lexhaven/gavel/pkg/docket/speedytrial"
)

// Rule is one compiled federal rule.
type Rule struct {
	// ID is the stable identifier used in logs and metrics.
	ID string

	// Citation is the rule's legal citation. It is also the
	// rule-family key the precedence check uses: a local deadline with
	// the same citation may only be stricter.
	Citation string

	Name string

	// CaseType restricts applicability; empty matches both types.
	CaseType docket.CaseType

	// Trigger is the lifecycle event the rule responds to.
	Trigger docket.Trigger

	// Evaluate returns the rule's effects and violations for an
	// applicable event. It is only called when CaseType and Trigger
	// match; payload-level applicability is its own business.
	Evaluate func(event *docket.CaseEvent, caseCtx *docket.CaseContext) ([]docket.Effect, []docket.Violation, error)
}

// Applies reports whether the rule should run for this event.
func (r *Rule) Applies(event *docket.CaseEvent) bool {
	if r.Trigger != event.Trigger {
		return false
	}
	return r.CaseType == "" || r.CaseType == event.CaseType
}

// All returns the complete federal rule set in evaluation order. The
// slice is rebuilt per call so callers cannot mutate the enumeration.
func All() []Rule {
	return []Rule{
		{
			ID:       "frcp-4m-service",
			Citation: "FRCP 4(m)",
			Name:     "Service of process within 90 days",
			CaseType: docket.CaseTypeCivil,
			Trigger:  docket.TriggerCaseFiled,
			Evaluate: serviceOfProcess,
		},
		{
			ID:       "usc-1914-fee",
			Citation: "28 U.S.C. §1914",
			Name:     "Civil filing fee",
			CaseType: docket.CaseTypeCivil,
			Trigger:  docket.TriggerCaseFiled,
			Evaluate: civilFilingFee,
		},
		{
			ID:       "frcp-12a-answer",
			Citation: "FRCP 12(a)(1)(A)",
			Name:     "Answer due 21 days after service",
			CaseType: docket.CaseTypeCivil,
			Trigger:  docket.TriggerServiceCompleted,
			Evaluate: answerDeadline,
		},
		{
			ID:       "frcrp-5a-appearance",
			Citation: "FRCrP 5(a)",
			Name:     "Initial appearance within 48 hours of arrest",
			CaseType: docket.CaseTypeCriminal,
			Trigger:  docket.TriggerCaseFiled,
			Evaluate: initialAppearance,
		},
		{
			ID:       "sta-3161b-indictment",
			Citation: "18 U.S.C. §3161(b)",
			Name:     "Indictment within 30 days",
			CaseType: docket.CaseTypeCriminal,
			Trigger:  docket.TriggerCaseFiled,
			Evaluate: indictmentDeadline,
		},
		{
			ID:       "sta-3161c-trial",
			Citation: "18 U.S.C. §3161(c)(1)",
			Name:     "Trial within 70 days of indictment",
			CaseType: docket.CaseTypeCriminal,
			Trigger:  docket.TriggerIndictmentReturned,
			Evaluate: trialDeadline,
		},
		{
			ID:       "sta-trial-date-check",
			Citation: "18 U.S.C. §3161(c)(1)",
			Name:     "Trial date within the speedy trial deadline",
			CaseType: docket.CaseTypeCriminal,
			Trigger:  docket.TriggerTrialDateSet,
			Evaluate: trialDateWithinClock,
		},
	}
}

func serviceOfProcess(event *docket.CaseEvent, _ *docket.CaseContext) ([]docket.Effect, []docket.Violation, error) {
	res, err := calendar.Compute(event.OccurredAt, 90, calendar.CalendarDays, calendar.ServicePersonal)
	if err != nil {
		return nil, nil, err
	}
	return []docket.Effect{docket.CreateDeadline{
		Title:    "Serve summons and complaint",
		DueAt:    res.DueAt,
		Citation: "FRCP 4(m)",
		Notes:    res.Notes,
	}}, nil, nil
}

func civilFilingFee(_ *docket.CaseEvent, caseCtx *docket.CaseContext) ([]docket.Effect, []docket.Violation, error) {
	if caseCtx.FeePaid {
		return nil, nil, nil
	}
	return []docket.Effect{docket.CreateQueueItem{
		Type:     "billing",
		Title:    "Collect civil filing fee (28 U.S.C. §1914)",
		Priority: "medium",
	}}, nil, nil
}

func answerDeadline(event *docket.CaseEvent, _ *docket.CaseContext) ([]docket.Effect, []docket.Violation, error) {
	service := calendar.ServiceMethod(event.PayloadString("service_method"))
	if service == "" {
		service = calendar.ServicePersonal
	}
	res, err := calendar.Compute(event.OccurredAt, 21, calendar.CalendarDays, service)
	if err != nil {
		return nil, nil, err
	}
	return []docket.Effect{docket.CreateDeadline{
		Title:    "Answer or responsive pleading due",
		DueAt:    res.DueAt,
		Citation: "FRCP 12(a)(1)(A)",
		Notes:    res.Notes,
	}}, nil, nil
}

func initialAppearance(event *docket.CaseEvent, _ *docket.CaseContext) ([]docket.Effect, []docket.Violation, error) {
	arrest, ok := event.PayloadTime("arrest_date")
	if !ok {
		// No arrest recorded at filing (summons or indictment-first
		// cases); the rule simply does not apply.
		if event.PayloadString("arrest_date") != "" {
			return nil, nil, &docket.InputError{Field: "arrest_date", Message: "not a valid RFC 3339 timestamp"}
		}
		return nil, nil, nil
	}
	return []docket.Effect{docket.CreateDeadline{
		Title:    "Initial appearance before magistrate judge",
		DueAt:    arrest.Add(48 * time.Hour),
		Citation: "FRCrP 5(a)",
		Notes:    fmt.Sprintf("48 hours from arrest at %s", arrest.Format(time.RFC3339)),
	}}, nil, nil
}

func indictmentDeadline(event *docket.CaseEvent, _ *docket.CaseContext) ([]docket.Effect, []docket.Violation, error) {
	res, err := calendar.Compute(event.OccurredAt, speedytrial.IndictmentDays, calendar.CalendarDays, calendar.ServicePersonal)
	if err != nil {
		return nil, nil, err
	}
	return []docket.Effect{docket.CreateDeadline{
		Title:    "Indictment or information due",
		DueAt:    res.DueAt,
		Citation: "18 U.S.C. §3161(b)",
		Notes:    res.Notes,
	}}, nil, nil
}

func trialDeadline(event *docket.CaseEvent, _ *docket.CaseContext) ([]docket.Effect, []docket.Violation, error) {
	res, err := calendar.Compute(event.OccurredAt, speedytrial.DeadlineDays, calendar.CalendarDays, calendar.ServicePersonal)
	if err != nil {
		return nil, nil, err
	}
	return []docket.Effect{docket.CreateDeadline{
		Title:    "Trial commencement deadline",
		DueAt:    res.DueAt,
		Citation: "18 U.S.C. §3161(c)(1)",
		Notes:    res.Notes,
	}}, nil, nil
}

func trialDateWithinClock(event *docket.CaseEvent, caseCtx *docket.CaseContext) ([]docket.Effect, []docket.Violation, error) {
	trialDate, ok := event.PayloadTime("trial_date")
	if !ok {
		return nil, nil, &docket.InputError{Field: "trial_date", Message: "trial_date_set event requires a trial_date payload"}
	}
	if caseCtx.Clock == nil || caseCtx.Clock.TrialDeadline.IsZero() {
		return nil, nil, nil
	}
	if trialDate.After(caseCtx.Clock.TrialDeadline) {
		return nil, []docket.Violation{{
			Citation:             "18 U.S.C. §3161(c)(1)",
			Message:              fmt.Sprintf("requested trial date %s exceeds speedy trial deadline %s", trialDate.Format("2006-01-02"), caseCtx.Clock.TrialDeadline.Format("2006-01-02")),
			OverrideAllowed:      true,
			RequiredOverrideRole: docket.RoleJudge,
		}}, nil
	}
	return nil, nil, nil
}
