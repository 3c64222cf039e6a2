package docket

import (
	"time"

	"github.com/google/uuid"
)

// CaseType distinguishes the two procedural tracks.
type CaseType string

const (
	CaseTypeCriminal CaseType = "criminal"
	CaseTypeCivil    CaseType = "civil"
)

// Valid returns true for a recognized case type.
func (t CaseType) Valid() bool {
	return t == CaseTypeCriminal || t == CaseTypeCivil
}

// Trigger names a case lifecycle event. The vocabulary is fixed:
// extending it requires a federal-rule handler for the new trigger and,
// optionally, making it matchable in local-rule condition trees.
type Trigger string

const (
	TriggerCaseFiled          Trigger = "case_filed"
	TriggerServiceCompleted   Trigger = "service_completed"
	TriggerMotionFiled        Trigger = "motion_filed"
	TriggerMotionResolved     Trigger = "motion_resolved"
	TriggerJudgmentEntered    Trigger = "judgment_entered"
	TriggerStatusChanged      Trigger = "status_changed"
	TriggerIndictmentReturned Trigger = "indictment_returned"
	TriggerArraignmentHeld    Trigger = "arraignment_held"
	TriggerTrialDateSet       Trigger = "trial_date_set"
	TriggerTrialStarted       Trigger = "trial_started"
	TriggerCaseDismissed      Trigger = "case_dismissed"
	TriggerWaiverFiled        Trigger = "waiver_filed"
	TriggerDocumentFiled      Trigger = "document_filed"
)

// triggers is the closed vocabulary. Events carrying any other name are
// rejected as invalid input, never silently ignored.
var triggers = map[Trigger]bool{
	TriggerCaseFiled:          true,
	TriggerServiceCompleted:   true,
	TriggerMotionFiled:        true,
	TriggerMotionResolved:     true,
	TriggerJudgmentEntered:    true,
	TriggerStatusChanged:      true,
	TriggerIndictmentReturned: true,
	TriggerArraignmentHeld:    true,
	TriggerTrialDateSet:       true,
	TriggerTrialStarted:       true,
	TriggerCaseDismissed:      true,
	TriggerWaiverFiled:        true,
	TriggerDocumentFiled:      true,
}

// KnownTrigger reports whether name is in the trigger vocabulary.
func KnownTrigger(name Trigger) bool {
	return triggers[name]
}

// CaseEvent is an immutable record of a triggering action. It is
// created once per action and appended to the audit log by the caller
// after a successful decision; the engine never mutates it.
type CaseEvent struct {
	// ID uniquely identifies this event instance.
	ID uuid.UUID

	// Court is the court identifier the case belongs to.
	Court string

	// CaseID identifies the case.
	CaseID uuid.UUID

	// CaseType is criminal or civil.
	CaseType CaseType

	// Trigger names the lifecycle event.
	Trigger Trigger

	// Actor is the user or system component that caused the event.
	Actor string

	// Payload holds event-specific fields (requested status, motion
	// kind, service method, arrest date, ...). Values are strings;
	// dates use RFC 3339.
	Payload map[string]string

	// OccurredAt is when the triggering action happened.
	OccurredAt time.Time
}

// PayloadString returns the payload value for key, or "" when absent.
func (e *CaseEvent) PayloadString(key string) string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload[key]
}

// PayloadTime parses the payload value for key as RFC 3339.
// The second return is false when the key is absent or unparseable.
func (e *CaseEvent) PayloadTime(key string) (time.Time, bool) {
	raw := e.PayloadString(key)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
