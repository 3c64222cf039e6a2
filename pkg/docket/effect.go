package docket

import "time"

// Effect is one mutation the caller must apply after a successful
// evaluation. Effects form a closed tagged union: the concrete types
// below are the only implementations, and the applier dispatches on
// them with an exhaustive type switch.
//
// Effects are data, not actions. Applying them is a separate,
// injectable step (see pkg/storage), which is what allows the decision
// logic to be unit-tested without a database.
type Effect interface {
	// Kind returns the stable effect name used in audit rows and
	// metrics labels.
	Kind() string

	isEffect()
}

// CreateDeadline instructs the caller to insert a deadline row.
type CreateDeadline struct {
	Title string
	DueAt time.Time
	// Citation is the rule citation that produced the deadline, e.g.
	// "FRCP 4(m)". It doubles as the rule-family key for the
	// federal-precedence check.
	Citation string
	// Notes carries the human-readable computation trail from the
	// calendar (trigger date, service adjustment, weekend extension).
	Notes string
}

// StartClock starts the speedy-trial clock anchored at TriggerDate.
type StartClock struct {
	TriggerDate time.Time
}

// TollClock pauses the speedy-trial clock, opening an excludable-delay
// interval with no end date.
type TollClock struct {
	Reason       string
	StatutoryRef string
}

// ResumeClock closes the most recent open excludable delay and
// restarts the countdown.
type ResumeClock struct{}

// AssignJudge records a judge assignment produced by the wheel.
type AssignJudge struct {
	Judge  string
	Reason string
}

// CreateQueueItem routes work to a manual queue (clerk review, billing).
type CreateQueueItem struct {
	// Type tags the queue, e.g. "manual_assignment" or "billing".
	Type     string
	Title    string
	Priority string
}

// LogAuditEvent appends a row to the audit log. Overridden violations
// are converted into this effect so the override is recorded whether
// or not anything else changed.
type LogAuditEvent struct {
	Type   string
	Detail string
}

func (CreateDeadline) Kind() string  { return "create_deadline" }
func (StartClock) Kind() string      { return "start_clock" }
func (TollClock) Kind() string       { return "toll_clock" }
func (ResumeClock) Kind() string     { return "resume_clock" }
func (AssignJudge) Kind() string     { return "assign_judge" }
func (CreateQueueItem) Kind() string { return "create_queue_item" }
func (LogAuditEvent) Kind() string   { return "log_audit_event" }

func (CreateDeadline) isEffect()  {}
func (StartClock) isEffect()      {}
func (TollClock) isEffect()       {}
func (ResumeClock) isEffect()     {}
func (AssignJudge) isEffect()     {}
func (CreateQueueItem) isEffect() {}
func (LogAuditEvent) isEffect()   {}
