package ast

// ActionType identifies an action directive variant.
type ActionType string

const (
	// ActionGenerateDeadline creates a deadline, with date math done by
	// pkg/docket/calendar.
	ActionGenerateDeadline ActionType = "generate_deadline"

	// ActionBlock raises a compliance violation.
	ActionBlock ActionType = "block_action"

	// ActionWarn logs an audit warning without blocking.
	ActionWarn ActionType = "warn"

	// ActionRequireFee queues a billing item.
	ActionRequireFee ActionType = "require_fee"

	// ActionNotify logs a notification for downstream delivery.
	ActionNotify ActionType = "notify"
)

var actionTypes = map[ActionType]bool{
	ActionGenerateDeadline: true,
	ActionBlock:            true,
	ActionWarn:             true,
	ActionRequireFee:       true,
	ActionNotify:           true,
}

// KnownActionType reports whether t is a recognized variant.
func KnownActionType(t ActionType) bool {
	return actionTypes[t]
}

// Action is one directive on a matched rule. Only the fields for its
// variant are meaningful.
type Action struct {
	Type ActionType

	// generate_deadline
	Title string
	Days  int
	// CountingMode is "business", "calendar", or "" to derive from Days.
	CountingMode string

	// block_action
	Reason string
	// OverrideRole is the minimum role that may override the block;
	// defaults to supervisor when empty.
	OverrideRole string

	// warn / notify
	Message   string
	Recipient string

	// require_fee
	AmountCents int
	Description string
}
