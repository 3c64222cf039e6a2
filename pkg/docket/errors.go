package docket

import "fmt"

// The engine distinguishes three failure kinds and never conflates
// them: ViolationError (expected business outcome), InputError
// (malformed event or rule data, recoverable), and InvariantError
// (inconsistent snapshot, a programming or data-integrity fault).

// ViolationError carries an unresolved violation out of evaluation.
// It is a normal outcome, not a fault; callers unwrap it with
// errors.As to reach the violation and its override policy.
type ViolationError struct {
	Violation Violation
}

// Error returns the violation text.
func (e *ViolationError) Error() string {
	return "blocked: " + e.Violation.String()
}

// InputError marks malformed input local to one evaluation: an unknown
// trigger, a bad payload field, or rule data that fails to parse.
// Callers surface it as an unprocessable request, not a rule block.
type InputError struct {
	Field   string
	Message string
}

// Error returns the input error message.
func (e *InputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
	}
	return "invalid input: " + e.Message
}

// InvariantError marks an inconsistent case snapshot, such as a toll
// request against a closed clock. It indicates a caller bug, never a
// rule outcome.
type InvariantError struct {
	Message string
}

// Error returns the invariant error message.
func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Message
}
