package docket

import "fmt"

// Violation is a hard stop produced by rule evaluation. It is a normal
// evaluation output, not a fault: the engine returns it as a value and
// the caller decides how to surface it. A violation is always logged,
// whether or not it is later overridden.
type Violation struct {
	// Citation identifies the rule that blocked, e.g. "18 U.S.C. §3162(a)".
	Citation string

	// Message is the human-readable reason.
	Message string

	// OverrideAllowed is false only for statutory blocks with no
	// override path (speedy-trial expiry).
	OverrideAllowed bool

	// RequiredOverrideRole is the minimum role an override actor must
	// hold, when OverrideAllowed is true.
	RequiredOverrideRole string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s", v.Citation, v.Message)
}

// Override is an authorized bypass of a blocking violation. It is
// consumed only to unblock; it is itself always logged regardless of
// outcome.
type Override struct {
	Actor string
	Role  string
	// Reason is mandatory; an override without a reason is invalid input.
	Reason string
}

// Satisfies reports whether this override unblocks v. Roles form a
// strict ladder: clerk < supervisor < judge < chief_judge.
func (o Override) Satisfies(v Violation) bool {
	if !v.OverrideAllowed {
		return false
	}
	return roleRank(o.Role) >= roleRank(v.RequiredOverrideRole)
}

// Override roles, weakest to strongest.
const (
	RoleClerk      = "clerk"
	RoleSupervisor = "supervisor"
	RoleJudge      = "judge"
	RoleChiefJudge = "chief_judge"
)

func roleRank(role string) int {
	switch role {
	case RoleClerk:
		return 1
	case RoleSupervisor:
		return 2
	case RoleJudge:
		return 3
	case RoleChiefJudge:
		return 4
	default:
		return 0
	}
}
