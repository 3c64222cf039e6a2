package docket

import (
	"time"

	"github.com/google/uuid"
)

// Party summarizes a case participant for conflict checking and
// local-rule matching. Name matching for related-case detection is an
// equality match, not fuzzy.
type Party struct {
	Name string
	// Role is plaintiff, defendant, co_defendant, or victim.
	Role string
	// CoConspirator marks a defendant flagged as a co-conspirator in a
	// related case.
	CoConspirator bool
}

// Deadline summarizes an open deadline on the case.
type Deadline struct {
	Title    string
	DueAt    time.Time
	Citation string
	Closed   bool
}

// CaseContext is the read-only projection of current case state the
// engine evaluates against. It is rebuilt fresh for every evaluation
// and must never be cached across calls: a case's state can change
// between calls.
type CaseContext struct {
	Court    string
	CaseID   uuid.UUID
	CaseType CaseType

	// Status is the current case status in the vocabulary of
	// pkg/docket/status for the case type.
	Status string

	FilingDate    time.Time
	AssignedJudge string
	TrialDate     *time.Time

	OpenDeadlines []Deadline
	FeePaid       bool
	Parties       []Party

	// Metadata carries court- or filing-specific fields that local
	// rules may match on when no struct field applies.
	Metadata map[string]string

	// Clock is the speedy-trial clock; nil for civil cases and for
	// criminal cases where the clock has not been created yet.
	Clock *Clock

	// Delays is the full excludable-delay list for the case, oldest
	// first. The clock is always recomputed from this list rather than
	// incrementally drifted.
	Delays []ExcludableDelay
}

// PartyNames returns the set of party names on the case, used for
// related-case conflict detection in the assignment wheel.
func (c *CaseContext) PartyNames() []string {
	names := make([]string, 0, len(c.Parties))
	for _, p := range c.Parties {
		names = append(names, p.Name)
	}
	return names
}

// Field resolves a named field for local-rule condition matching.
// Struct fields take precedence; unknown names fall back to Metadata.
// The second return is false when the field does not exist.
func (c *CaseContext) Field(name string) (string, bool) {
	switch name {
	case "case_type":
		return string(c.CaseType), true
	case "status":
		return c.Status, true
	case "court":
		return c.Court, true
	case "assigned_judge":
		if c.AssignedJudge == "" {
			return "", false
		}
		return c.AssignedJudge, true
	case "fee_paid":
		if c.FeePaid {
			return "true", true
		}
		return "false", true
	}
	if c.Metadata != nil {
		if v, ok := c.Metadata[name]; ok {
			return v, true
		}
	}
	return "", false
}
