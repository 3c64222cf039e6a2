package ast

import (
	"time"

	"github.com/google/uuid"

	"lexhaven/gavel/pkg/docket"
)

// RuleStatus is the administrative lifecycle of a local rule.
type RuleStatus string

const (
	StatusActive     RuleStatus = "Active"
	StatusDraft      RuleStatus = "Draft"
	StatusSuperseded RuleStatus = "Superseded"
	StatusRepealed   RuleStatus = "Repealed"
)

// Rule is one data-driven local rule. Local rules are administratively
// mutable; federal rules are never represented this way — they are
// compiled logic in pkg/rules/federal, which is what enforces
// "federal always wins, local may only be stricter".
type Rule struct {
	ID       uuid.UUID
	Court    string
	Name     string
	Citation string

	// Priority orders local evaluation ascending: lower number, higher
	// precedence. Ties break by citation for determinism.
	Priority int
	Status   RuleStatus

	// Triggers lists the lifecycle events this rule responds to.
	Triggers []docket.Trigger

	// Condition is the root of the condition tree; nil means always
	// match.
	Condition *Condition

	// Actions run in order when the condition matches.
	Actions []Action

	// EffectiveAt/ExpiresAt bound the rule's in-effect window; nil
	// means unbounded on that side.
	EffectiveAt *time.Time
	ExpiresAt   *time.Time
}

// InEffect reports whether the rule is active and inside its
// effective window at the given instant.
func (r *Rule) InEffect(now time.Time) bool {
	if r.Status != StatusActive {
		return false
	}
	if r.EffectiveAt != nil && now.Before(*r.EffectiveAt) {
		return false
	}
	if r.ExpiresAt != nil && now.After(*r.ExpiresAt) {
		return false
	}
	return true
}

// Matches reports whether the rule subscribes to the trigger.
func (r *Rule) Matches(trigger docket.Trigger) bool {
	for _, t := range r.Triggers {
		if t == trigger {
			return true
		}
	}
	return false
}
