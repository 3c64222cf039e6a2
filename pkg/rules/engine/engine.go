package engine

import (
	"fmt"
	"time"

	"lexhaven/gavel/pkg/docket"
)

// TrailEntry records one rule's participation in an evaluation. The
// trail is what an auditor reads to answer "which rules fired and in
// what order" without replaying the evaluation.
type TrailEntry struct {
	RuleID   string `json:"rule_id"`
	Citation string `json:"citation"`
	Source   string `json:"source"` // "federal" or "local"
	Matched  bool   `json:"matched"`
	Note     string `json:"note,omitempty"`
}

// Result is the outcome of one two-tier rule pass.
type Result struct {
	Effects    []docket.Effect
	Violations []docket.Violation
	Trail      []TrailEntry
}

// Evaluate runs the federal pass then the local pass over one event.
// Federal rules are hard law: a local deadline citing the same rule
// family as a federal deadline already emitted in this pass survives
// only when it is strictly earlier. Local rules may tighten federal
// deadlines, never relax them.
func Evaluate(snap *Snapshot, event *docket.CaseEvent, caseCtx *docket.CaseContext) (*Result, error) {
	res := &Result{}

	// Earliest federal due date per rule-family citation, for the
	// precedence check below.
	federalDue := make(map[string]time.Time)

	for i := range snap.Federal {
		rule := &snap.Federal[i]
		if !rule.Applies(event) {
			continue
		}
		effects, violations, err := rule.Evaluate(event, caseCtx)
		if err != nil {
			return nil, fmt.Errorf("federal rule %s: %w", rule.ID, err)
		}
		for _, eff := range effects {
			if dl, ok := eff.(docket.CreateDeadline); ok {
				if prev, seen := federalDue[dl.Citation]; !seen || dl.DueAt.Before(prev) {
					federalDue[dl.Citation] = dl.DueAt
				}
			}
		}
		res.Effects = append(res.Effects, effects...)
		res.Violations = append(res.Violations, violations...)
		res.Trail = append(res.Trail, TrailEntry{
			RuleID:   rule.ID,
			Citation: rule.Citation,
			Source:   "federal",
			Matched:  len(effects) > 0 || len(violations) > 0,
		})
	}

	for _, rule := range snap.Local {
		if !rule.Matches(event.Trigger) {
			continue
		}
		if rule.Court != "" && rule.Court != event.Court {
			continue
		}

		matched, err := Match(rule.Condition, event, caseCtx)
		if err != nil {
			return nil, fmt.Errorf("local rule %s: %w", rule.ID, err)
		}
		entry := TrailEntry{
			RuleID:   rule.ID.String(),
			Citation: rule.Citation,
			Source:   "local",
			Matched:  matched,
		}
		if !matched {
			res.Trail = append(res.Trail, entry)
			continue
		}

		effects, violations, err := Apply(rule, event)
		if err != nil {
			return nil, fmt.Errorf("local rule %s: %w", rule.ID, err)
		}
		for _, eff := range effects {
			dl, ok := eff.(docket.CreateDeadline)
			if ok {
				if fedDue, claimed := federalDue[dl.Citation]; claimed && !dl.DueAt.Before(fedDue) {
					entry.Note = fmt.Sprintf("deadline suppressed: federal %s due %s is already at least as strict", dl.Citation, fedDue.Format("2006-01-02"))
					continue
				}
			}
			res.Effects = append(res.Effects, eff)
		}
		res.Violations = append(res.Violations, violations...)
		res.Trail = append(res.Trail, entry)
	}

	return res, nil
}
