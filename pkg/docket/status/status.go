// Package status validates case status transitions against the fixed
// lifecycle graph for each case type. The validator runs before any
// rule evaluation: a rejected transition short-circuits the pipeline
// with a violation and no partial effect list.
package status

import (
	"fmt"

	"lexhaven/gavel/pkg/docket"
)

// transitionCitation is the administrative rule cited on rejected
// status changes.
const transitionCitation = "Admin. R. 5.2 (case status transitions)"

// criminalGraph is the directed status graph for criminal cases.
// Dismissal is reachable from every pre-sentencing state; on_appeal is
// reachable only from sentenced and dismissed, and is terminal.
var criminalGraph = map[string][]string{
	"filed":               {"arraigned", "dismissed"},
	"arraigned":           {"discovery", "plea_negotiations", "dismissed"},
	"discovery":           {"pretrial_motions", "plea_negotiations", "trial_ready", "dismissed"},
	"pretrial_motions":    {"discovery", "plea_negotiations", "trial_ready", "dismissed"},
	"plea_negotiations":   {"discovery", "trial_ready", "awaiting_sentencing", "dismissed"},
	"trial_ready":         {"in_trial", "plea_negotiations", "dismissed"},
	"in_trial":            {"awaiting_sentencing", "dismissed"},
	"awaiting_sentencing": {"sentenced"},
	"sentenced":           {"on_appeal"},
	"dismissed":           {"on_appeal"},
	"on_appeal":           {},
}

// civilGraph is the directed status graph for civil cases. Settlement
// is reachable from every active state; on_appeal is reachable only
// from judgment_entered and dismissed, and may only close.
var civilGraph = map[string][]string{
	"filed":            {"pending", "dismissed", "transferred"},
	"pending":          {"discovery", "settled", "dismissed", "transferred"},
	"discovery":        {"pretrial", "settled", "dismissed"},
	"pretrial":         {"trial_ready", "settled", "dismissed"},
	"trial_ready":      {"in_trial", "settled", "dismissed"},
	"in_trial":         {"judgment_entered", "settled", "dismissed"},
	"judgment_entered": {"on_appeal", "closed"},
	"settled":          {"closed"},
	"dismissed":        {"on_appeal"},
	"on_appeal":        {"closed"},
	"closed":           {},
	"transferred":      {},
}

// graphFor returns the status graph for a case type.
func graphFor(caseType docket.CaseType) (map[string][]string, error) {
	switch caseType {
	case docket.CaseTypeCriminal:
		return criminalGraph, nil
	case docket.CaseTypeCivil:
		return civilGraph, nil
	default:
		return nil, fmt.Errorf("unknown case type: %q", caseType)
	}
}

// Known reports whether s is a valid status for the case type.
func Known(caseType docket.CaseType, s string) bool {
	graph, err := graphFor(caseType)
	if err != nil {
		return false
	}
	_, ok := graph[s]
	return ok
}

// Validate checks a requested status change. It returns a nil
// violation when the transition is allowed, a violation when the graph
// forbids it, and a non-nil error only for statuses or case types
// outside the vocabulary (invalid input, not a rule outcome).
func Validate(caseType docket.CaseType, current, requested string) (*docket.Violation, error) {
	graph, err := graphFor(caseType)
	if err != nil {
		return nil, err
	}

	next, ok := graph[current]
	if !ok {
		return nil, fmt.Errorf("unknown %s case status: %q", caseType, current)
	}
	if _, ok := graph[requested]; !ok {
		return nil, fmt.Errorf("unknown %s case status: %q", caseType, requested)
	}

	for _, s := range next {
		if s == requested {
			return nil, nil
		}
	}

	return &docket.Violation{
		Citation:             transitionCitation,
		Message:              fmt.Sprintf("%s case may not move from %q to %q", caseType, current, requested),
		OverrideAllowed:      true,
		RequiredOverrideRole: docket.RoleJudge,
	}, nil
}

// Terminal reports whether a status has no outgoing transitions.
func Terminal(caseType docket.CaseType, s string) bool {
	graph, err := graphFor(caseType)
	if err != nil {
		return false
	}
	next, ok := graph[s]
	return ok && len(next) == 0
}
