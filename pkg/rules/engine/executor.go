package engine

import (
	"fmt"

	"lexhaven/gavel/pkg/docket"
	"lexhaven/gavel/pkg/docket/calendar"
	"lexhaven/gavel/pkg/rules/ast"
)

// Apply translates a matched rule's action list 1:1 into effects and
// violations. Date math goes through pkg/docket/calendar; the trigger
// date is the event timestamp.
func Apply(rule *ast.Rule, event *docket.CaseEvent) ([]docket.Effect, []docket.Violation, error) {
	var effects []docket.Effect
	var violations []docket.Violation

	for _, action := range rule.Actions {
		switch action.Type {
		case ast.ActionGenerateDeadline:
			mode := calendar.CountingMode(action.CountingMode)
			if action.CountingMode == "" {
				mode = calendar.ModeFor(action.Days)
			}
			service := calendar.ServiceMethod(event.PayloadString("service_method"))
			if service == "" {
				service = calendar.ServicePersonal
			}
			res, err := calendar.Compute(event.OccurredAt, action.Days, mode, service)
			if err != nil {
				return nil, nil, &docket.InputError{Field: "actions", Message: err.Error()}
			}
			effects = append(effects, docket.CreateDeadline{
				Title:    action.Title,
				DueAt:    res.DueAt,
				Citation: rule.Citation,
				Notes:    fmt.Sprintf("generated by rule %q: %s", rule.Name, res.Notes),
			})

		case ast.ActionBlock:
			role := action.OverrideRole
			if role == "" {
				role = docket.RoleSupervisor
			}
			violations = append(violations, docket.Violation{
				Citation:             rule.Citation,
				Message:              fmt.Sprintf("[%s] %s", rule.Name, action.Reason),
				OverrideAllowed:      true,
				RequiredOverrideRole: role,
			})

		case ast.ActionWarn:
			effects = append(effects, docket.LogAuditEvent{
				Type:   "rule_warning",
				Detail: fmt.Sprintf("[%s] %s", rule.Name, action.Message),
			})

		case ast.ActionRequireFee:
			effects = append(effects, docket.CreateQueueItem{
				Type:     "billing",
				Title:    fmt.Sprintf("%s ($%.2f)", action.Description, float64(action.AmountCents)/100),
				Priority: "medium",
			})

		case ast.ActionNotify:
			effects = append(effects, docket.LogAuditEvent{
				Type:   "rule_notification",
				Detail: fmt.Sprintf("[%s] notify %s: %s", rule.Name, action.Recipient, action.Message),
			})

		default:
			// Unreachable for parser-validated rules.
			return nil, nil, &docket.InputError{Field: "actions", Message: fmt.Sprintf("unknown action type %q", action.Type)}
		}
	}

	return effects, violations, nil
}
