// Package engine interprets data-driven local rules: it evaluates
// condition trees against an event and case snapshot, translates
// matched action lists into effects, and builds the immutable combined
// rule snapshot the compliance orchestrator evaluates against.
package engine

import (
	"fmt"
	"strings"

	"lexhaven/gavel/pkg/docket"
	"lexhaven/gavel/pkg/rules/ast"
)

// Match evaluates a condition tree against the event and case
// snapshot. A nil tree always matches. The walk is total: every node
// type the parser admits is handled here, and a node type it does not
// admit can never reach evaluation.
func Match(cond *ast.Condition, event *docket.CaseEvent, caseCtx *docket.CaseContext) (bool, error) {
	if cond == nil {
		return true, nil
	}

	switch cond.Type {
	case ast.ConditionAlways:
		return true, nil

	case ast.ConditionAnd:
		for _, child := range cond.Children {
			matched, err := Match(child, event, caseCtx)
			if err != nil {
				return false, err
			}
			if !matched {
				return false, nil
			}
		}
		return true, nil

	case ast.ConditionOr:
		for _, child := range cond.Children {
			matched, err := Match(child, event, caseCtx)
			if err != nil {
				return false, err
			}
			if matched {
				return true, nil
			}
		}
		return false, nil

	case ast.ConditionNot:
		if len(cond.Children) != 1 {
			return false, &docket.InputError{Field: "conditions", Message: fmt.Sprintf("not takes exactly one child, got %d", len(cond.Children))}
		}
		matched, err := Match(cond.Children[0], event, caseCtx)
		if err != nil {
			return false, err
		}
		return !matched, nil

	case ast.ConditionFieldEquals:
		v, ok := lookupField(cond.Field, event, caseCtx)
		return ok && v == cond.Value, nil

	case ast.ConditionFieldContains:
		v, ok := lookupField(cond.Field, event, caseCtx)
		return ok && strings.Contains(v, cond.Value), nil

	case ast.ConditionFieldIn:
		v, ok := lookupField(cond.Field, event, caseCtx)
		if !ok {
			return false, nil
		}
		for _, candidate := range cond.Values {
			if v == candidate {
				return true, nil
			}
		}
		return false, nil

	case ast.ConditionFieldExists:
		_, ok := lookupField(cond.Field, event, caseCtx)
		return ok, nil

	default:
		// Unreachable for parser-validated trees.
		return false, &docket.InputError{Field: "conditions", Message: fmt.Sprintf("unknown condition type %q", cond.Type)}
	}
}

// lookupField resolves a condition field name. Event-level names win,
// then the event payload, then the case snapshot (which itself falls
// back to case metadata). A missing field is "no match", never an
// error: absence is meaningful to field_exists.
func lookupField(name string, event *docket.CaseEvent, caseCtx *docket.CaseContext) (string, bool) {
	switch name {
	case "trigger":
		return string(event.Trigger), true
	case "actor":
		return event.Actor, true
	}
	if v := event.PayloadString(name); v != "" {
		return v, true
	}
	return caseCtx.Field(name)
}
