// Package parser decodes stored local rules — JSON condition/action
// trees, or whole YAML rule files — into the typed AST. Validation is
// total and happens here, at load time: a malformed tree or an
// unrecognized node type is a *ParseError, so evaluation never sees an
// ill-formed rule and never panics on one.
package parser

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"lexhaven/gavel/pkg/docket"
	"lexhaven/gavel/pkg/rules/ast"
)

// conditionNode is the wire form of a condition tree node.
type conditionNode struct {
	Type       string          `json:"type" yaml:"type"`
	Field      string          `json:"field,omitempty" yaml:"field,omitempty"`
	Value      string          `json:"value,omitempty" yaml:"value,omitempty"`
	Values     []string        `json:"values,omitempty" yaml:"values,omitempty"`
	Conditions []conditionNode `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// actionNode is the wire form of an action directive.
type actionNode struct {
	Type         string `json:"type" yaml:"type"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Days         int    `json:"days,omitempty" yaml:"days,omitempty"`
	CountingMode string `json:"counting_mode,omitempty" yaml:"counting_mode,omitempty"`
	Reason       string `json:"reason,omitempty" yaml:"reason,omitempty"`
	OverrideRole string `json:"override_role,omitempty" yaml:"override_role,omitempty"`
	Message      string `json:"message,omitempty" yaml:"message,omitempty"`
	Recipient    string `json:"recipient,omitempty" yaml:"recipient,omitempty"`
	AmountCents  int    `json:"amount_cents,omitempty" yaml:"amount_cents,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ruleDoc is the wire form of a whole rule in a YAML rule file.
type ruleDoc struct {
	ID          string          `yaml:"id"`
	Court       string          `yaml:"court"`
	Name        string          `yaml:"name"`
	Citation    string          `yaml:"citation"`
	Priority    int             `yaml:"priority"`
	Status      string          `yaml:"status"`
	Triggers    []string        `yaml:"triggers"`
	Conditions  *conditionNode  `yaml:"conditions"`
	Actions     []actionNode    `yaml:"actions"`
	EffectiveAt string          `yaml:"effective_at"`
	ExpiresAt   string          `yaml:"expires_at"`
}

// ruleFile is a YAML document holding one or more rules.
type ruleFile struct {
	Rules []ruleDoc `yaml:"rules"`
}

// ParseConditionJSON decodes a stored JSON condition tree. An empty or
// null document yields nil (always match).
func ParseConditionJSON(data []byte) (*ast.Condition, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var node conditionNode
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, &ParseError{Section: "conditions", Cause: err}
	}
	cond, err := buildCondition(&node, "conditions")
	if err != nil {
		return nil, err
	}
	return cond, nil
}

// ParseActionsJSON decodes a stored JSON action list.
func ParseActionsJSON(data []byte) ([]ast.Action, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var nodes []actionNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, &ParseError{Section: "actions", Cause: err}
	}
	return buildActions(nodes)
}

// ParseRuleFile decodes a YAML rule file into validated rules.
func ParseRuleFile(data []byte, path string) ([]*ast.Rule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}

	rules := make([]*ast.Rule, 0, len(file.Rules))
	for i, doc := range file.Rules {
		rule, err := buildRule(&doc)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Path = path
				pe.Rule = doc.Name
				return nil, pe
			}
			return nil, &ParseError{Path: path, Rule: doc.Name, Cause: err}
		}
		if rule.Name == "" {
			return nil, &ParseError{Path: path, Section: fmt.Sprintf("rules[%d]", i), Cause: fmt.Errorf("rule has no name")}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func buildRule(doc *ruleDoc) (*ast.Rule, error) {
	id := uuid.New()
	if doc.ID != "" {
		parsed, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, &ParseError{Section: "id", Cause: err}
		}
		id = parsed
	}

	status := ast.RuleStatus(doc.Status)
	if doc.Status == "" {
		status = ast.StatusActive
	}

	triggers := make([]docket.Trigger, 0, len(doc.Triggers))
	for _, t := range doc.Triggers {
		trigger := docket.Trigger(t)
		if !docket.KnownTrigger(trigger) {
			return nil, &ParseError{Section: "triggers", Cause: fmt.Errorf("unknown trigger %q", t)}
		}
		triggers = append(triggers, trigger)
	}
	if len(triggers) == 0 {
		return nil, &ParseError{Section: "triggers", Cause: fmt.Errorf("rule subscribes to no triggers")}
	}

	var cond *ast.Condition
	if doc.Conditions != nil {
		built, err := buildCondition(doc.Conditions, "conditions")
		if err != nil {
			return nil, err
		}
		cond = built
	}

	actions, err := buildActions(doc.Actions)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, &ParseError{Section: "actions", Cause: fmt.Errorf("rule has no actions")}
	}

	rule := &ast.Rule{
		ID:        id,
		Court:     doc.Court,
		Name:      doc.Name,
		Citation:  doc.Citation,
		Priority:  doc.Priority,
		Status:    status,
		Triggers:  triggers,
		Condition: cond,
		Actions:   actions,
	}

	if doc.EffectiveAt != "" {
		t, err := time.Parse(time.RFC3339, doc.EffectiveAt)
		if err != nil {
			return nil, &ParseError{Section: "effective_at", Cause: err}
		}
		rule.EffectiveAt = &t
	}
	if doc.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, doc.ExpiresAt)
		if err != nil {
			return nil, &ParseError{Section: "expires_at", Cause: err}
		}
		rule.ExpiresAt = &t
	}
	return rule, nil
}

// buildCondition validates one node and recurses into children.
func buildCondition(node *conditionNode, path string) (*ast.Condition, error) {
	t := ast.ConditionType(node.Type)
	if !ast.KnownConditionType(t) {
		return nil, &ParseError{Section: path, Cause: fmt.Errorf("unknown condition type %q", node.Type)}
	}

	cond := &ast.Condition{Type: t, Field: node.Field, Value: node.Value, Values: node.Values}

	switch t {
	case ast.ConditionAlways:
		// No fields.
	case ast.ConditionAnd, ast.ConditionOr:
		if len(node.Conditions) == 0 {
			return nil, &ParseError{Section: path, Cause: fmt.Errorf("%s requires child conditions", t)}
		}
	case ast.ConditionNot:
		if len(node.Conditions) != 1 {
			return nil, &ParseError{Section: path, Cause: fmt.Errorf("not requires exactly one child, got %d", len(node.Conditions))}
		}
	case ast.ConditionFieldEquals, ast.ConditionFieldContains:
		if node.Field == "" {
			return nil, &ParseError{Section: path, Cause: fmt.Errorf("%s requires a field", t)}
		}
	case ast.ConditionFieldIn:
		if node.Field == "" || len(node.Values) == 0 {
			return nil, &ParseError{Section: path, Cause: fmt.Errorf("field_in requires a field and a values set")}
		}
	case ast.ConditionFieldExists:
		if node.Field == "" {
			return nil, &ParseError{Section: path, Cause: fmt.Errorf("field_exists requires a field")}
		}
	}

	for i := range node.Conditions {
		child, err := buildCondition(&node.Conditions[i], fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		cond.Children = append(cond.Children, child)
	}
	return cond, nil
}

func buildActions(nodes []actionNode) ([]ast.Action, error) {
	actions := make([]ast.Action, 0, len(nodes))
	for i, node := range nodes {
		t := ast.ActionType(node.Type)
		if !ast.KnownActionType(t) {
			return nil, &ParseError{Section: fmt.Sprintf("actions[%d]", i), Cause: fmt.Errorf("unknown action type %q", node.Type)}
		}

		a := ast.Action{
			Type:         t,
			Title:        node.Title,
			Days:         node.Days,
			CountingMode: node.CountingMode,
			Reason:       node.Reason,
			OverrideRole: node.OverrideRole,
			Message:      node.Message,
			Recipient:    node.Recipient,
			AmountCents:  node.AmountCents,
			Description:  node.Description,
		}

		switch t {
		case ast.ActionGenerateDeadline:
			if a.Days <= 0 {
				return nil, &ParseError{Section: fmt.Sprintf("actions[%d]", i), Cause: fmt.Errorf("generate_deadline requires positive days")}
			}
			if a.CountingMode != "" && a.CountingMode != "business" && a.CountingMode != "calendar" {
				return nil, &ParseError{Section: fmt.Sprintf("actions[%d]", i), Cause: fmt.Errorf("unknown counting mode %q", a.CountingMode)}
			}
		case ast.ActionBlock:
			if a.Reason == "" {
				return nil, &ParseError{Section: fmt.Sprintf("actions[%d]", i), Cause: fmt.Errorf("block_action requires a reason")}
			}
		case ast.ActionRequireFee:
			if a.AmountCents <= 0 {
				return nil, &ParseError{Section: fmt.Sprintf("actions[%d]", i), Cause: fmt.Errorf("require_fee requires a positive amount")}
			}
		}
		actions = append(actions, a)
	}
	return actions, nil
}
