package parser

import (
	"errors"
	"testing"

	"lexhaven/gavel/pkg/rules/ast"
)

func TestParseConditionJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, c *ast.Condition)
	}{
		{
			name:  "field equals",
			input: `{"type": "field_equals", "field": "case_type", "value": "civil"}`,
			check: func(t *testing.T, c *ast.Condition) {
				if c.Type != ast.ConditionFieldEquals || c.Field != "case_type" || c.Value != "civil" {
					t.Errorf("unexpected node: %+v", c)
				}
			},
		},
		{
			name:  "nested and with field_in",
			input: `{"type": "and", "conditions": [{"type": "field_in", "field": "status", "values": ["filed", "pending"]}, {"type": "always"}]}`,
			check: func(t *testing.T, c *ast.Condition) {
				if c.Type != ast.ConditionAnd || len(c.Children) != 2 {
					t.Fatalf("unexpected node: %+v", c)
				}
				if c.Children[0].Type != ast.ConditionFieldIn || len(c.Children[0].Values) != 2 {
					t.Errorf("unexpected child: %+v", c.Children[0])
				}
			},
		},
		{
			name:  "null means always match",
			input: `null`,
			check: func(t *testing.T, c *ast.Condition) {
				if c != nil {
					t.Errorf("expected nil condition, got %+v", c)
				}
			},
		},
		{
			name:    "unknown type rejected at load time",
			input:   `{"type": "field_regex", "field": "title", "value": ".*"}`,
			wantErr: true,
		},
		{
			name:    "and without children",
			input:   `{"type": "and"}`,
			wantErr: true,
		},
		{
			name:    "not with two children",
			input:   `{"type": "not", "conditions": [{"type": "always"}, {"type": "always"}]}`,
			wantErr: true,
		},
		{
			name:    "field_in without values",
			input:   `{"type": "field_in", "field": "status"}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			input:   `{"type": `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := ParseConditionJSON([]byte(tt.input))
			if tt.wantErr {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("expected ParseError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, cond)
		})
	}
}

func TestParseActionsJSON(t *testing.T) {
	data := `[
		{"type": "generate_deadline", "title": "Answer due", "days": 21, "counting_mode": "calendar"},
		{"type": "block_action", "reason": "filing fee unpaid", "override_role": "supervisor"},
		{"type": "require_fee", "amount_cents": 40500, "description": "Civil filing fee"},
		{"type": "warn", "message": "verify service addresses"},
		{"type": "notify", "recipient": "clerk", "message": "new filing"}
	]`

	actions, err := ParseActionsJSON([]byte(data))
	if err != nil {
		t.Fatalf("ParseActionsJSON: %v", err)
	}
	if len(actions) != 5 {
		t.Fatalf("got %d actions, want 5", len(actions))
	}
	if actions[0].Type != ast.ActionGenerateDeadline || actions[0].Days != 21 {
		t.Errorf("unexpected deadline action: %+v", actions[0])
	}
	if actions[2].AmountCents != 40500 {
		t.Errorf("fee cents = %d, want 40500", actions[2].AmountCents)
	}
}

func TestParseActionsJSON_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown action type", `[{"type": "escalate"}]`},
		{"deadline without days", `[{"type": "generate_deadline", "title": "x"}]`},
		{"bad counting mode", `[{"type": "generate_deadline", "title": "x", "days": 5, "counting_mode": "lunar"}]`},
		{"block without reason", `[{"type": "block_action"}]`},
		{"fee without amount", `[{"type": "require_fee", "description": "x"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseActionsJSON([]byte(tt.input)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestParseRuleFile(t *testing.T) {
	data := []byte(`
rules:
  - name: unpaid-fee-block
    court: nd-cal
    citation: "Local Rule 3-4"
    priority: 10
    triggers: [case_filed, document_filed]
    conditions:
      type: field_equals
      field: fee_paid
      value: "false"
    actions:
      - type: block_action
        reason: filing fee has not been paid
        override_role: supervisor
  - name: scheduling-order
    court: nd-cal
    citation: "Local Rule 16-2"
    priority: 20
    status: Active
    triggers: [case_filed]
    actions:
      - type: generate_deadline
        title: Initial scheduling conference
        days: 45
        counting_mode: calendar
`)

	rules, err := ParseRuleFile(data, "local.yaml")
	if err != nil {
		t.Fatalf("ParseRuleFile: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].Citation != "Local Rule 3-4" || len(rules[0].Triggers) != 2 {
		t.Errorf("unexpected first rule: %+v", rules[0])
	}
	if rules[1].Condition != nil {
		t.Error("second rule should have nil condition (always match)")
	}
	if rules[1].Status != ast.StatusActive {
		t.Errorf("status = %q, want Active", rules[1].Status)
	}
}

func TestParseRuleFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			"unknown trigger",
			"rules:\n  - name: x\n    triggers: [case_teleported]\n    actions:\n      - type: warn\n        message: hi\n",
		},
		{
			"no actions",
			"rules:\n  - name: x\n    triggers: [case_filed]\n",
		},
		{
			"no triggers",
			"rules:\n  - name: x\n    actions:\n      - type: warn\n        message: hi\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRuleFile([]byte(tt.data), "bad.yaml"); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
