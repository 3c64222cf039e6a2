package ast

// ConditionType identifies a condition tree node variant.
type ConditionType string

const (
	ConditionAlways        ConditionType = "always"
	ConditionAnd           ConditionType = "and"
	ConditionOr            ConditionType = "or"
	ConditionNot           ConditionType = "not"
	ConditionFieldEquals   ConditionType = "field_equals"
	ConditionFieldIn       ConditionType = "field_in"
	ConditionFieldContains ConditionType = "field_contains"
	ConditionFieldExists   ConditionType = "field_exists"
)

// conditionTypes is the closed set of recognized variants.
var conditionTypes = map[ConditionType]bool{
	ConditionAlways:        true,
	ConditionAnd:           true,
	ConditionOr:            true,
	ConditionNot:           true,
	ConditionFieldEquals:   true,
	ConditionFieldIn:       true,
	ConditionFieldContains: true,
	ConditionFieldExists:   true,
}

// KnownConditionType reports whether t is a recognized variant.
func KnownConditionType(t ConditionType) bool {
	return conditionTypes[t]
}

// Condition is one node of a rule's condition tree. Field/Value/Values
// apply to the field_* variants; Children to the logical ones.
type Condition struct {
	Type     ConditionType
	Field    string
	Value    string
	Values   []string
	Children []*Condition
}

// IsLogical returns true for and/or/not nodes.
func (c *Condition) IsLogical() bool {
	return c.Type == ConditionAnd || c.Type == ConditionOr || c.Type == ConditionNot
}
