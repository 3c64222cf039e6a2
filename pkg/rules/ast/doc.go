// Package ast defines the typed expression language for data-driven
// local rules: a small condition tree evaluated against an event and
// case snapshot, and a flat action list translated into effects.
//
// The wire schema this package owns is versionless but additive-only.
// New condition or action types must be new variants; existing ones
// cannot change field semantics without migrating stored rules.
// Unrecognized node types are a parse error surfaced at rule-load time
// (pkg/rules/parser), never at evaluation time.
package ast
