package engine

import (
	"sort"
	"time"

	"lexhaven/gavel/pkg/rules/ast"
	"lexhaven/gavel/pkg/rules/federal"
)

// Snapshot is the combined rule set for one evaluation: the compiled
// federal enumeration plus the active local rules in evaluation order.
// A snapshot is immutable once built. Local rules are administratively
// editable at any time, so callers rebuild the snapshot per evaluation
// or cache it behind explicit invalidation (pkg/rules/source) — never
// a process-wide mutable singleton.
type Snapshot struct {
	Federal []federal.Rule
	Local   []*ast.Rule
	BuiltAt time.Time
}

// NewSnapshot filters local rules to those in effect at now and orders
// them by priority ascending (lower number, higher precedence), ties
// broken by citation then name for determinism. Federal rules keep
// their compiled order and always run first.
func NewSnapshot(local []*ast.Rule, now time.Time) *Snapshot {
	inEffect := make([]*ast.Rule, 0, len(local))
	for _, r := range local {
		if r.InEffect(now) {
			inEffect = append(inEffect, r)
		}
	}

	sort.SliceStable(inEffect, func(i, j int) bool {
		a, b := inEffect[i], inEffect[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Citation != b.Citation {
			return a.Citation < b.Citation
		}
		return a.Name < b.Name
	})

	return &Snapshot{
		Federal: federal.All(),
		Local:   inEffect,
		BuiltAt: now,
	}
}
