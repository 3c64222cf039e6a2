package source

import (
	"context"
	"sync"

	"lexhaven/gavel/pkg/rules/ast"
)

// MemorySource holds local rules in memory. Useful for tests and for
// courts that provision rules through the API rather than files.
type MemorySource struct {
	mu    sync.RWMutex
	rules []*ast.Rule
}

// NewMemorySource creates a source seeded with the given rules.
func NewMemorySource(rules ...*ast.Rule) *MemorySource {
	return &MemorySource{rules: append([]*ast.Rule(nil), rules...)}
}

// Load returns a copy of the held rules.
func (s *MemorySource) Load(_ context.Context) ([]*ast.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*ast.Rule(nil), s.rules...), nil
}

// Replace swaps the rule set.
func (s *MemorySource) Replace(rules []*ast.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append([]*ast.Rule(nil), rules...)
}

// Add appends a rule.
func (s *MemorySource) Add(rule *ast.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule)
}
