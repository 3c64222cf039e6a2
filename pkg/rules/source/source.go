// Package source provides local-rule sources for the compliance
// engine: a file source that loads YAML rule files from disk and
// watches them for changes, and an in-memory source for tests and
// embedded rule sets. Federal rules never come from a source; they are
// compiled into pkg/rules/federal.
package source

import (
	"context"

	"lexhaven/gavel/pkg/rules/ast"
)

// Source loads local rules. Implementations must return a fresh slice
// per call; callers hand it to engine.NewSnapshot, which assumes
// ownership.
type Source interface {
	// Load returns all local rules the source currently holds,
	// including drafts and expired rules; filtering to in-effect rules
	// is the snapshot's job.
	Load(ctx context.Context) ([]*ast.Rule, error)
}

// Reloadable is implemented by sources whose contents can change at
// runtime.
type Reloadable interface {
	Source

	// Watch blocks until ctx is cancelled, invoking onChange after each
	// detected change. onChange errors are logged, not fatal: a broken
	// edit must not take down the watcher.
	Watch(ctx context.Context, onChange func() error) error
}
