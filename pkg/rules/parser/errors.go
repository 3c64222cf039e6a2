package parser

import "fmt"

// ParseError reports malformed rule data. It is a load-time error: the
// engine rejects the rule set before any evaluation runs against it.
type ParseError struct {
	// Path is the source file, when the rule came from one.
	Path string
	// Rule is the offending rule's name, when known.
	Rule string
	// Section points at the failing part of the document.
	Section string
	Cause   error
}

// Error returns the parse error message.
func (e *ParseError) Error() string {
	msg := "rule parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Rule != "" {
		msg += fmt.Sprintf(" (rule %q)", e.Rule)
	}
	if e.Section != "" {
		msg += " at " + e.Section
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
