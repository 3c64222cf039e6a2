// Package docket defines the core data model shared by every part of
// the compliance engine: case events, the read-only case snapshot,
// the effect and violation value types, and the speedy-trial clock
// records.
//
// Everything in this package is plain data. Effects describe mutations
// for the caller to apply; they carry no side effects themselves. The
// evaluation pipeline in pkg/compliance produces these values and a
// separate applier (pkg/storage) executes them.
package docket
