// Package storage persists engine state in SQLite: deadlines, queue
// items, judge assignments, speedy-trial clocks and their excludable
// delays, wheel configuration, conflicts, and local rule documents.
//
// The package's central contract is atomic effect application: every
// effect of one decision is applied inside a single transaction, in
// effect order, and a failure rolls the whole decision back. A decision
// is either fully reflected in the database or not at all.
//
// Audit rows are the one exception: LogAuditEvent effects go to the
// append-only audit store (pkg/auditlog), which lives in its own
// database file. The applier forwards them after commit so an audit
// failure cannot roll back applied state, and an apply failure leaves
// no audit rows for effects that never happened.
package storage
