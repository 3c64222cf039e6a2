package docket

import (
	"time"

	"github.com/google/uuid"
)

// ClockState describes where the speedy-trial clock is in its
// lifecycle. Transitions: Unstarted → Running → {Tolled ⇄ Running}* →
// Closed. A closed clock accepts no further mutation.
type ClockState string

const (
	ClockUnstarted ClockState = "unstarted"
	ClockRunning   ClockState = "running"
	ClockTolled    ClockState = "tolled"
	ClockClosed    ClockState = "closed"
)

// Clock is the per-case Speedy Trial Act countdown record (criminal
// cases only). Created at case filing, mutated by Start/Toll/Resume
// effects, permanently closed once trial starts, the case is
// dismissed, or the defendant waives.
type Clock struct {
	CaseID uuid.UUID
	Court  string

	ArrestDate      *time.Time
	IndictmentDate  *time.Time
	ArraignmentDate *time.Time

	// FilingDate anchors the countdown while no charging milestone is
	// recorded yet; set when the clock starts at case filing.
	FilingDate time.Time

	TrialDeadline time.Time
	ElapsedDays   int
	RemainingDays int
	IsTolled      bool
	Waived        bool
	State         ClockState
}

// Anchor returns the date the 70-day countdown runs from: the
// indictment when present, otherwise the arraignment, otherwise the
// arrest, otherwise the filing date. The second return is false while
// no anchor is set at all.
func (c *Clock) Anchor() (time.Time, bool) {
	switch {
	case c.IndictmentDate != nil:
		return *c.IndictmentDate, true
	case c.ArraignmentDate != nil:
		return *c.ArraignmentDate, true
	case c.ArrestDate != nil:
		return *c.ArrestDate, true
	}
	if !c.FilingDate.IsZero() {
		return c.FilingDate, true
	}
	return time.Time{}, false
}

// ExcludableDelay is one period of excludable delay under the Speedy
// Trial Act. The list is append-only; at most one interval per case is
// open (End == nil) at a time. Closing an interval finalizes
// DaysExcluded and un-tolls the clock.
type ExcludableDelay struct {
	ID     uuid.UUID
	CaseID uuid.UUID
	Start  time.Time
	// End is nil while the delay is open.
	End          *time.Time
	Reason       string
	StatutoryRef string
	// DaysExcluded is finalized when the interval closes; whole days,
	// never negative.
	DaysExcluded int
}

// Open reports whether the delay interval has not been closed yet.
func (d *ExcludableDelay) Open() bool { return d.End == nil }
