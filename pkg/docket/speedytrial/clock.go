// Package speedytrial implements the Speedy Trial Act countdown for
// criminal cases: a 70-day clock from the charging anchor, paused by
// excludable-delay intervals and permanently closed at trial,
// dismissal, or waiver.
//
// Clock state is recomputed from the anchors and the full delay list
// every time it is read. Nothing here drifts a stored counter, which
// is what keeps rounding error from compounding across toll/resume
// cycles.
package speedytrial

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"lexhaven/gavel/pkg/docket"
)

// DeadlineDays is the statutory trial countdown (18 U.S.C. §3161(c)(1)).
const DeadlineDays = 70

// IndictmentDays is the arrest-to-indictment period (18 U.S.C. §3161(b)).
const IndictmentDays = 30

// ExpiryCitation is cited when the clock runs out before trial. The
// resulting violation has no override path: dismissal exposure under
// the statute is not clerk-overridable.
const ExpiryCitation = "18 U.S.C. §3162(a)"

// New creates an unstarted clock for a criminal case.
func New(caseID uuid.UUID, court string) *docket.Clock {
	return &docket.Clock{
		CaseID: caseID,
		Court:  court,
		State:  docket.ClockUnstarted,
	}
}

// Start moves an unstarted clock to running, anchored at trigger.
// With no charging milestone recorded yet the trigger becomes the
// filing-date anchor; a later Start (indictment, arraignment) with a
// milestone set re-anchors the deadline, as the countdown runs from
// the latest charging anchor. Starting a closed clock is an invariant
// failure.
func Start(clock *docket.Clock, trigger time.Time) error {
	if clock.State == docket.ClockClosed {
		return &docket.InvariantError{Message: fmt.Sprintf("clock for case %s is closed", clock.CaseID)}
	}
	anchor := midnight(trigger)
	if _, ok := clock.Anchor(); !ok {
		clock.FilingDate = anchor
	}
	clock.TrialDeadline = anchor.AddDate(0, 0, DeadlineDays)
	if clock.State == docket.ClockUnstarted {
		clock.State = docket.ClockRunning
	}
	return nil
}

// Toll pauses a running clock, returning the opened delay interval.
// At most one interval per case may be open; tolling a tolled, closed,
// or unstarted clock is an invariant failure.
func Toll(clock *docket.Clock, delays []docket.ExcludableDelay, reason, statutoryRef string, now time.Time) (docket.ExcludableDelay, error) {
	switch clock.State {
	case docket.ClockClosed:
		return docket.ExcludableDelay{}, &docket.InvariantError{
			Message: fmt.Sprintf("toll requested for closed clock on case %s", clock.CaseID),
		}
	case docket.ClockUnstarted:
		return docket.ExcludableDelay{}, &docket.InvariantError{
			Message: fmt.Sprintf("toll requested before clock start on case %s", clock.CaseID),
		}
	}
	if openDelay(delays) != nil {
		return docket.ExcludableDelay{}, &docket.InvariantError{
			Message: fmt.Sprintf("case %s already has an open excludable delay", clock.CaseID),
		}
	}

	clock.State = docket.ClockTolled
	clock.IsTolled = true
	return docket.ExcludableDelay{
		ID:           uuid.New(),
		CaseID:       clock.CaseID,
		Start:        midnight(now),
		Reason:       reason,
		StatutoryRef: statutoryRef,
	}, nil
}

// Resume closes the most recent open delay, stamping its end date and
// finalizing DaysExcluded as whole non-negative days. After a resume
// exactly zero delays remain open for the case.
func Resume(clock *docket.Clock, delays []docket.ExcludableDelay, now time.Time) error {
	if clock.State == docket.ClockClosed {
		return &docket.InvariantError{
			Message: fmt.Sprintf("resume requested for closed clock on case %s", clock.CaseID),
		}
	}
	open := openDelay(delays)
	if open == nil {
		return &docket.InvariantError{
			Message: fmt.Sprintf("resume requested with no open delay on case %s", clock.CaseID),
		}
	}

	end := midnight(now)
	if end.Before(open.Start) {
		end = open.Start
	}
	open.End = &end
	open.DaysExcluded = wholeDays(open.Start, end)

	clock.State = docket.ClockRunning
	clock.IsTolled = false
	return nil
}

// Close permanently stops the clock at trial start, dismissal, or
// waiver. Closing is idempotent.
func Close(clock *docket.Clock, waived bool) {
	clock.State = docket.ClockClosed
	clock.IsTolled = false
	if waived {
		clock.Waived = true
	}
}

// Recompute refreshes ElapsedDays, RemainingDays, and IsTolled from
// the anchor and the full delay list as of now. It never mutates the
// delay list and is safe to call on a closed clock.
func Recompute(clock *docket.Clock, delays []docket.ExcludableDelay, now time.Time) error {
	anchor, ok := clock.Anchor()
	if !ok {
		if clock.State != docket.ClockUnstarted {
			return &docket.InvariantError{
				Message: fmt.Sprintf("clock for case %s is %s but has no milestone dates", clock.CaseID, clock.State),
			}
		}
		clock.ElapsedDays = 0
		clock.RemainingDays = DeadlineDays
		return nil
	}

	excluded := 0
	openCount := 0
	for i := range delays {
		d := &delays[i]
		if d.Open() {
			openCount++
			// An open interval excludes every day from its start
			// through now, which is what freezes the countdown.
			excluded += wholeDays(d.Start, midnight(now))
		} else {
			excluded += d.DaysExcluded
		}
	}
	if openCount > 1 {
		return &docket.InvariantError{
			Message: fmt.Sprintf("case %s has %d open excludable delays", clock.CaseID, openCount),
		}
	}

	elapsed := wholeDays(midnight(anchor), midnight(now)) - excluded
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := DeadlineDays - elapsed
	if remaining < 0 {
		remaining = 0
	}

	clock.ElapsedDays = elapsed
	clock.RemainingDays = remaining
	clock.IsTolled = openCount == 1 && clock.State != docket.ClockClosed
	if clock.TrialDeadline.IsZero() {
		clock.TrialDeadline = midnight(anchor).AddDate(0, 0, DeadlineDays)
	}
	return nil
}

// Expired reports whether the countdown has run out while the clock is
// neither tolled, waived, nor closed. Call Recompute first.
func Expired(clock *docket.Clock) bool {
	return clock.RemainingDays == 0 &&
		!clock.IsTolled &&
		!clock.Waived &&
		clock.State == docket.ClockRunning
}

// ExpiryViolation is the one federal violation with no override path.
func ExpiryViolation(clock *docket.Clock) docket.Violation {
	return docket.Violation{
		Citation:        ExpiryCitation,
		Message:         fmt.Sprintf("speedy trial clock expired for case %s; dismissal exposure", clock.CaseID),
		OverrideAllowed: false,
	}
}

// openDelay returns the most recent open interval, or nil.
func openDelay(delays []docket.ExcludableDelay) *docket.ExcludableDelay {
	for i := len(delays) - 1; i >= 0; i-- {
		if delays[i].Open() {
			return &delays[i]
		}
	}
	return nil
}

func wholeDays(from, to time.Time) int {
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
