// Package calendar implements federal-holiday-aware deadline
// arithmetic under the FRCP 6(a) counting rule.
//
// Short periods (fewer than 11 days) count business days only; longer
// periods count straight calendar days. Either way, a deadline landing
// on a weekend or holiday is extended forward to the next business
// day, never retreated. Mail service adds three calendar days before
// that final correction.
//
// Every function here is pure: no state, no clock reads, a fixed
// holiday table.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// CountingMode selects how offset days are counted.
type CountingMode string

const (
	// BusinessDays counts only days that are not weekends or federal
	// holidays. Used for periods shorter than the calendar threshold.
	BusinessDays CountingMode = "business"

	// CalendarDays counts every day including weekends and holidays.
	CalendarDays CountingMode = "calendar"
)

// calendarThreshold is the offset at which counting switches from
// business days to calendar days.
const calendarThreshold = 11

// shortPeriodThreshold flags periods short enough to call out in
// computation notes (FRCP 6(a)(2)).
const shortPeriodThreshold = 14

// ServiceMethod is how the triggering document was served.
type ServiceMethod string

const (
	ServicePersonal   ServiceMethod = "personal"
	ServiceElectronic ServiceMethod = "electronic"
	ServiceMail       ServiceMethod = "mail"
)

// AdditionalDays returns the calendar days added for the service
// method (FRCP 6(d): +3 for mail).
func (m ServiceMethod) AdditionalDays() int {
	if m == ServiceMail {
		return 3
	}
	return 0
}

// ModeFor returns the counting mode implied by an offset: business
// days below the threshold, calendar days at or above it.
func ModeFor(offsetDays int) CountingMode {
	if offsetDays < calendarThreshold {
		return BusinessDays
	}
	return CalendarDays
}

// DeadlineFor computes the deadline offsetDays after trigger under the
// given counting mode. The raw result is extended to the next business
// day when it lands on a weekend or holiday, regardless of mode.
func DeadlineFor(trigger time.Time, offsetDays int, mode CountingMode) time.Time {
	raw := rawDeadline(trigger, offsetDays, mode)
	return NextBusinessDay(raw)
}

// Result is a computed deadline with its audit trail.
type Result struct {
	DueAt time.Time
	// Notes is the human-readable computation trail, one clause per
	// adjustment, semicolon separated.
	Notes string
	// ShortPeriod marks periods of 14 days or fewer.
	ShortPeriod bool
}

// Compute computes a deadline with service-method adjustment and a
// full computation trail. The mail +3 is applied to the raw date
// before the weekend/holiday correction, not after.
func Compute(trigger time.Time, offsetDays int, mode CountingMode, service ServiceMethod) (Result, error) {
	if offsetDays < 0 {
		return Result{}, fmt.Errorf("offset days cannot be negative: %d", offsetDays)
	}

	var notes []string
	notes = append(notes, fmt.Sprintf("trigger date %s; %d %s days",
		midnight(trigger).Format("2006-01-02"), offsetDays, mode))

	raw := rawDeadline(trigger, offsetDays, mode)

	if extra := service.AdditionalDays(); extra > 0 {
		raw = raw.AddDate(0, 0, extra)
		notes = append(notes, fmt.Sprintf("service by %s: +%d calendar days", service, extra))
	}

	due := NextBusinessDay(raw)
	if !due.Equal(raw) {
		notes = append(notes, fmt.Sprintf("landing day %s falls on weekend/holiday; extended to %s",
			raw.Format("2006-01-02"), due.Format("2006-01-02")))
	}
	notes = append(notes, fmt.Sprintf("due %s", due.Format("2006-01-02")))

	return Result{
		DueAt:       due,
		Notes:       strings.Join(notes, "; "),
		ShortPeriod: offsetDays+service.AdditionalDays() <= shortPeriodThreshold,
	}, nil
}

// NextBusinessDay returns date itself when it is a business day,
// otherwise the first business day after it.
func NextBusinessDay(date time.Time) time.Time {
	d := midnight(date)
	for !IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// rawDeadline counts the offset without the final weekend/holiday
// correction.
func rawDeadline(trigger time.Time, offsetDays int, mode CountingMode) time.Time {
	d := midnight(trigger)
	if mode == CalendarDays {
		return d.AddDate(0, 0, offsetDays)
	}
	for i := 0; i < offsetDays; i++ {
		d = d.AddDate(0, 0, 1)
		for !IsBusinessDay(d) {
			d = d.AddDate(0, 0, 1)
		}
	}
	return d
}
