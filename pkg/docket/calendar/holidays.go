package calendar

import "time"

// Holiday is one observed federal holiday.
type Holiday struct {
	Date time.Time
	Name string
}

// HolidaysForYear returns the eleven federal holidays for a year, on
// their observed dates (actual-date holidays shift Saturday→Friday and
// Sunday→Monday), sorted ascending. The table is a fixed computation,
// versioned with this package; it is not mutable at runtime.
func HolidaysForYear(year int) []Holiday {
	hs := []Holiday{
		observed(year, time.January, 1, "New Year's Day"),
		{nthWeekday(year, time.January, time.Monday, 3), "Martin Luther King Jr. Day"},
		{nthWeekday(year, time.February, time.Monday, 3), "Presidents' Day"},
		{lastWeekday(year, time.May, time.Monday), "Memorial Day"},
		observed(year, time.June, 19, "Juneteenth"),
		observed(year, time.July, 4, "Independence Day"),
		{nthWeekday(year, time.September, time.Monday, 1), "Labor Day"},
		{nthWeekday(year, time.October, time.Monday, 2), "Columbus Day"},
		observed(year, time.November, 11, "Veterans Day"),
		{nthWeekday(year, time.November, time.Thursday, 4), "Thanksgiving Day"},
		observed(year, time.December, 25, "Christmas Day"),
	}
	// Already nearly sorted; a holiday observed across a year boundary
	// (Jan 1 on a Saturday observed Dec 31) can be out of order.
	for i := 1; i < len(hs); i++ {
		for j := i; j > 0 && hs[j].Date.Before(hs[j-1].Date); j-- {
			hs[j], hs[j-1] = hs[j-1], hs[j]
		}
	}
	return hs
}

// IsHoliday reports whether date falls on an observed federal holiday.
func IsHoliday(date time.Time) bool {
	d := midnight(date)
	// New Year's Day observed on Dec 31 belongs to the next year's table.
	for _, year := range []int{d.Year(), d.Year() + 1} {
		for _, h := range HolidaysForYear(year) {
			if h.Date.Equal(d) {
				return true
			}
		}
	}
	return false
}

// IsWeekend reports whether date is a Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsBusinessDay reports whether date is neither a weekend nor a
// federal holiday.
func IsBusinessDay(date time.Time) bool {
	return !IsWeekend(date) && !IsHoliday(date)
}

// observed builds a fixed-date holiday on its observed date.
func observed(year int, month time.Month, day int, name string) Holiday {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	switch d.Weekday() {
	case time.Saturday:
		d = d.AddDate(0, 0, -1)
	case time.Sunday:
		d = d.AddDate(0, 0, 1)
	}
	return Holiday{Date: d, Name: name}
}

// nthWeekday returns the nth occurrence of weekday in a month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the last occurrence of weekday in a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	last := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	back := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -back)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
