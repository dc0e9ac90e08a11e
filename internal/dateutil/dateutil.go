// Package dateutil provides month-safe date arithmetic for commitment end
// dates and the 7-day windows used by the weekly aggregation.
package dateutil

import "time"

// DateOnly truncates t to midnight UTC so that dates compare as whole days.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the date months calendar months after start, with the
// day-of-month clamped to the last valid day of the target month
// (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap year). months <= 0 returns
// start unchanged.
//
// time.Time.AddDate is deliberately not used here: it normalizes overflowing
// days into the next month (Jan 31 + 1 month = Mar 2/3), which is the wrong
// behaviour for a commitment that ends "one month later".
func AddMonths(start time.Time, months int) time.Time {
	if months <= 0 {
		return DateOnly(start)
	}
	monthIndex := int(start.Month()) - 1 + months
	year := start.Year() + monthIndex/12
	month := time.Month(monthIndex%12 + 1)
	day := start.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// WeekWindow returns the 7-day inclusive window [start, start+6] anchored at
// the given date. Callers choose the anchor (start of ISO week, N weeks before
// today, first workout date); this is just the range constructor.
func WeekWindow(anchor time.Time) (start, end time.Time) {
	start = DateOnly(anchor)
	end = start.AddDate(0, 0, 6)
	return start, end
}

// StartOfISOWeek returns the Monday of the ISO week containing d.
func StartOfISOWeek(d time.Time) time.Time {
	d = DateOnly(d)
	weekday := int(d.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	return d.AddDate(0, 0, -(weekday - 1))
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
