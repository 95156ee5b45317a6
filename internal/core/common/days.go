package common

import (
	"math"
	"time"
)

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from `from` to `to`, both read in to's location.
// Time of day is ignored, so two instants on the same local day are 0 apart.
// The result is negative when `from` falls on a later day.
func DaysBetween(from, to time.Time) int {
	a := StartOfDay(from.In(to.Location()))
	b := StartOfDay(to)
	// Round absorbs 23h/25h days around DST changes.
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// DaysSince is DaysBetween clamped at zero for timestamps in the future.
func DaysSince(t, now time.Time) int {
	return max(0, DaysBetween(t, now))
}

// AtHour returns the given calendar day offset by `days`, at hour:00 local time.
func AtHour(t time.Time, days, hour int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+days, hour, 0, 0, 0, t.Location())
}
