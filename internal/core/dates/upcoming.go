package dates

import (
	"sort"
	"time"

	"github.com/rebelchris/recallect/internal/core/common"
	"github.com/rebelchris/recallect/internal/core/model"
)

// Upcoming is an important date resolved to its next occurrence.
type Upcoming struct {
	Date      model.ImportantDate `json:"importantDate"`
	ContactID string              `json:"contactId"`
	Occurs    time.Time           `json:"occurs"`
	DaysUntil int                 `json:"daysUntil"`
}

// Resolve returns dates occurring within horizonDays of now, soonest first.
// Recurring dates (and dates without a year) roll over to next year once passed;
// one-time dates in the past never resurface.
func Resolve(importantDates []model.ImportantDate, now time.Time, horizonDays int) []Upcoming {
	today := common.StartOfDay(now)
	loc := now.Location()

	var out []Upcoming
	for _, d := range importantDates {
		year, month, day, ok := parseDate(d.Date)
		if !ok {
			continue
		}

		var occurs time.Time
		if d.Recurring || d.Year == nil {
			occurs = occurrence(today.Year(), month, day, loc)
			if occurs.Before(today) {
				occurs = occurrence(today.Year()+1, month, day, loc)
			}
		} else {
			if *d.Year > 0 {
				year = *d.Year
			}
			occurs = occurrence(year, month, day, loc)
		}

		daysUntil := common.DaysBetween(today, occurs)
		if daysUntil < 0 || daysUntil > horizonDays {
			continue
		}

		out = append(out, Upcoming{
			Date:      d,
			ContactID: d.ContactID,
			Occurs:    occurs,
			DaysUntil: daysUntil,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntil < out[j].DaysUntil
	})
	return out
}

// parseDate accepts YYYY-MM-DD and rejects impossible month/day pairs.
func parseDate(s string) (year int, month time.Month, day int, ok bool) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return 0, 0, 0, false
	}
	return t.Year(), t.Month(), t.Day(), true
}

// occurrence builds local midnight of month/day in year. Feb 29 falls back to
// Feb 28 in non-leap years instead of spilling into March.
func occurrence(year int, month time.Month, day int, loc *time.Location) time.Time {
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
