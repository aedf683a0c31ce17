package domain

import "time"

// Window is a reporting period. Both bounds are inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SevenDaysBefore returns 00:00 UTC of the day exactly one week before now,
// regardless of which weekday now falls on.
func SevenDaysBefore(now time.Time) time.Time {
	return midnightUTC(now.UTC().AddDate(0, 0, -7))
}

// MostRecentWeekday returns 00:00 UTC of the latest day matching weekday,
// counting today.
func MostRecentWeekday(now time.Time, weekday time.Weekday) time.Time {
	today := midnightUTC(now)
	daysSince := (int(today.Weekday()) - int(weekday) + 7) % 7
	return today.AddDate(0, 0, -daysSince)
}

// LastWeekday is MostRecentWeekday, except that when today is weekday the
// previous cycle is returned.
func LastWeekday(now time.Time, weekday time.Weekday) time.Time {
	today := midnightUTC(now)
	daysSince := (int(today.Weekday()) - int(weekday) + 7) % 7
	if daysSince == 0 {
		daysSince = 7
	}
	return today.AddDate(0, 0, -daysSince)
}

// DayWindow starts at 00:00 UTC of date and ends at now.
func DayWindow(date, now time.Time) Window {
	return Window{Start: midnightUTC(date), End: now.UTC()}
}
