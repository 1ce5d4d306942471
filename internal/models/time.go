package models

import "time"

// DayKeyLayout is the date-only form used for bucketing records by day.
const DayKeyLayout = "2006-01-02"

// NoonUTC normalizes t to noon UTC on the same calendar day. Storing log
// dates at noon keeps the day stable under timezone conversion.
func NoonUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 12, 0, 0, 0, time.UTC)
}

// DayKey truncates t to day granularity, rendered as "YYYY-MM-DD" in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}
