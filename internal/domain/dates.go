package domain

import (
	"strconv"
	"time"
)

// ISODate is the wire format for ticket dates. Dates carry no time
// component; anything after the date part is ignored.
const ISODate = "2006-01-02"

// ParseDate parses an ISO date string at day granularity. Time-of-day
// components, if present, are dropped. The second return value is false
// for empty or malformed input.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if len(s) > len(ISODate) {
		s = s[:len(ISODate)]
	}
	d, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DaysBetween returns the whole number of days from a to b. Both inputs
// are truncated to day granularity first, so time-of-day never shifts the
// result. Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// CoerceEffort converts raw numeric input into a valid effort value.
// Invalid or negative input coerces to zero rather than erroring: effort
// is always a non-negative integer.
func CoerceEffort(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
