// Package timeline computes the gantt-style layout for tickets with
// scheduled dates. The layout is pure data - a window of days plus one bar
// per dated ticket - so the view layer only draws.
package timeline

import (
	"sort"
	"time"

	"github.com/jvasco/tix/internal/domain"
)

// Window padding around the scheduled range, and the default span shown
// when no ticket carries a start date.
const (
	leadDays    = 3
	trailDays   = 7
	defaultSpan = 14
)

// Bar places a single ticket on the day grid. ColumnStart is 1-indexed:
// column zero is reserved for the row label.
type Bar struct {
	TicketID    string
	ColumnStart int
	Span        int
}

// Layout is the computed day window and the bars placed inside it.
type Layout struct {
	Days []time.Time
	Bars []Bar
}

// Compute lays out the given tickets around now. Only tickets with a start
// date get a bar, but every parseable date - start or end, on any ticket,
// inverted or not - stretches the window: it runs from three days before
// the earliest known date to seven days after the latest. With no dates at
// all it covers today plus two weeks.
func Compute(tickets []domain.Ticket, now time.Time) Layout {
	type dated struct {
		ticket domain.Ticket
		start  time.Time
		end    time.Time
	}

	var items []dated
	var known []time.Time
	for _, t := range tickets {
		start, hasStart := domain.ParseDate(t.StartDate)
		end, hasEnd := domain.ParseDate(t.EndDate)
		if hasStart {
			known = append(known, start)
		}
		if hasEnd {
			known = append(known, end)
		}
		if !hasStart {
			continue
		}
		if !hasEnd || !end.After(start) {
			end = start
		}
		items = append(items, dated{ticket: t, start: start, end: end})
	}

	var windowStart, windowEnd time.Time
	if len(known) == 0 {
		windowStart = now.UTC().Truncate(24 * time.Hour)
		windowEnd = windowStart.AddDate(0, 0, defaultSpan)
	} else {
		windowStart, windowEnd = known[0], known[0]
		for _, d := range known[1:] {
			if d.Before(windowStart) {
				windowStart = d
			}
			if d.After(windowEnd) {
				windowEnd = d
			}
		}
		windowStart = windowStart.AddDate(0, 0, -leadDays)
		windowEnd = windowEnd.AddDate(0, 0, trailDays)
	}

	total := domain.DaysBetween(windowStart, windowEnd) + 1
	days := make([]time.Time, total)
	for i := range days {
		days[i] = windowStart.AddDate(0, 0, i)
	}

	bars := make([]Bar, 0, len(items))
	for _, it := range items {
		span := domain.DaysBetween(it.start, it.end) + 1
		if span < 1 {
			span = 1
		}
		col := domain.DaysBetween(windowStart, it.start) + 1
		if remaining := total - (col - 1); span > remaining {
			span = remaining
		}
		bars = append(bars, Bar{TicketID: it.ticket.ID, ColumnStart: col, Span: span})
	}

	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].ColumnStart != bars[j].ColumnStart {
			return bars[i].ColumnStart < bars[j].ColumnStart
		}
		return bars[i].TicketID < bars[j].TicketID
	})

	return Layout{Days: days, Bars: bars}
}

// IsWeekend reports whether the day falls on Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
