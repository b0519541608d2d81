package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketStatus_Valid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.Valid(), "status %s should be valid", s)
	}

	assert.False(t, TicketStatus("").Valid())
	assert.False(t, TicketStatus("ARCHIVED").Valid())
	assert.False(t, TicketStatus("backlog").Valid(), "status values are case-sensitive")
}

func TestTicket_IsDraft(t *testing.T) {
	assert.True(t, Ticket{}.IsDraft())
	assert.False(t, Ticket{ID: "t-1"}.IsDraft())
}

func TestNewDraft(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d := NewDraft(StatusBacklog, "", "")
		assert.True(t, d.IsDraft())
		assert.Equal(t, DraftTitle, d.Title)
		assert.Equal(t, StatusBacklog, d.Status)
		assert.Equal(t, ImpactLow, d.Impact)
		assert.Equal(t, 0, d.Effort)
	})

	t.Run("carries initial dates", func(t *testing.T) {
		d := NewDraft(StatusTodo, "2024-05-01", "2024-05-03")
		assert.Equal(t, StatusTodo, d.Status)
		assert.Equal(t, "2024-05-01", d.StartDate)
		assert.Equal(t, "2024-05-03", d.EndDate)
	})

	t.Run("invalid status falls back to backlog", func(t *testing.T) {
		d := NewDraft(TicketStatus("JUNK"), "", "")
		assert.Equal(t, StatusBacklog, d.Status)
	})
}

func TestParseDate(t *testing.T) {
	t.Run("plain date", func(t *testing.T) {
		d, ok := ParseDate("2024-06-10")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("time component ignored", func(t *testing.T) {
		d, ok := ParseDate("2024-06-10T15:04:05Z")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := ParseDate("")
		assert.False(t, ok)
	})

	t.Run("garbage", func(t *testing.T) {
		_, ok := ParseDate("not-a-date")
		assert.False(t, ok)
	})
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, -3, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))

	// Time-of-day must not shift the day count.
	noon := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, 3, DaysBetween(noon, b))
}

func TestCoerceEffort(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"5", 5},
		{"0", 0},
		{"-3", 0},
		{"", 0},
		{"abc", 0},
		{"3.5", 0},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, CoerceEffort(tc.raw))
		})
	}
}

func TestNextEpicColor(t *testing.T) {
	assert.Equal(t, EpicColors[0], NextEpicColor(0))
	assert.Equal(t, EpicColors[1], NextEpicColor(1))
	assert.Equal(t, EpicColors[0], NextEpicColor(len(EpicColors)))
	assert.Equal(t, EpicColors[0], NextEpicColor(-2))
}
