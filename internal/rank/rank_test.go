package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvasco/tix/internal/domain"
)

func TestImpactWeight(t *testing.T) {
	assert.Equal(t, 4, ImpactWeight(domain.ImpactCritical))
	assert.Equal(t, 3, ImpactWeight(domain.ImpactHigh))
	assert.Equal(t, 2, ImpactWeight(domain.ImpactMedium))
	assert.Equal(t, 1, ImpactWeight(domain.ImpactLow))
	assert.Equal(t, 1, ImpactWeight(domain.Impact("galactic")))
}

func TestScore(t *testing.T) {
	assert.InDelta(t, 2.0, Score(domain.Ticket{Impact: domain.ImpactCritical, Effort: 2}), 1e-9)
	assert.InDelta(t, 3.0, Score(domain.Ticket{Impact: domain.ImpactHigh, Effort: 1}), 1e-9)
	// Zero effort counts as one instead of dividing by zero.
	assert.InDelta(t, 4.0, Score(domain.Ticket{Impact: domain.ImpactCritical}), 1e-9)
}

func TestRank_ImpactDominatesDates(t *testing.T) {
	ranked := Rank([]domain.Ticket{
		{ID: "low-early", Impact: domain.ImpactLow, StartDate: "2024-01-01"},
		{ID: "critical-late", Impact: domain.ImpactCritical, StartDate: "2024-12-31"},
		{ID: "medium", Impact: domain.ImpactMedium},
	})
	assert.Equal(t, []string{"critical-late", "medium", "low-early"}, ids(ranked))
}

func TestRank_StartDateBreaksImpactTie(t *testing.T) {
	ranked := Rank([]domain.Ticket{
		{ID: "a", Impact: domain.ImpactHigh, StartDate: "2024-05-02"},
		{ID: "b", Impact: domain.ImpactHigh, StartDate: "2024-05-01"},
		{ID: "c", Impact: domain.ImpactLow},
	})
	assert.Equal(t, []string{"b", "a", "c"}, ids(ranked))
}

func TestRank_DatedBeforeUndated(t *testing.T) {
	ranked := Rank([]domain.Ticket{
		{ID: "undated", Impact: domain.ImpactHigh},
		{ID: "dated", Impact: domain.ImpactHigh, StartDate: "2024-06-01"},
	})
	assert.Equal(t, []string{"dated", "undated"}, ids(ranked))
}

func TestRank_EndDateThenPosition(t *testing.T) {
	ranked := Rank([]domain.Ticket{
		{ID: "p2", Impact: domain.ImpactHigh, StartDate: "2024-05-01", EndDate: "2024-05-10", Position: 2},
		{ID: "p1", Impact: domain.ImpactHigh, StartDate: "2024-05-01", EndDate: "2024-05-10", Position: 1},
		{ID: "sooner", Impact: domain.ImpactHigh, StartDate: "2024-05-01", EndDate: "2024-05-05", Position: 9},
	})
	assert.Equal(t, []string{"sooner", "p1", "p2"}, ids(ranked))
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []domain.Ticket{
		{ID: "z", Impact: domain.ImpactLow},
		{ID: "a", Impact: domain.ImpactCritical},
	}
	_ = Rank(in)
	assert.Equal(t, "z", in[0].ID)
}

func TestGroupByEpic(t *testing.T) {
	epics := []domain.Epic{
		{ID: "e1", Name: "Billing"},
		{ID: "e2", Name: "Auth"},
	}
	ranked := Rank([]domain.Ticket{
		{ID: "t1", Impact: domain.ImpactCritical, Effort: 3, EpicID: "e1"},
		{ID: "t2", Impact: domain.ImpactHigh, Effort: 2, EpicID: "e2"},
		{ID: "t3", Impact: domain.ImpactMedium, Effort: 5, EpicID: "e1"},
		{ID: "t4", Impact: domain.ImpactLow, Effort: 1},
	})

	groups := GroupByEpic(ranked, epics)
	require.Len(t, groups, 3)

	// Named groups alphabetically, unassigned last.
	assert.Equal(t, "Auth", groups[0].Epic.Name)
	assert.Equal(t, "Billing", groups[1].Epic.Name)
	assert.True(t, groups[2].Unassigned)

	assert.Equal(t, []string{"t1", "t3"}, ids(groups[1].Tickets))
	assert.Equal(t, 8, groups[1].TotalEffort)
	assert.Equal(t, 2, groups[0].TotalEffort)
	assert.Equal(t, 1, groups[2].TotalEffort)
}

func TestGroupByEpic_DanglingEpicRefGoesUnassigned(t *testing.T) {
	groups := GroupByEpic([]domain.Ticket{
		{ID: "t1", EpicID: "deleted-epic", Effort: 2},
	}, nil)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Unassigned)
	assert.Equal(t, []string{"t1"}, ids(groups[0].Tickets))
}

func ids(tickets []domain.Ticket) []string {
	out := make([]string, len(tickets))
	for i, t := range tickets {
		out[i] = t.ID
	}
	return out
}
