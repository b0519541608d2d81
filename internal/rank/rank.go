// Package rank orders backlog tickets by urgency. Ordering is a strict
// lexicographic comparison: impact weight first, then start date (tickets
// with a date come before tickets without one, earlier dates first), then
// end date under the same rule, then stored position as the stable final
// tie-break. The WSJF-style score shown next to each ticket is display
// only and never participates in ordering.
package rank

import (
	"sort"

	"github.com/jvasco/tix/internal/domain"
)

var impactWeights = map[domain.Impact]int{
	domain.ImpactCritical: 4,
	domain.ImpactHigh:     3,
	domain.ImpactMedium:   2,
	domain.ImpactLow:      1,
}

// ImpactWeight returns the numeric urgency weight for an impact level.
// Unknown levels weigh the same as low.
func ImpactWeight(i domain.Impact) int {
	if w, ok := impactWeights[i]; ok {
		return w
	}
	return 1
}

// Score computes the weighted-shortest-job-first score: impact weight over
// effort, with zero effort treated as one.
func Score(t domain.Ticket) float64 {
	effort := t.Effort
	if effort < 1 {
		effort = 1
	}
	return float64(ImpactWeight(t.Impact)) / float64(effort)
}

// Rank returns the tickets in urgency order. The input is not mutated.
func Rank(tickets []domain.Ticket) []domain.Ticket {
	ranked := append([]domain.Ticket(nil), tickets...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})
	return ranked
}

func less(a, b domain.Ticket) bool {
	wa, wb := ImpactWeight(a.Impact), ImpactWeight(b.Impact)
	if wa != wb {
		return wa > wb
	}
	if c := compareDates(a.StartDate, b.StartDate); c != 0 {
		return c < 0
	}
	if c := compareDates(a.EndDate, b.EndDate); c != 0 {
		return c < 0
	}
	return a.Position < b.Position
}

// compareDates orders dated before undated, then earlier before later.
func compareDates(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Group is a run of ranked tickets sharing an epic.
type Group struct {
	Epic        domain.Epic
	Unassigned  bool
	Tickets     []domain.Ticket
	TotalEffort int
}

// GroupByEpic partitions already-ranked tickets into epic groups. Groups
// are ordered by epic name, with the unassigned group last; within each
// group the incoming rank order is preserved.
func GroupByEpic(ranked []domain.Ticket, epics []domain.Epic) []Group {
	byID := make(map[string]domain.Epic, len(epics))
	for _, e := range epics {
		byID[e.ID] = e
	}

	buckets := make(map[string][]domain.Ticket)
	for _, t := range ranked {
		key := t.EpicID
		if _, ok := byID[key]; !ok {
			key = ""
		}
		buckets[key] = append(buckets[key], t)
	}

	groups := make([]Group, 0, len(buckets))
	for id, members := range buckets {
		g := Group{Tickets: members, TotalEffort: totalEffort(members)}
		if id == "" {
			g.Unassigned = true
		} else {
			g.Epic = byID[id]
		}
		groups = append(groups, g)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Unassigned != groups[j].Unassigned {
			return groups[j].Unassigned
		}
		return groups[i].Epic.Name < groups[j].Epic.Name
	})
	return groups
}

func totalEffort(tickets []domain.Ticket) int {
	sum := 0
	for _, t := range tickets {
		sum += t.Effort
	}
	return sum
}
