package store

import (
	"sort"

	"github.com/jvasco/tix/internal/domain"
)

// BoardColumn pairs a configured board lane with the tickets whose status
// matches its key, in stable position order.
type BoardColumn struct {
	Column  domain.Column
	Tickets []domain.Ticket
}

// BoardColumns computes the board projection for a project: lanes sorted by
// position, each holding the tickets keyed to its status. A status with no
// lane leaves its tickets off the board entirely; they still show up in the
// backlog and timeline projections. Multiple lanes sharing a status key
// each show the full ticket set for that status.
func (s *Store) BoardColumns(projectID string) ([]BoardColumn, error) {
	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	columns := append([]domain.Column(nil), p.Columns...)
	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].Position < columns[j].Position
	})

	board := make([]BoardColumn, 0, len(columns))
	for _, col := range columns {
		var tickets []domain.Ticket
		for _, t := range p.Tickets {
			if t.Status == col.StatusKey {
				tickets = append(tickets, t)
			}
		}
		sort.SliceStable(tickets, func(i, j int) bool {
			if tickets[i].Position != tickets[j].Position {
				return tickets[i].Position < tickets[j].Position
			}
			return tickets[i].ID < tickets[j].ID
		})
		board = append(board, BoardColumn{Column: col, Tickets: tickets})
	}
	return board, nil
}

// BacklogTickets returns the tickets in stasis (status BACKLOG). Ordering
// is left to the ranking engine.
func (s *Store) BacklogTickets(projectID string) ([]domain.Ticket, error) {
	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	var tickets []domain.Ticket
	for _, t := range p.Tickets {
		if t.Status == domain.StatusBacklog {
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}

// BacklogEffort sums the effort of all backlog tickets.
func (s *Store) BacklogEffort(projectID string) (int, error) {
	tickets, err := s.BacklogTickets(projectID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, t := range tickets {
		total += t.Effort
	}
	return total, nil
}
