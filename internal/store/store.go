// Package store provides the in-memory authoritative collection of projects
// and the read-only projections the views consume. It follows the "deep
// modules" principle - a simple interface hiding the copy-on-write and
// grouping logic.
//
// The store is the single shared mutable resource. Writes go through the
// documented mutation entry points only: ReplaceProject is the
// server-authoritative path (whole-project replacement after a reload) and
// UpsertTicketLocally is the optimistic local-only path. Every update
// produces fresh slices so consumers relying on reference equality for
// change detection behave correctly.
package store

import (
	"errors"
	"sync"

	"github.com/jvasco/tix/internal/domain"
)

var (
	// ErrProjectNotFound indicates the requested project is not in the store.
	ErrProjectNotFound = errors.New("project not found")
	// ErrTicketNotFound indicates the requested ticket is not in the store.
	ErrTicketNotFound = errors.New("ticket not found")
)

// Store manages the in-memory state of all loaded projects plus the active
// project selection. Safe for concurrent use: the persist scheduler's timer
// goroutines reconcile saved tickets back into the store.
type Store struct {
	mu       sync.RWMutex
	projects []domain.Project
	activeID string
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// SetProjects replaces the whole project list, typically after the initial
// ListProjects call. The active project is preserved when it survives the
// reload, otherwise it falls back to the first project.
func (s *Store) SetProjects(projects []domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = append([]domain.Project(nil), projects...)
	if _, ok := s.findLocked(s.activeID); !ok {
		s.activeID = ""
		if len(s.projects) > 0 {
			s.activeID = s.projects[0].ID
		}
	}
}

// Projects returns a copy of the project list.
func (s *Store) Projects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Project(nil), s.projects...)
}

// SetActiveProject selects the project the views render.
func (s *Store) SetActiveProject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// ActiveProjectID returns the current selection, empty if none.
func (s *Store) ActiveProjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// ActiveProject returns the currently selected project.
func (s *Store) ActiveProject() (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.findLocked(s.activeID); ok {
		return p, true
	}
	return domain.Project{}, false
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(id string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.findLocked(id); ok {
		return p, nil
	}
	return domain.Project{}, ErrProjectNotFound
}

// AddProject appends a newly created project.
func (s *Store) AddProject(p domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Project, 0, len(s.projects)+1)
	next = append(next, s.projects...)
	next = append(next, p)
	s.projects = next
	if s.activeID == "" {
		s.activeID = p.ID
	}
}

// RemoveProject deletes a project locally. When the removed project was
// active, selection falls back to the first remaining project.
func (s *Store) RemoveProject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if p.ID != id {
			next = append(next, p)
		}
	}
	s.projects = next

	if s.activeID == id {
		s.activeID = ""
		if len(s.projects) > 0 {
			s.activeID = s.projects[0].ID
		}
	}
}

// ReplaceProject is the server-authoritative write path: the whole project
// is swapped for the canonical copy returned by a reload.
func (s *Store) ReplaceProject(id string, updated domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.projects {
		if p.ID != id {
			continue
		}
		next := append([]domain.Project(nil), s.projects...)
		next[i] = updated
		s.projects = next
		return nil
	}
	return ErrProjectNotFound
}

// UpsertTicketLocally applies an optimistic local-only mutation: the ticket
// replaces its stored counterpart (matched by ID) or is appended when new.
// Draft tickets (empty ID) never enter the store; they live only in the
// edit session until the first successful create.
func (s *Store) UpsertTicketLocally(projectID string, t domain.Ticket) error {
	if t.IsDraft() {
		return ErrTicketNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.projects {
		if p.ID != projectID {
			continue
		}

		tickets := make([]domain.Ticket, 0, len(p.Tickets)+1)
		replaced := false
		for _, existing := range p.Tickets {
			if existing.ID == t.ID {
				tickets = append(tickets, t)
				replaced = true
			} else {
				tickets = append(tickets, existing)
			}
		}
		if !replaced {
			tickets = append(tickets, t)
		}

		next := append([]domain.Project(nil), s.projects...)
		next[i].Tickets = tickets
		s.projects = next
		return nil
	}
	return ErrProjectNotFound
}

// RemoveTicketLocally drops a ticket from the local collection, typically
// after a confirmed delete.
func (s *Store) RemoveTicketLocally(projectID, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.projects {
		if p.ID != projectID {
			continue
		}

		tickets := make([]domain.Ticket, 0, len(p.Tickets))
		for _, existing := range p.Tickets {
			if existing.ID != ticketID {
				tickets = append(tickets, existing)
			}
		}

		next := append([]domain.Project(nil), s.projects...)
		next[i].Tickets = tickets
		s.projects = next
		return nil
	}
	return ErrProjectNotFound
}

// Ticket retrieves a single ticket by ID within a project.
func (s *Store) Ticket(projectID, ticketID string) (domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.findLocked(projectID)
	if !ok {
		return domain.Ticket{}, ErrProjectNotFound
	}
	for _, t := range p.Tickets {
		if t.ID == ticketID {
			return t, nil
		}
	}
	return domain.Ticket{}, ErrTicketNotFound
}

// EpicByID resolves a soft epic reference. Missing or dangling references
// return ok=false; the caller renders "unassigned".
func (s *Store) EpicByID(projectID, epicID string) (domain.Epic, bool) {
	if epicID == "" {
		return domain.Epic{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.findLocked(projectID)
	if !ok {
		return domain.Epic{}, false
	}
	for _, e := range p.Epics {
		if e.ID == epicID {
			return e, true
		}
	}
	return domain.Epic{}, false
}

func (s *Store) findLocked(id string) (domain.Project, bool) {
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Project{}, false
}
