// Package workflow coordinates ticket status transitions: board drops,
// promotion from the backlog, and demotion back into it. Every transition
// follows the same shape - optimistic local update, remote persist, then a
// full project reload so positions and any server-side normalization land
// in the store. Failed persists keep the optimistic state and surface the
// error; the next successful reload reconverges with the server.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jvasco/tix/internal/domain"
	"github.com/jvasco/tix/internal/store"
)

var (
	// ErrInvalidTarget indicates a transition to a status outside the five
	// valid states.
	ErrInvalidTarget = errors.New("invalid target status")
	// ErrBacklogDrop indicates a board drop aimed at the backlog. The
	// backlog is entered only through an explicit demotion.
	ErrBacklogDrop = errors.New("board drops cannot target the backlog")
)

// API is the remote surface transitions persist through.
type API interface {
	UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus) (domain.Ticket, error)
	GetProjectDetails(ctx context.Context, id string) (domain.Project, error)
}

// Transition describes a completed status change, delivered to observers.
type Transition struct {
	ProjectID string
	TicketID  string
	From      domain.TicketStatus
	To        domain.TicketStatus
}

// Manager applies status transitions against the store and the remote API.
type Manager struct {
	mu        sync.Mutex
	store     *store.Store
	api       API
	observers []func(Transition)
}

// New creates a transition manager over the given store and API.
func New(st *store.Store, api API) *Manager {
	return &Manager{store: st, api: api}
}

// Subscribe registers an observer called after each completed transition.
func (m *Manager) Subscribe(fn func(Transition)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// ApplyDrop moves a ticket to the column it was dropped on. Dropping a
// ticket on its own column is a no-op: nothing is persisted and nothing
// mutates. Drops never target the backlog.
func (m *Manager) ApplyDrop(ctx context.Context, projectID, ticketID string, target domain.TicketStatus) error {
	if !target.Valid() {
		return fmt.Errorf("drop %q: %w", target, ErrInvalidTarget)
	}
	if target == domain.StatusBacklog {
		return ErrBacklogDrop
	}

	current, err := m.store.Ticket(projectID, ticketID)
	if err != nil {
		return err
	}
	if current.Status == target {
		return nil
	}
	return m.transition(ctx, projectID, current, target, true)
}

// MoveToBoard promotes a backlog ticket onto the board in TODO.
func (m *Manager) MoveToBoard(ctx context.Context, projectID, ticketID string) error {
	current, err := m.store.Ticket(projectID, ticketID)
	if err != nil {
		return err
	}
	if current.Status == domain.StatusTodo {
		return nil
	}
	return m.transition(ctx, projectID, current, domain.StatusTodo, false)
}

// MoveToStasis demotes a ticket off the board into the backlog.
func (m *Manager) MoveToStasis(ctx context.Context, projectID, ticketID string) error {
	current, err := m.store.Ticket(projectID, ticketID)
	if err != nil {
		return err
	}
	if current.Status == domain.StatusBacklog {
		return nil
	}
	return m.transition(ctx, projectID, current, domain.StatusBacklog, false)
}

// transition runs the shared optimistic-update/persist/reconcile sequence.
// Board drops reload the whole project afterwards so server-assigned
// positions land; single moves adopt just the returned ticket.
func (m *Manager) transition(ctx context.Context, projectID string, t domain.Ticket, target domain.TicketStatus, reload bool) error {
	from := t.Status

	optimistic := t
	optimistic.Status = target
	if err := m.store.UpsertTicketLocally(projectID, optimistic); err != nil {
		return err
	}

	updated, err := m.api.UpdateTicketStatus(ctx, t.ID, target)
	if err != nil {
		// Optimistic state stays; the caller surfaces the error and a
		// later reload reconverges.
		return fmt.Errorf("move %s to %s: %w", t.ID, target, err)
	}

	if reload {
		project, err := m.api.GetProjectDetails(ctx, projectID)
		if err != nil {
			return fmt.Errorf("reload project %s: %w", projectID, err)
		}
		if err := m.store.ReplaceProject(projectID, project); err != nil {
			return err
		}
	} else if err := m.store.UpsertTicketLocally(projectID, updated); err != nil {
		return err
	}

	m.notify(Transition{ProjectID: projectID, TicketID: t.ID, From: from, To: target})
	return nil
}

func (m *Manager) notify(tr Transition) {
	m.mu.Lock()
	observers := m.observers
	m.mu.Unlock()
	for _, fn := range observers {
		fn(tr)
	}
}
