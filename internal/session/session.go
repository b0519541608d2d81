// Package session owns the lifecycle of the ticket currently open in the
// editor. It bridges three sources of truth - an externally supplied draft,
// the store's canonical copy, and in-flight local edits - and routes each
// field change to the auto-persist scheduler.
//
// The core correctness rule is "same-id keep, different-id reset": when the
// editor reopens for the same ticket identity, the local edit buffer is
// preserved; when it opens for a different identity, the buffer is fully
// reset to the incoming value. An in-progress edit is never silently
// clobbered by a server refresh of the same record.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/jvasco/tix/internal/domain"
	"github.com/jvasco/tix/internal/store"
)

var (
	// ErrNoSession indicates an operation on a closed editor session.
	ErrNoSession = errors.New("no open edit session")
	// ErrNotDraft indicates Create was called for an already-persisted ticket.
	ErrNotDraft = errors.New("ticket is already persisted")
	// ErrCreateInFlight indicates a create call is already running for this draft.
	ErrCreateInFlight = errors.New("create already in flight")
	// ErrInvalidStatus indicates a status value outside the five valid states.
	ErrInvalidStatus = errors.New("invalid ticket status")
)

// Creator sends a draft to the create endpoint and returns the canonical
// record with the server-assigned ID.
type Creator interface {
	CreateTicket(ctx context.Context, projectID string, t domain.Ticket) (domain.Ticket, error)
}

// Scheduler is the auto-persist surface the session routes edits to.
type Scheduler interface {
	ScheduleSave(ctx context.Context, ticketID string, snapshot func() domain.Ticket) error
	ImmediateSave(ctx context.Context, t domain.Ticket) error
	Cancel(ticketID string)
}

// Session is the single open edit session. Free-text edits are debounced;
// discrete field commits (status, impact, dates, flags) save immediately.
// Draft tickets bypass the scheduler entirely: they persist only through
// an explicit Create.
type Session struct {
	mu sync.Mutex

	store   *store.Store
	sched   Scheduler
	creator Creator

	open      bool
	projectID string
	id        string // identity of the open ticket; empty for drafts
	buf       domain.Ticket
	dirty     bool
	creating  bool

	// Edit generations decide whether a server response may clean the
	// buffer: a response only wins when no edit happened after its save
	// was dispatched.
	gen           uint64
	dispatchedGen uint64
}

// New creates a session bound to the store, scheduler and create endpoint.
func New(st *store.Store, sched Scheduler, creator Creator) *Session {
	return &Session{store: st, sched: sched, creator: creator}
}

// Open starts (or re-enters) an edit session for the given ticket. Opening
// a different identity than the one previously open flushes the previous
// session's pending work and resets the buffer; re-opening the same
// identity keeps the local buffer, including unsaved edits.
func (s *Session) Open(ctx context.Context, projectID string, t domain.Ticket) {
	s.mu.Lock()

	if s.open && s.id == t.ID && s.projectID == projectID {
		s.mu.Unlock()
		return
	}

	// Tear down the previous session before switching identity.
	var flush domain.Ticket
	needsFlush := false
	if s.open && !s.buf.IsDraft() {
		if s.dirty {
			flush = s.buf
			needsFlush = true
		}
		s.sched.Cancel(s.id)
	}

	s.open = true
	s.projectID = projectID
	s.id = t.ID
	s.buf = t
	s.dirty = false
	s.creating = false
	s.gen = 0
	s.dispatchedGen = 0
	s.mu.Unlock()

	if needsFlush {
		// Unsaved edits of the previous ticket are persisted, not lost.
		_ = s.sched.ImmediateSave(ctx, flush)
	}
}

// Close ends the session. A dirty persisted ticket is force-saved before
// the buffer is discarded; drafts are discarded without side effects. The
// session closes even when the final save fails - the optimistic copy in
// the store keeps the user's input.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return nil
	}

	var flush domain.Ticket
	needsFlush := s.dirty && !s.buf.IsDraft()
	if needsFlush {
		flush = s.buf
	}
	if !s.buf.IsDraft() {
		s.sched.Cancel(s.id)
	}

	s.open = false
	s.projectID = ""
	s.id = ""
	s.buf = domain.Ticket{}
	s.dirty = false
	s.creating = false
	s.mu.Unlock()

	if needsFlush {
		return s.sched.ImmediateSave(ctx, flush)
	}
	return nil
}

// Ticket returns the current edit buffer.
func (s *Session) Ticket() (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf, s.open
}

// ProjectID returns the project the open ticket belongs to.
func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectID
}

// IsOpen reports whether a session is active.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// IsDraft reports whether the open ticket has no server identity yet.
func (s *Session) IsDraft() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open && s.buf.IsDraft()
}

// IsDirty reports whether the buffer holds edits not yet confirmed saved.
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// SetTitle records a free-text edit, debounced.
func (s *Session) SetTitle(ctx context.Context, v string) {
	s.edit(ctx, false, func(t *domain.Ticket) { t.Title = v })
}

// SetDescription records a free-text edit, debounced.
func (s *Session) SetDescription(ctx context.Context, v string) {
	s.edit(ctx, false, func(t *domain.Ticket) { t.Description = v })
}

// SetStatus commits a status change immediately. Values outside the five
// valid states are rejected without mutating the buffer.
func (s *Session) SetStatus(ctx context.Context, v domain.TicketStatus) error {
	if !v.Valid() {
		return ErrInvalidStatus
	}
	return s.edit(ctx, true, func(t *domain.Ticket) { t.Status = v })
}

// SetImpact commits an impact change immediately.
func (s *Session) SetImpact(ctx context.Context, v domain.Impact) error {
	return s.edit(ctx, true, func(t *domain.Ticket) { t.Impact = v })
}

// SetEffort coerces raw numeric input (invalid or negative becomes zero)
// and commits immediately.
func (s *Session) SetEffort(ctx context.Context, raw string) error {
	return s.edit(ctx, true, func(t *domain.Ticket) { t.Effort = domain.CoerceEffort(raw) })
}

// SetEpicID commits an epic assignment immediately. Empty clears it.
func (s *Session) SetEpicID(ctx context.Context, v string) error {
	return s.edit(ctx, true, func(t *domain.Ticket) { t.EpicID = v })
}

// SetAssignee commits an assignee change immediately.
func (s *Session) SetAssignee(ctx context.Context, v string) error {
	return s.edit(ctx, true, func(t *domain.Ticket) { t.Assignee = v })
}

// SetStartDate commits a start-date change immediately.
func (s *Session) SetStartDate(ctx context.Context, v string) error {
	return s.edit(ctx, true, func(t *domain.Ticket) { t.StartDate = v })
}

// SetEndDate commits an end-date change immediately.
func (s *Session) SetEndDate(ctx context.Context, v string) error {
	return s.edit(ctx, true, func(t *domain.Ticket) { t.EndDate = v })
}

// ToggleFlagged flips the flagged marker, committed immediately.
func (s *Session) ToggleFlagged(ctx context.Context) error {
	return s.edit(ctx, true, func(t *domain.Ticket) { t.Flagged = !t.Flagged })
}

// ToggleRequiresHuman flips the requires-human marker, committed immediately.
func (s *Session) ToggleRequiresHuman(ctx context.Context) error {
	return s.edit(ctx, true, func(t *domain.Ticket) { t.RequiresHuman = !t.RequiresHuman })
}

// Create sends the open draft to the create endpoint exactly once. On
// success the session adopts the server-assigned identity and the ticket
// enters the store.
func (s *Session) Create(ctx context.Context) (domain.Ticket, error) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return domain.Ticket{}, ErrNoSession
	}
	if !s.buf.IsDraft() {
		s.mu.Unlock()
		return domain.Ticket{}, ErrNotDraft
	}
	if s.creating {
		s.mu.Unlock()
		return domain.Ticket{}, ErrCreateInFlight
	}
	s.creating = true
	draft := s.buf
	projectID := s.projectID
	s.mu.Unlock()

	created, err := s.creator.CreateTicket(ctx, projectID, draft)

	s.mu.Lock()
	s.creating = false
	if err != nil {
		// The draft stays editable; the user may retry.
		s.mu.Unlock()
		return domain.Ticket{}, err
	}
	if s.open && s.buf.IsDraft() {
		s.id = created.ID
		s.buf = created
		s.dirty = false
		s.gen = 0
		s.dispatchedGen = 0
	}
	s.mu.Unlock()

	_ = s.store.UpsertTicketLocally(projectID, created)
	return created, nil
}

// ApplyServerTicket reconciles a canonical server copy (a completed save)
// with the session. The store always adopts the canonical record; the edit
// buffer adopts it only when no newer local edit was made after the save
// was dispatched - the latest local edit always wins over an older server
// response.
func (s *Session) ApplyServerTicket(projectID string, t domain.Ticket) {
	if !t.IsDraft() {
		_ = s.store.UpsertTicketLocally(projectID, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || s.id != t.ID {
		return
	}
	if s.gen == s.dispatchedGen {
		s.buf = t
		s.dirty = false
	}
}

// edit applies a mutation to the buffer and routes it to persistence.
// Drafts mutate locally only; persisted tickets update the store
// optimistically and dispatch a debounced or immediate save.
func (s *Session) edit(ctx context.Context, immediate bool, mutate func(*domain.Ticket)) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return ErrNoSession
	}

	next := s.buf
	mutate(&next)
	s.buf = next
	s.dirty = true
	s.gen++

	if next.IsDraft() {
		s.mu.Unlock()
		return nil
	}

	projectID := s.projectID
	if immediate {
		s.dispatchedGen = s.gen
	}
	s.mu.Unlock()

	_ = s.store.UpsertTicketLocally(projectID, next)

	if immediate {
		return s.sched.ImmediateSave(ctx, next)
	}
	return s.sched.ScheduleSave(ctx, next.ID, s.snapshot)
}

// snapshot is handed to the scheduler and evaluated at debounce fire time,
// capturing the latest buffer and marking the dispatched generation.
func (s *Session) snapshot() domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchedGen = s.gen
	return s.buf
}
