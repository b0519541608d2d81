// Package persist implements the auto-persist scheduler: a per-ticket
// debounce that coalesces rapid edits into a single save without losing
// the final value.
//
// Each edited ticket owns an explicit session state machine
// (Idle -> Pending -> Saving -> Idle) with cancellation as a first-class
// transition. Only the most recent armed timer survives, so a stale
// intermediate edit can never win over a save triggered afterwards.
package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jvasco/tix/internal/domain"
)

// ErrDraftTicket is returned when a draft (empty ID) reaches the
// scheduler. Drafts persist only through an explicit create; this error
// is a backstop for an invariant the session layer enforces by
// construction.
var ErrDraftTicket = errors.New("draft ticket cannot be scheduled for persistence")

// DefaultDelay is the quiet period after the last edit before a
// scheduled save fires.
const DefaultDelay = 500 * time.Millisecond

// State is the save-session lifecycle state for one ticket.
type State int

const (
	// StateIdle means no save is pending or in flight.
	StateIdle State = iota
	// StatePending means a debounce timer is armed.
	StatePending
	// StateSaving means a save is in flight.
	StateSaving
)

// Saver persists a ticket and returns the canonical server copy.
type Saver interface {
	UpdateTicket(ctx context.Context, t domain.Ticket) (domain.Ticket, error)
}

// Result is the outcome of one persist attempt, delivered to the
// scheduler's result callback. On failure the optimistic local state is
// NOT reverted; the error is surfaced and the user keeps their input.
type Result struct {
	TicketID string
	Ticket   domain.Ticket
	Err      error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDelay overrides the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) { s.delay = d }
}

// WithResultFunc registers a callback invoked after every completed save
// attempt, scheduled or immediate. The callback runs on the timer
// goroutine for scheduled saves and on the caller's goroutine for
// immediate saves.
func WithResultFunc(fn func(Result)) Option {
	return func(s *Scheduler) { s.onResult = fn }
}

// session tracks the debounce state for a single ticket. Timers for
// different tickets are fully independent; there is no shared lock
// beyond the scheduler map.
type session struct {
	state    State
	timer    *time.Timer
	snapshot func() domain.Ticket // captured at fire time, not schedule time
	gen      uint64               // invalidates a cancelled timer that already fired
}

// Scheduler dispatches debounced and immediate saves per ticket session.
type Scheduler struct {
	mu       sync.Mutex
	saver    Saver
	delay    time.Duration
	onResult func(Result)
	sessions map[string]*session
}

// NewScheduler creates a scheduler persisting through the given saver.
func NewScheduler(saver Saver, opts ...Option) *Scheduler {
	s := &Scheduler{
		saver:    saver,
		delay:    DefaultDelay,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleSave arms (or re-arms) the debounce timer for a ticket. The
// snapshot function is evaluated when the timer fires, so consecutive
// edits within the delay window coalesce into one save carrying the
// last-known values. Drafts are rejected.
func (s *Scheduler) ScheduleSave(ctx context.Context, ticketID string, snapshot func() domain.Ticket) error {
	if ticketID == "" {
		return ErrDraftTicket
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[ticketID]
	if sess == nil {
		sess = &session{}
		s.sessions[ticketID] = sess
	}

	// Cancellation is a first-class transition: only the newest timer
	// survives.
	if sess.timer != nil {
		sess.timer.Stop()
	}
	sess.gen++
	sess.state = StatePending
	sess.snapshot = snapshot

	gen := sess.gen
	sess.timer = time.AfterFunc(s.delay, func() {
		s.fire(ctx, ticketID, gen)
	})
	return nil
}

// ImmediateSave cancels any pending timer for the ticket and persists the
// given snapshot right away, returning the save error to the caller. Used
// for discrete field commits and session teardown.
func (s *Scheduler) ImmediateSave(ctx context.Context, t domain.Ticket) error {
	if t.IsDraft() {
		return ErrDraftTicket
	}

	s.mu.Lock()
	sess := s.sessions[t.ID]
	if sess == nil {
		sess = &session{}
		s.sessions[t.ID] = sess
	}
	if sess.timer != nil {
		sess.timer.Stop()
		sess.timer = nil
	}
	sess.gen++
	sess.state = StateSaving
	s.mu.Unlock()

	saved, err := s.saver.UpdateTicket(ctx, t)

	s.mu.Lock()
	sess.state = StateIdle
	s.mu.Unlock()

	s.report(Result{TicketID: t.ID, Ticket: saved, Err: err})
	return err
}

// Flush fires a pending save for the ticket immediately, if any. Returns
// the save error, or nil when the session was idle. Used when the editor
// closes or switches tickets: no orphaned timer may fire afterwards.
func (s *Scheduler) Flush(ctx context.Context, ticketID string) error {
	s.mu.Lock()
	sess := s.sessions[ticketID]
	if sess == nil || sess.state != StatePending {
		s.mu.Unlock()
		return nil
	}
	if sess.timer != nil {
		sess.timer.Stop()
		sess.timer = nil
	}
	sess.gen++
	sess.state = StateSaving
	snapshot := sess.snapshot
	s.mu.Unlock()

	ticket := snapshot()
	saved, err := s.saver.UpdateTicket(ctx, ticket)

	s.mu.Lock()
	sess.state = StateIdle
	s.mu.Unlock()

	s.report(Result{TicketID: ticketID, Ticket: saved, Err: err})
	return err
}

// Cancel discards any pending save for the ticket without persisting.
func (s *Scheduler) Cancel(ticketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[ticketID]
	if sess == nil {
		return
	}
	if sess.timer != nil {
		sess.timer.Stop()
		sess.timer = nil
	}
	sess.gen++
	sess.state = StateIdle
	sess.snapshot = nil
}

// SessionState reports the lifecycle state for a ticket session.
func (s *Scheduler) SessionState(ticketID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.sessions[ticketID]; sess != nil {
		return sess.state
	}
	return StateIdle
}

// fire runs on the timer goroutine when the debounce delay elapses.
func (s *Scheduler) fire(ctx context.Context, ticketID string, gen uint64) {
	s.mu.Lock()
	sess := s.sessions[ticketID]
	if sess == nil || sess.gen != gen || sess.state != StatePending {
		// A newer edit re-armed the timer, or the session was
		// cancelled between Stop and this callback.
		s.mu.Unlock()
		return
	}
	sess.state = StateSaving
	sess.timer = nil
	snapshot := sess.snapshot
	s.mu.Unlock()

	// Snapshot at fire time: this is what makes three rapid edits
	// produce exactly one save carrying the third value.
	ticket := snapshot()
	saved, err := s.saver.UpdateTicket(ctx, ticket)

	s.mu.Lock()
	sess.state = StateIdle
	s.mu.Unlock()

	s.report(Result{TicketID: ticketID, Ticket: saved, Err: err})
}

func (s *Scheduler) report(res Result) {
	if s.onResult != nil {
		s.onResult(res)
	}
}
