package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jvasco/tix/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSaver records every save and can be told to fail.
type fakeSaver struct {
	mu    sync.Mutex
	saved []domain.Ticket
	err   error
}

func (f *fakeSaver) UpdateTicket(ctx context.Context, t domain.Ticket) (domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Ticket{}, f.err
	}
	f.saved = append(f.saved, t)
	return t, nil
}

func (f *fakeSaver) calls() []domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Ticket(nil), f.saved...)
}

// resultCollector funnels scheduler results into a channel for the tests.
type resultCollector struct {
	ch chan Result
}

func newResultCollector() *resultCollector {
	return &resultCollector{ch: make(chan Result, 16)}
}

func (c *resultCollector) wait(t *testing.T) Result {
	t.Helper()
	select {
	case res := <-c.ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save result")
		return Result{}
	}
}

func (c *resultCollector) expectNone(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case res := <-c.ch:
		t.Fatalf("unexpected save result: %+v", res)
	case <-time.After(d):
	}
}

func TestScheduleSave_DebounceCoalescing(t *testing.T) {
	saver := &fakeSaver{}
	collector := newResultCollector()
	sched := NewScheduler(saver, WithDelay(30*time.Millisecond), WithResultFunc(func(r Result) { collector.ch <- r }))

	// Three edits within the debounce window. The snapshot is read at
	// fire time, so the single resulting save carries the third value.
	var mu sync.Mutex
	current := domain.Ticket{ID: "t-1", Title: "first"}
	snapshot := func() domain.Ticket {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	ctx := context.Background()
	for _, title := range []string{"first", "second", "third"} {
		mu.Lock()
		current.Title = title
		mu.Unlock()
		require.NoError(t, sched.ScheduleSave(ctx, "t-1", snapshot))
	}

	res := collector.wait(t)
	require.NoError(t, res.Err)
	assert.Equal(t, "third", res.Ticket.Title)

	calls := saver.calls()
	require.Len(t, calls, 1, "three edits in the window must coalesce into one save")
	assert.Equal(t, "third", calls[0].Title)

	collector.expectNone(t, 80*time.Millisecond)
	assert.Equal(t, StateIdle, sched.SessionState("t-1"))
}

func TestScheduleSave_RejectsDraft(t *testing.T) {
	sched := NewScheduler(&fakeSaver{})
	err := sched.ScheduleSave(context.Background(), "", func() domain.Ticket { return domain.Ticket{} })
	assert.ErrorIs(t, err, ErrDraftTicket)
}

func TestImmediateSave(t *testing.T) {
	saver := &fakeSaver{}
	collector := newResultCollector()
	sched := NewScheduler(saver, WithDelay(time.Hour), WithResultFunc(func(r Result) { collector.ch <- r }))

	ctx := context.Background()

	t.Run("cancels pending timer", func(t *testing.T) {
		stale := domain.Ticket{ID: "t-1", Title: "stale"}
		require.NoError(t, sched.ScheduleSave(ctx, "t-1", func() domain.Ticket { return stale }))
		assert.Equal(t, StatePending, sched.SessionState("t-1"))

		fresh := domain.Ticket{ID: "t-1", Title: "fresh"}
		require.NoError(t, sched.ImmediateSave(ctx, fresh))

		calls := saver.calls()
		require.Len(t, calls, 1, "the pending debounced save must be cancelled")
		assert.Equal(t, "fresh", calls[0].Title)
		assert.Equal(t, StateIdle, sched.SessionState("t-1"))

		res := collector.wait(t)
		assert.Equal(t, "fresh", res.Ticket.Title)
	})

	t.Run("rejects drafts", func(t *testing.T) {
		err := sched.ImmediateSave(ctx, domain.Ticket{Title: "draft"})
		assert.ErrorIs(t, err, ErrDraftTicket)
		assert.Len(t, saver.calls(), 1)
	})
}

func TestImmediateSave_FailureSurfacesError(t *testing.T) {
	boom := errors.New("server unavailable")
	saver := &fakeSaver{err: boom}
	collector := newResultCollector()
	sched := NewScheduler(saver, WithResultFunc(func(r Result) { collector.ch <- r }))

	err := sched.ImmediateSave(context.Background(), domain.Ticket{ID: "t-1", Title: "kept locally"})
	assert.ErrorIs(t, err, boom)

	res := collector.wait(t)
	assert.ErrorIs(t, res.Err, boom)
	assert.Equal(t, "t-1", res.TicketID)

	// The scheduler is usable again after a failure; edits are retryable.
	assert.Equal(t, StateIdle, sched.SessionState("t-1"))
}

func TestFlush(t *testing.T) {
	saver := &fakeSaver{}
	collector := newResultCollector()
	sched := NewScheduler(saver, WithDelay(time.Hour), WithResultFunc(func(r Result) { collector.ch <- r }))

	ctx := context.Background()

	t.Run("fires pending save now", func(t *testing.T) {
		ticket := domain.Ticket{ID: "t-1", Title: "unsaved edit"}
		require.NoError(t, sched.ScheduleSave(ctx, "t-1", func() domain.Ticket { return ticket }))

		require.NoError(t, sched.Flush(ctx, "t-1"))

		calls := saver.calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "unsaved edit", calls[0].Title)
		collector.wait(t)

		// No orphaned timer fires later.
		collector.expectNone(t, 50*time.Millisecond)
	})

	t.Run("idle session is a no-op", func(t *testing.T) {
		require.NoError(t, sched.Flush(ctx, "t-1"))
		require.NoError(t, sched.Flush(ctx, "t-unknown"))
		assert.Len(t, saver.calls(), 1)
	})
}

func TestCancel(t *testing.T) {
	saver := &fakeSaver{}
	collector := newResultCollector()
	sched := NewScheduler(saver, WithDelay(20*time.Millisecond), WithResultFunc(func(r Result) { collector.ch <- r }))

	ticket := domain.Ticket{ID: "t-1", Title: "discarded"}
	require.NoError(t, sched.ScheduleSave(context.Background(), "t-1", func() domain.Ticket { return ticket }))
	sched.Cancel("t-1")

	collector.expectNone(t, 80*time.Millisecond)
	assert.Empty(t, saver.calls())
	assert.Equal(t, StateIdle, sched.SessionState("t-1"))
}

func TestIndependentTicketSessions(t *testing.T) {
	saver := &fakeSaver{}
	collector := newResultCollector()
	sched := NewScheduler(saver, WithDelay(20*time.Millisecond), WithResultFunc(func(r Result) { collector.ch <- r }))

	ctx := context.Background()
	a := domain.Ticket{ID: "t-a", Title: "A"}
	b := domain.Ticket{ID: "t-b", Title: "B"}
	require.NoError(t, sched.ScheduleSave(ctx, "t-a", func() domain.Ticket { return a }))
	require.NoError(t, sched.ScheduleSave(ctx, "t-b", func() domain.Ticket { return b }))

	// Cancelling one session must not disturb the other.
	sched.Cancel("t-a")

	res := collector.wait(t)
	assert.Equal(t, "t-b", res.TicketID)
	collector.expectNone(t, 60*time.Millisecond)

	calls := saver.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "B", calls[0].Title)
}

func TestReschedule_LastEditWins(t *testing.T) {
	saver := &fakeSaver{}
	collector := newResultCollector()
	sched := NewScheduler(saver, WithDelay(30*time.Millisecond), WithResultFunc(func(r Result) { collector.ch <- r }))

	ctx := context.Background()
	first := domain.Ticket{ID: "t-1", Title: "first"}
	require.NoError(t, sched.ScheduleSave(ctx, "t-1", func() domain.Ticket { return first }))

	// Wait out the first save entirely, then schedule another.
	collector.wait(t)

	second := domain.Ticket{ID: "t-1", Title: "second"}
	require.NoError(t, sched.ScheduleSave(ctx, "t-1", func() domain.Ticket { return second }))
	collector.wait(t)

	calls := saver.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "first", calls[0].Title)
	assert.Equal(t, "second", calls[1].Title)
}
