package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvasco/tix/internal/domain"
	"github.com/jvasco/tix/internal/store"
	"github.com/jvasco/tix/internal/workflow"
)

// mockClient implements the remote surface for testing, recording every
// mutation it receives.
type mockClient struct {
	details domain.Project
	deleted []string
	calls   []string
}

func (m *mockClient) ListProjects(_ context.Context) ([]domain.Project, error) {
	return []domain.Project{m.details}, nil
}

func (m *mockClient) GetProjectDetails(_ context.Context, _ string) (domain.Project, error) {
	return m.details, nil
}

func (m *mockClient) CreateProject(_ context.Context, name string) (domain.Project, error) {
	m.calls = append(m.calls, "create-project:"+name)
	return domain.Project{ID: "proj-new", Name: name}, nil
}

func (m *mockClient) UpdateProject(_ context.Context, id, name, description, goal string) (domain.Project, error) {
	m.calls = append(m.calls, "update-project:"+id+":"+goal)
	return domain.Project{ID: id, Name: name, Description: description, Goal: goal}, nil
}

func (m *mockClient) DeleteProject(_ context.Context, id, secret string) error {
	m.calls = append(m.calls, "delete-project:"+id+":"+secret)
	return nil
}

func (m *mockClient) CreateEpic(_ context.Context, projectID, name, color string) (domain.Epic, error) {
	m.calls = append(m.calls, "create-epic:"+projectID+":"+name+":"+color)
	return domain.Epic{ID: "epic-new", Name: name, Color: color}, nil
}

func (m *mockClient) UpdateEpic(_ context.Context, id, name, color string) (domain.Epic, error) {
	m.calls = append(m.calls, "update-epic:"+id+":"+name+":"+color)
	return domain.Epic{ID: id, Name: name, Color: color}, nil
}

func (m *mockClient) DeleteEpic(_ context.Context, id string) error {
	m.calls = append(m.calls, "delete-epic:"+id)
	return nil
}

func (m *mockClient) CreateColumn(_ context.Context, projectID, title string, statusKey domain.TicketStatus) (domain.Column, error) {
	m.calls = append(m.calls, "create-column:"+projectID+":"+title+":"+string(statusKey))
	return domain.Column{ID: "col-new", Title: title, StatusKey: statusKey}, nil
}

func (m *mockClient) UpdateColumn(_ context.Context, id, title string) (domain.Column, error) {
	m.calls = append(m.calls, "update-column:"+id+":"+title)
	return domain.Column{ID: id, Title: title}, nil
}

func (m *mockClient) DeleteColumn(_ context.Context, id string) error {
	m.calls = append(m.calls, "delete-column:"+id)
	return nil
}

func (m *mockClient) DeleteTicket(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

// mockTransitionAPI satisfies workflow.API for workspace tests.
type mockTransitionAPI struct {
	mockClient
	statusCalls []string
}

func (m *mockTransitionAPI) UpdateTicketStatus(_ context.Context, id string, status domain.TicketStatus) (domain.Ticket, error) {
	m.statusCalls = append(m.statusCalls, id+":"+string(status))
	return domain.Ticket{ID: id, Status: status}, nil
}

type mockConsultant struct {
	reply string
}

func (m *mockConsultant) ConsultTicket(_ context.Context, _ domain.Ticket, _ string) (string, error) {
	return m.reply, nil
}

func (m *mockConsultant) ConsultProject(_ context.Context, _ domain.Project) (string, error) {
	return m.reply, nil
}

// createTestStore creates a store with a board, backlog and dated tickets.
func createTestStore() *store.Store {
	s := store.New()
	s.SetProjects([]domain.Project{{
		ID:   "proj-1",
		Name: "Hive Sector",
		Epics: []domain.Epic{
			{ID: "epic-1", Name: "Hull", Color: "#f97316"},
		},
		Columns: []domain.Column{
			{ID: "col-todo", Title: "Todo", StatusKey: domain.StatusTodo, Position: 0},
			{ID: "col-prog", Title: "In Progress", StatusKey: domain.StatusInProgress, Position: 1},
			{ID: "col-done", Title: "Done", StatusKey: domain.StatusDone, Position: 2},
		},
		Tickets: []domain.Ticket{
			{ID: "t1", Title: "Task 1", Status: domain.StatusTodo, Impact: domain.ImpactHigh, Position: 0},
			{ID: "t2", Title: "Task 2", Status: domain.StatusTodo, Impact: domain.ImpactLow, Position: 1},
			{ID: "t3", Title: "Task 3", Status: domain.StatusInProgress, Impact: domain.ImpactMedium, Position: 0},
			{ID: "t4", Title: "Low stasis", Status: domain.StatusBacklog, Impact: domain.ImpactLow, Effort: 2},
			{ID: "t5", Title: "Critical stasis", Status: domain.StatusBacklog, Impact: domain.ImpactCritical, Effort: 4, EpicID: "epic-1"},
			{ID: "t6", Title: "Dated", Status: domain.StatusTodo, Impact: domain.ImpactHigh, StartDate: "2024-05-10", EndDate: "2024-05-12"},
		},
	}})
	s.SetActiveProject("proj-1")
	return s
}

func createWorkspace(s *store.Store, api *mockTransitionAPI) WorkspaceModel {
	if api.details.ID == "" {
		api.details, _ = s.GetProject("proj-1")
	}
	flow := workflow.New(s, api)
	ws := NewWorkspaceModel(s, &api.mockClient, flow, &mockConsultant{reply: "ok"}, context.Background())
	(&ws).rebuildProjections()
	ws.width = 150
	ws.height = 40
	return ws
}

func TestWorkspace_RebuildProjections(t *testing.T) {
	ws := createWorkspace(createTestStore(), &mockTransitionAPI{})

	require.Len(t, ws.boardCols, 3)
	assert.Equal(t, "Todo", ws.boardCols[0].Column.Title)
	assert.Len(t, ws.boardCols[0].Tickets, 3) // t1, t2, t6
	assert.Len(t, ws.boardCols[1].Tickets, 1)
	assert.Empty(t, ws.boardCols[2].Tickets)

	// Backlog is ranked: critical before low.
	require.Len(t, ws.backlogRows, 2)
	assert.Equal(t, "t5", ws.backlogRows[0].ID)
	assert.Equal(t, "t4", ws.backlogRows[1].ID)

	// Only the dated ticket appears on the timeline.
	require.Len(t, ws.layout.Bars, 1)
	assert.Equal(t, "t6", ws.layout.Bars[0].TicketID)
}

func TestWorkspace_ColumnNavigation(t *testing.T) {
	ws := createWorkspace(createTestStore(), &mockTransitionAPI{})

	assert.Equal(t, 0, ws.selectedColumn)

	model, _ := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	ws = model.(WorkspaceModel)
	assert.Equal(t, 1, ws.selectedColumn)

	model, _ = ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	ws = model.(WorkspaceModel)
	assert.Equal(t, 0, ws.selectedColumn)
}

func TestWorkspace_TicketNavigation(t *testing.T) {
	ws := createWorkspace(createTestStore(), &mockTransitionAPI{})

	model, _ := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	ws = model.(WorkspaceModel)
	assert.Equal(t, 1, ws.selectedCard["col-todo"])

	// Up past the top stays at 0.
	model, _ = ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	ws = model.(WorkspaceModel)
	model, _ = ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	ws = model.(WorkspaceModel)
	assert.Equal(t, 0, ws.selectedCard["col-todo"])
}

func TestWorkspace_ViewModeCycle(t *testing.T) {
	ws := createWorkspace(createTestStore(), &mockTransitionAPI{})

	assert.Equal(t, ViewBoard, ws.mode)
	model, _ := ws.Update(tea.KeyMsg{Type: tea.KeyTab})
	ws = model.(WorkspaceModel)
	assert.Equal(t, ViewBacklog, ws.mode)
	model, _ = ws.Update(tea.KeyMsg{Type: tea.KeyTab})
	ws = model.(WorkspaceModel)
	assert.Equal(t, ViewTimeline, ws.mode)
	model, _ = ws.Update(tea.KeyMsg{Type: tea.KeyTab})
	ws = model.(WorkspaceModel)
	assert.Equal(t, ViewBoard, ws.mode)
}

func TestWorkspace_MoveModeDrop(t *testing.T) {
	api := &mockTransitionAPI{}
	s := createTestStore()
	api.details, _ = s.GetProject("proj-1")
	ws := createWorkspace(s, api)

	// Enter move mode on t1 and drop it on column 2 (In Progress).
	model, _ := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	ws = model.(WorkspaceModel)
	require.True(t, ws.moveMode)

	model, cmd := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	ws = model.(WorkspaceModel)
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(moveDoneMsg)
	require.True(t, ok)
	assert.NoError(t, done.err)
	assert.Equal(t, []string{"t1:IN_PROGRESS"}, api.statusCalls)
}

func TestWorkspace_MoveModeEscape(t *testing.T) {
	ws := createWorkspace(createTestStore(), &mockTransitionAPI{})

	model, _ := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	ws = model.(WorkspaceModel)
	model, _ = ws.Update(tea.KeyMsg{Type: tea.KeyEsc})
	ws = model.(WorkspaceModel)
	assert.False(t, ws.moveMode)
}

func TestWorkspace_PromoteFromBacklog(t *testing.T) {
	api := &mockTransitionAPI{}
	ws := createWorkspace(createTestStore(), api)
	ws.mode = ViewBacklog
	(&ws).rebuildProjections()

	model, cmd := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	ws = model.(WorkspaceModel)
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(moveDoneMsg)
	require.True(t, ok)
	assert.NoError(t, done.err)
	// The top-ranked backlog ticket is the one promoted.
	assert.Equal(t, []string{"t5:TODO"}, api.statusCalls)
}

func TestWorkspace_FilterNarrowsAllViews(t *testing.T) {
	ws := createWorkspace(createTestStore(), &mockTransitionAPI{})
	ws.filterText = "Task 1"
	(&ws).rebuildProjections()

	assert.Len(t, ws.boardCols[0].Tickets, 1)
	assert.Empty(t, ws.backlogRows)
	assert.Empty(t, ws.layout.Bars)
}

func TestWorkspace_SaveFailureSurfacesToast(t *testing.T) {
	ws := createWorkspace(createTestStore(), &mockTransitionAPI{})

	model, _ := ws.Update(moveDoneMsg{err: assert.AnError})
	ws = model.(WorkspaceModel)
	assert.Contains(t, ws.errorToast, "Move failed")
}

func TestWorkspace_DeleteConfirmation(t *testing.T) {
	api := &mockTransitionAPI{}
	s := createTestStore()
	ws := createWorkspace(s, api)

	model, _ := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	ws = model.(WorkspaceModel)
	require.Equal(t, confirmTicket, ws.confirmKind)

	// 'n' cancels without calling the API.
	model, _ = ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	ws = model.(WorkspaceModel)
	assert.Equal(t, confirmNone, ws.confirmKind)
	assert.Empty(t, api.deleted)

	// 'y' issues the delete.
	model, _ = ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	ws = model.(WorkspaceModel)
	model, cmd := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	ws = model.(WorkspaceModel)
	require.NotNil(t, cmd)
	msg := cmd()
	deleted, ok := msg.(ticketDeletedMsg)
	require.True(t, ok)
	assert.NoError(t, deleted.err)
	assert.Equal(t, []string{"t1"}, api.deleted)
}

// typePrompt opens a prompt via key, replaces the typed value and submits.
func typePrompt(t *testing.T, ws WorkspaceModel, key rune, value string) (WorkspaceModel, tea.Cmd) {
	t.Helper()
	model, _ := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{key}})
	ws = model.(WorkspaceModel)
	require.NotEqual(t, promptNone, ws.promptAction)
	ws.promptInput.SetValue(value)
	model, cmd := ws.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return model.(WorkspaceModel), cmd
}

func TestWorkspace_NewEpicUsesPalette(t *testing.T) {
	api := &mockTransitionAPI{}
	ws := createWorkspace(createTestStore(), api)

	ws, cmd := typePrompt(t, ws, 'E', "Propulsion")
	require.NotNil(t, cmd)
	msg := cmd()
	changed, ok := msg.(structureChangedMsg)
	require.True(t, ok)
	assert.NoError(t, changed.err)

	// The fixture project already has one epic, so the new one takes the
	// second palette color.
	want := "create-epic:proj-1:Propulsion:" + domain.NextEpicColor(1)
	assert.Equal(t, []string{want}, api.calls)
}

func TestWorkspace_NewColumnPrompt(t *testing.T) {
	api := &mockTransitionAPI{}
	ws := createWorkspace(createTestStore(), api)

	ws, cmd := typePrompt(t, ws, 'C', "Review:REVIEW")
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"create-column:proj-1:Review:REVIEW"}, api.calls)

	// A value without a valid status key never reaches the client.
	ws, cmd = typePrompt(t, ws, 'C', "nonsense")
	assert.Nil(t, cmd)
	assert.NotEmpty(t, ws.errorToast)
	assert.Len(t, api.calls, 1)
}

func TestWorkspace_RenameColumn(t *testing.T) {
	api := &mockTransitionAPI{}
	ws := createWorkspace(createTestStore(), api)

	model, _ := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'R'}})
	ws = model.(WorkspaceModel)
	require.Equal(t, promptRenameColumn, ws.promptAction)
	assert.Equal(t, "Todo", ws.promptInput.Value())

	ws.promptInput.SetValue("Queue")
	model, cmd := ws.Update(tea.KeyMsg{Type: tea.KeyEnter})
	ws = model.(WorkspaceModel)
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"update-column:col-todo:Queue"}, api.calls)
}

func TestWorkspace_DeleteColumnConfirm(t *testing.T) {
	api := &mockTransitionAPI{}
	ws := createWorkspace(createTestStore(), api)

	model, _ := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'X'}})
	ws = model.(WorkspaceModel)
	require.Equal(t, confirmColumn, ws.confirmKind)
	assert.Equal(t, "Todo", ws.confirmLabel)

	model, cmd := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	ws = model.(WorkspaceModel)
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"delete-column:col-todo"}, api.calls)
	assert.Equal(t, confirmNone, ws.confirmKind)
}

func TestWorkspace_RenameAndDeleteEpicFromBacklog(t *testing.T) {
	api := &mockTransitionAPI{}
	ws := createWorkspace(createTestStore(), api)
	ws.mode = ViewBacklog
	(&ws).rebuildProjections()

	// The top-ranked backlog ticket (t5) belongs to epic-1.
	model, _ := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'R'}})
	ws = model.(WorkspaceModel)
	require.Equal(t, promptRenameEpic, ws.promptAction)
	assert.Equal(t, "Hull", ws.promptInput.Value())

	ws.promptInput.SetValue("Hull Integrity")
	model, cmd := ws.Update(tea.KeyMsg{Type: tea.KeyEnter})
	ws = model.(WorkspaceModel)
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"update-epic:epic-1:Hull Integrity:#f97316"}, api.calls)

	model, _ = ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'X'}})
	ws = model.(WorkspaceModel)
	require.Equal(t, confirmEpic, ws.confirmKind)
	model, cmd = ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	ws = model.(WorkspaceModel)
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "delete-epic:epic-1", api.calls[len(api.calls)-1])
}

func TestWorkspace_EditGoal(t *testing.T) {
	api := &mockTransitionAPI{}
	ws := createWorkspace(createTestStore(), api)

	ws, cmd := typePrompt(t, ws, 'G', "Assimilate the sector")
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"update-project:proj-1:Assimilate the sector"}, api.calls)
}

func TestWorkspace_PromptEscCancels(t *testing.T) {
	api := &mockTransitionAPI{}
	ws := createWorkspace(createTestStore(), api)

	model, _ := ws.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'E'}})
	ws = model.(WorkspaceModel)
	model, _ = ws.Update(tea.KeyMsg{Type: tea.KeyEsc})
	ws = model.(WorkspaceModel)
	assert.Equal(t, promptNone, ws.promptAction)
	assert.Empty(t, api.calls)
}

func TestWorkspace_View_NotPanic(t *testing.T) {
	s := createTestStore()
	ws := NewWorkspaceModel(s, &mockClient{}, workflow.New(s, &mockTransitionAPI{}), &mockConsultant{}, context.Background())

	// Before any initialization, View should not panic.
	require.NotPanics(t, func() {
		ws.View()
	})

	(&ws).rebuildProjections()
	ws.width = 120
	ws.height = 30
	for _, mode := range []ViewMode{ViewBoard, ViewBacklog, ViewTimeline} {
		ws.mode = mode
		require.NotPanics(t, func() {
			assert.NotEmpty(t, ws.View())
		})
	}
}

func TestWorkspace_BoardViewShowsColumns(t *testing.T) {
	ws := createWorkspace(createTestStore(), &mockTransitionAPI{})

	view := ws.View()
	assert.Contains(t, view, "Todo")
	assert.Contains(t, view, "In Progress")
	assert.Contains(t, view, "Done")
}

func TestWorkspace_BacklogViewRankedWithScores(t *testing.T) {
	ws := createWorkspace(createTestStore(), &mockTransitionAPI{})
	ws.mode = ViewBacklog

	view := ws.View()
	assert.Contains(t, view, "Critical stasis")
	assert.Contains(t, view, "Low stasis")
	assert.Contains(t, view, "total effort 6")
	// WSJF score for critical/4 effort.
	assert.Contains(t, view, "1.00")
}

func TestWorkspace_BacklogGroupedByEpic(t *testing.T) {
	ws := createWorkspace(createTestStore(), &mockTransitionAPI{})
	ws.mode = ViewBacklog
	ws.groupByEpic = true

	view := ws.View()
	assert.Contains(t, view, "Hull")
	assert.Contains(t, view, "Unassigned")
}

func TestWorkspace_WindowResize(t *testing.T) {
	ws := createWorkspace(createTestStore(), &mockTransitionAPI{})

	model, _ := ws.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	ws = model.(WorkspaceModel)
	assert.Equal(t, 120, ws.width)
	assert.Equal(t, 40, ws.height)
}
