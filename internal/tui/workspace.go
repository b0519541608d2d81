package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jvasco/tix/internal/domain"
	"github.com/jvasco/tix/internal/rank"
	"github.com/jvasco/tix/internal/store"
	"github.com/jvasco/tix/internal/timeline"
	"github.com/jvasco/tix/internal/workflow"
)

// Layout constants
const (
	minColumnWidth = 20
	maxColumnWidth = 35
	pageJumpSize   = 10 // Number of tickets to jump with Ctrl+D/U
)

// Styles for the workspace view - base styles without width/height (set dynamically)
var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	moveModeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("205")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)

	weekendStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	adviceOverlayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("141")).
				Padding(1, 2)
)

// ViewMode selects which projection of the project is on screen.
type ViewMode int

const (
	ViewBoard ViewMode = iota
	ViewBacklog
	ViewTimeline
)

// Prompt actions: what an open text prompt will do on enter.
const (
	promptNone = iota
	promptNewEpic
	promptRenameEpic
	promptNewColumn
	promptRenameColumn
	promptGoal
)

// Confirmation targets for the y/n banner.
const (
	confirmNone = iota
	confirmTicket
	confirmColumn
	confirmEpic
)

func (v ViewMode) String() string {
	switch v {
	case ViewBoard:
		return "BOARD"
	case ViewBacklog:
		return "BACKLOG"
	case ViewTimeline:
		return "TIMELINE"
	default:
		return "?"
	}
}

// Client is the remote surface the workspace reads and mutates through.
type Client interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	GetProjectDetails(ctx context.Context, id string) (domain.Project, error)
	CreateProject(ctx context.Context, name string) (domain.Project, error)
	UpdateProject(ctx context.Context, id, name, description, goal string) (domain.Project, error)
	DeleteProject(ctx context.Context, id, secret string) error
	CreateEpic(ctx context.Context, projectID, name, color string) (domain.Epic, error)
	UpdateEpic(ctx context.Context, id, name, color string) (domain.Epic, error)
	DeleteEpic(ctx context.Context, id string) error
	CreateColumn(ctx context.Context, projectID, title string, statusKey domain.TicketStatus) (domain.Column, error)
	UpdateColumn(ctx context.Context, id, title string) (domain.Column, error)
	DeleteColumn(ctx context.Context, id string) error
	DeleteTicket(ctx context.Context, id string) error
}

// Consultant issues hive-mind consultations for tickets and projects.
type Consultant interface {
	ConsultTicket(ctx context.Context, t domain.Ticket, epicName string) (string, error)
	ConsultProject(ctx context.Context, p domain.Project) (string, error)
}

// WorkspaceModel is the main project view: kanban board, ranked backlog
// and timeline over the same store, cycled with tab.
type WorkspaceModel struct {
	// Dependencies
	store      *store.Store
	client     Client
	flow       *workflow.Manager
	consultant Consultant
	ctx        context.Context

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model
	adviceView  viewport.Model

	// Board state
	boardCols      []store.BoardColumn
	selectedColumn int
	selectedCard   map[string]int // Column ID -> selected ticket index

	// Backlog state
	backlogRows  []domain.Ticket
	backlogIndex int
	groupByEpic  bool

	// Timeline state
	layout         timeline.Layout
	timelineOffset int

	// View state
	mode       ViewMode
	width      int
	height     int
	showHelp   bool
	filterMode bool
	filterText string
	moveMode   bool
	loading    bool
	consulting bool
	adviceMode bool
	errorToast string

	// Structure management state
	promptAction int
	promptTarget string
	promptInput  textinput.Model
	confirmKind  int
	confirmID    string
	confirmLabel string
}

// NewWorkspaceModel creates the workspace over an already-selected project.
func NewWorkspaceModel(s *store.Store, client Client, flow *workflow.Manager, consultant Consultant, ctx context.Context) WorkspaceModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Prompt = "/ "

	pi := textinput.New()
	pi.CharLimit = 120

	return WorkspaceModel{
		store:        s,
		client:       client,
		flow:         flow,
		consultant:   consultant,
		ctx:          ctx,
		keymap:       DefaultKeyMap(),
		help:         NewHelpModel(DefaultKeyMap()),
		spinner:      sp,
		filterInput:  ti,
		promptInput:  pi,
		adviceView:   viewport.New(60, 12),
		selectedCard: make(map[string]int),
	}
}

// workspaceInitMsg triggers the initial projection rebuild.
type workspaceInitMsg struct{}

// Init initializes the workspace.
func (m WorkspaceModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		func() tea.Msg { return workspaceInitMsg{} },
	)
}

// Update handles messages.
func (m WorkspaceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adviceView.Width = clampInt(msg.Width-10, 30, 90)
		m.adviceView.Height = clampInt(msg.Height-8, 6, 24)
		return m, nil

	case workspaceInitMsg:
		(&m).rebuildProjections()
		return m, nil

	case projectReloadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Refresh failed: %v", msg.err)
			return m, nil
		}
		(&m).rebuildProjections()
		return m, nil

	case moveDoneMsg:
		m.moveMode = false
		if msg.err != nil {
			// Optimistic state stays on screen; only the error surfaces.
			m.errorToast = fmt.Sprintf("Move failed: %v", msg.err)
		}
		(&m).rebuildProjections()
		return m, nil

	case ticketDeletedMsg:
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		(&m).rebuildProjections()
		return m, nil

	case structureChangedMsg:
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Update failed: %v", msg.err)
			return m, nil
		}
		(&m).rebuildProjections()
		return m, nil

	case adviceReadyMsg:
		m.consulting = false
		if msg.err != nil {
			m.errorToast = "Unable to commune with the Hive Mind."
			return m, nil
		}
		m.adviceMode = true
		m.adviceView.SetContent(wordwrap.String(msg.text, m.adviceView.Width-2))
		m.adviceView.GotoTop()
		return m, nil

	case SaveResultMsg:
		if msg.Result.Err != nil {
			m.errorToast = fmt.Sprintf("Save failed: %v", msg.Result.Err)
		}
		(&m).rebuildProjections()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m WorkspaceModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Advice overlay
	if m.adviceMode {
		switch msg.String() {
		case "esc", "q", "c":
			m.adviceMode = false
		case "j", "down":
			m.adviceView.LineDown(1)
		case "k", "up":
			m.adviceView.LineUp(1)
		}
		return m, nil
	}

	// Help overlay
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Delete confirmation
	if m.confirmKind != confirmNone {
		switch msg.String() {
		case "y", "Y":
			kind, id := m.confirmKind, m.confirmID
			m.confirmKind, m.confirmID, m.confirmLabel = confirmNone, "", ""
			switch kind {
			case confirmTicket:
				if t, ok := m.selectedTicket(); ok {
					return m, m.deleteTicket(t)
				}
			case confirmColumn:
				return m, m.deleteColumn(id)
			case confirmEpic:
				return m, m.deleteEpic(id)
			}
		case "n", "N", "esc":
			m.confirmKind, m.confirmID, m.confirmLabel = confirmNone, "", ""
		}
		return m, nil
	}

	// Structure prompt (new epic, rename, new column, goal)
	if m.promptAction != promptNone {
		switch msg.String() {
		case "enter":
			return m.submitPrompt()
		case "esc":
			m.promptAction = promptNone
			m.promptTarget = ""
			return m, nil
		default:
			var cmd tea.Cmd
			m.promptInput, cmd = m.promptInput.Update(msg)
			return m, cmd
		}
	}

	// Filter mode
	if m.filterMode {
		switch msg.String() {
		case "enter":
			m.filterMode = false
			m.filterText = m.filterInput.Value()
			(&m).rebuildProjections()
			return m, nil
		case "esc":
			m.filterMode = false
			m.filterInput.SetValue(m.filterText)
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	// Move mode
	if m.moveMode {
		return m.handleMoveMode(msg)
	}

	// Normal navigation
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "/":
		m.filterMode = true
		m.filterInput.Focus()
	case "tab":
		m.mode = (m.mode + 1) % 3
		(&m).rebuildProjections()
	case "h", "left":
		if m.mode == ViewBoard && m.selectedColumn > 0 {
			m.selectedColumn--
		}
	case "l", "right":
		if m.mode == ViewBoard && m.selectedColumn < len(m.boardCols)-1 {
			m.selectedColumn++
		}
	case "j", "down":
		(&m).moveSelection(1)
	case "k", "up":
		(&m).moveSelection(-1)
	case "ctrl+d":
		(&m).moveSelection(pageJumpSize)
	case "ctrl+u":
		(&m).moveSelection(-pageJumpSize)
	case "m":
		if m.mode == ViewBoard {
			if _, ok := m.selectedTicket(); ok {
				m.moveMode = true
			}
		}
	case "b":
		if m.mode == ViewBacklog {
			if t, ok := m.selectedTicket(); ok {
				return m, m.promote(t)
			}
		}
	case "s":
		if m.mode == ViewBoard {
			if t, ok := m.selectedTicket(); ok {
				return m, m.demote(t)
			}
		}
	case "e":
		if m.mode == ViewBacklog {
			m.groupByEpic = !m.groupByEpic
		}
	case "n":
		draft := domain.NewDraft(domain.StatusBacklog, "", "")
		return m, func() tea.Msg { return openEditorMsg{ticket: draft} }
	case "x":
		if _, ok := m.selectedTicket(); ok {
			m.confirmKind = confirmTicket
		}
	case "E":
		(&m).openPrompt(promptNewEpic, "", "New epic: ", "")
	case "G":
		goal := ""
		if project, err := m.store.GetProject(m.store.ActiveProjectID()); err == nil {
			goal = project.Goal
		}
		(&m).openPrompt(promptGoal, "", "Goal: ", goal)
	case "C":
		if m.mode == ViewBoard {
			(&m).openPrompt(promptNewColumn, "", "New column (Title:STATUS): ", "")
		}
	case "R":
		switch m.mode {
		case ViewBoard:
			if len(m.boardCols) > 0 {
				col := m.boardCols[m.selectedColumn].Column
				(&m).openPrompt(promptRenameColumn, col.ID, "Rename column: ", col.Title)
			}
		case ViewBacklog:
			if epic, ok := m.selectedEpic(); ok {
				(&m).openPrompt(promptRenameEpic, epic.ID, "Rename epic: ", epic.Name)
			}
		}
	case "X":
		switch m.mode {
		case ViewBoard:
			if len(m.boardCols) > 0 {
				col := m.boardCols[m.selectedColumn].Column
				m.confirmKind, m.confirmID, m.confirmLabel = confirmColumn, col.ID, col.Title
			}
		case ViewBacklog:
			if epic, ok := m.selectedEpic(); ok {
				m.confirmKind, m.confirmID, m.confirmLabel = confirmEpic, epic.ID, epic.Name
			}
		}
	case "c":
		if !m.consulting {
			m.consulting = true
			return m, m.consultProject()
		}
	case "r":
		m.loading = true
		return m, m.reloadProject()
	case "enter":
		if t, ok := m.selectedTicket(); ok {
			return m, func() tea.Msg { return openEditorMsg{ticket: t} }
		}
	}

	return m, nil
}

// handleMoveMode handles key presses in move mode.
func (m WorkspaceModel) handleMoveMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.moveMode = false
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.Runes[0] - '1')
		if idx >= 0 && idx < len(m.boardCols) {
			if t, ok := m.selectedTicket(); ok {
				return m, m.drop(t, m.boardCols[idx].Column.StatusKey)
			}
		}
	}
	return m, nil
}

// View renders the workspace - fills the terminal exactly.
func (m WorkspaceModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	sections = append(sections, m.renderSecondHeader(width))

	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}
	if m.promptAction != promptNone {
		sections = append(sections, m.promptInput.View())
	}
	if m.moveMode {
		moveBar := moveModeStyle.Render("MOVE") + " Press 1-9 to select column, ESC to cancel"
		sections = append(sections, moveBar)
	}
	switch m.confirmKind {
	case confirmTicket:
		if t, ok := m.selectedTicket(); ok {
			sections = append(sections, errorStyle.Render(fmt.Sprintf("Delete %q? [y/n]", t.Title)))
		}
	case confirmColumn:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Delete column %q? Its tickets stay. [y/n]", m.confirmLabel)))
	case confirmEpic:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Delete epic %q? [y/n]", m.confirmLabel)))
	}

	contentHeight := height - len(sections)
	if contentHeight < 5 {
		contentHeight = 5
	}

	var mainContent string
	switch {
	case m.showHelp:
		helpContent := m.help.View(width)
		helpLines := strings.Split(helpContent, "\n")
		if len(helpLines) > contentHeight {
			helpLines = helpLines[:contentHeight]
		}
		mainContent = strings.Join(helpLines, "\n")
	case m.adviceMode:
		overlay := adviceOverlayStyle.Render(
			titleStyle.Render("The Mother speaks") + "\n\n" + m.adviceView.View())
		mainContent = lipgloss.Place(width, contentHeight, lipgloss.Center, lipgloss.Center, overlay)
	case m.loading:
		mainContent = lipgloss.Place(width, contentHeight, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading...")
	default:
		switch m.mode {
		case ViewBoard:
			mainContent = m.renderBoard(width, contentHeight)
		case ViewBacklog:
			mainContent = m.renderBacklog(width, contentHeight)
		case ViewTimeline:
			mainContent = m.renderTimeline(width, contentHeight)
		}
	}
	sections = append(sections, mainContent)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders project name, view mode and status info.
func (m WorkspaceModel) renderHeader(width int) string {
	project, ok := m.store.ActiveProject()
	if !ok {
		return ""
	}

	title := fmt.Sprintf("%s [%s]", project.Name, m.mode)

	var statusParts []string
	if m.consulting {
		statusParts = append(statusParts, m.spinner.View()+"consulting")
	}
	statusParts = append(statusParts, fmt.Sprintf("%d tickets", len(project.Tickets)))
	if m.filterText != "" {
		statusParts = append(statusParts, "/"+m.filterText)
	}
	statusParts = append(statusParts, "[tab]view [?]help")
	status := strings.Join(statusParts, " | ")

	padding := width - len(title) - lipgloss.Width(status) - 2
	if padding < 1 {
		padding = 1
	}
	return titleStyle.Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(status)
}

// renderSecondHeader renders navigation hints and position or error toast.
func (m WorkspaceModel) renderSecondHeader(width int) string {
	var left string
	switch m.mode {
	case ViewBoard:
		left = "h/l:col j/k:ticket m:move s:stasis n:new C/R/X:columns enter:edit"
	case ViewBacklog:
		left = "j/k:ticket b:board e:epics E/R/X:epic n:new enter:edit"
	case ViewTimeline:
		left = "j/k:scroll tab:view"
	}

	right := ""
	if m.errorToast != "" {
		right = errorStyle.Render(m.errorToast)
	} else if m.mode == ViewBoard && len(m.boardCols) > 0 {
		col := m.boardCols[m.selectedColumn]
		right = fmt.Sprintf("col %d/%d", m.selectedColumn+1, len(m.boardCols))
		if n := len(col.Tickets); n > 0 {
			right = fmt.Sprintf("%s | ticket %d/%d", right, m.selectedCard[col.Column.ID]+1, n)
		}
	} else if m.mode == ViewBacklog && len(m.backlogRows) > 0 {
		right = fmt.Sprintf("ticket %d/%d", m.backlogIndex+1, len(m.backlogRows))
	}

	padding := width - len(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return dimStyle.Render(left) + strings.Repeat(" ", padding) + right
}

// rebuildProjections refreshes all view projections from the store.
func (m *WorkspaceModel) rebuildProjections() {
	projectID := m.store.ActiveProjectID()
	if projectID == "" {
		return
	}

	cols, err := m.store.BoardColumns(projectID)
	if err == nil {
		for i := range cols {
			cols[i].Tickets = m.filterTickets(cols[i].Tickets)
		}
		m.boardCols = cols
	}
	if m.selectedColumn >= len(m.boardCols) {
		m.selectedColumn = 0
	}
	for _, col := range m.boardCols {
		if m.selectedCard[col.Column.ID] >= len(col.Tickets) {
			m.selectedCard[col.Column.ID] = maxInt(0, len(col.Tickets)-1)
		}
	}

	if backlog, err := m.store.BacklogTickets(projectID); err == nil {
		m.backlogRows = rank.Rank(m.filterTickets(backlog))
	}
	if m.backlogIndex >= len(m.backlogRows) {
		m.backlogIndex = maxInt(0, len(m.backlogRows)-1)
	}

	if project, err := m.store.GetProject(projectID); err == nil {
		m.layout = timeline.Compute(m.filterTickets(project.Tickets), time.Now())
	}
}

// filterTickets applies the text filter to a ticket slice.
func (m *WorkspaceModel) filterTickets(tickets []domain.Ticket) []domain.Ticket {
	if m.filterText == "" {
		return tickets
	}
	needle := strings.ToLower(m.filterText)
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			out = append(out, t)
		}
	}
	return out
}

// moveSelection moves the ticket selection in the active view.
func (m *WorkspaceModel) moveSelection(delta int) {
	switch m.mode {
	case ViewBoard:
		if len(m.boardCols) == 0 {
			return
		}
		col := m.boardCols[m.selectedColumn]
		if len(col.Tickets) == 0 {
			return
		}
		m.selectedCard[col.Column.ID] = clampInt(m.selectedCard[col.Column.ID]+delta, 0, len(col.Tickets)-1)
	case ViewBacklog:
		if len(m.backlogRows) == 0 {
			return
		}
		m.backlogIndex = clampInt(m.backlogIndex+delta, 0, len(m.backlogRows)-1)
	case ViewTimeline:
		m.timelineOffset = maxInt(0, m.timelineOffset+delta)
	}
}

// selectedTicket returns the ticket under the cursor in the active view.
func (m WorkspaceModel) selectedTicket() (domain.Ticket, bool) {
	switch m.mode {
	case ViewBoard:
		if len(m.boardCols) == 0 {
			return domain.Ticket{}, false
		}
		col := m.boardCols[m.selectedColumn]
		if len(col.Tickets) == 0 {
			return domain.Ticket{}, false
		}
		idx := clampInt(m.selectedCard[col.Column.ID], 0, len(col.Tickets)-1)
		return col.Tickets[idx], true
	case ViewBacklog:
		if len(m.backlogRows) == 0 {
			return domain.Ticket{}, false
		}
		return m.backlogRows[clampInt(m.backlogIndex, 0, len(m.backlogRows)-1)], true
	default:
		return domain.Ticket{}, false
	}
}

// renderBoard renders the kanban columns.
func (m WorkspaceModel) renderBoard(totalWidth, totalHeight int) string {
	if len(m.boardCols) == 0 {
		return lipgloss.Place(totalWidth, totalHeight, lipgloss.Center, lipgloss.Center,
			"No columns configured. Press 'r' to refresh.")
	}

	colContentHeight := totalHeight - 2
	if colContentHeight < 3 {
		colContentHeight = 3
	}

	visibleCols := clampInt(totalWidth/minColumnWidth, 1, len(m.boardCols))
	colWidth := clampInt(totalWidth/visibleCols, minColumnWidth, maxColumnWidth)
	innerWidth := maxInt(10, colWidth-4)

	columnViews := make([]string, 0, visibleCols)
	for i := 0; i < visibleCols; i++ {
		col := m.boardCols[i]
		columnViews = append(columnViews,
			m.renderColumn(col, i == m.selectedColumn, colWidth, colContentHeight, innerWidth, i+1))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)
}

// renderColumn renders a single board column.
func (m WorkspaceModel) renderColumn(col store.BoardColumn, selected bool, width, innerHeight, innerWidth, colNum int) string {
	headerText := fmt.Sprintf("[%d] %s (%d)", colNum, col.Column.Title, len(col.Tickets))
	if len(headerText) > innerWidth {
		headerText = headerText[:innerWidth-1] + "…"
	}

	var lines []string
	lines = append(lines, columnHeaderStyle.Render(headerText))

	maxRows := innerHeight - 1
	selectedIdx := m.selectedCard[col.Column.ID]
	for i, t := range col.Tickets {
		if i >= maxRows {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("↓ %d more", len(col.Tickets)-maxRows)))
			break
		}
		text := m.formatTicketText(t, innerWidth-2)
		if selected && i == selectedIdx {
			lines = append(lines, selectedCardStyle.Render("> "+text))
		} else {
			lines = append(lines, cardStyle.Render("  "+text))
		}
	}
	if len(col.Tickets) == 0 {
		lines = append(lines, dimStyle.Render("(empty)"))
	}

	borderColor := lipgloss.Color("240")
	if selected {
		borderColor = lipgloss.Color("205")
	}
	colStyle := lipgloss.NewStyle().
		Width(width - 2).
		Height(innerHeight).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)
	return colStyle.Render(strings.Join(lines, "\n"))
}

// formatTicketText formats a ticket row with markers right-aligned.
func (m WorkspaceModel) formatTicketText(t domain.Ticket, maxWidth int) string {
	title := t.Title

	var marks []string
	if t.Flagged {
		marks = append(marks, "⚑")
	}
	if t.RequiresHuman {
		marks = append(marks, "☉")
	}
	if epic, ok := m.store.EpicByID(m.store.ActiveProjectID(), t.EpicID); ok {
		marks = append(marks, EpicStyle(epic.Color).Render("●"))
	}
	suffix := strings.Join(marks, "")

	suffixWidth := lipgloss.Width(suffix)
	available := maxWidth - suffixWidth - 1
	if suffixWidth == 0 {
		available = maxWidth
	}
	if available < 5 {
		available = 5
	}
	if len(title) > available {
		title = title[:available-1] + "…"
	}
	if suffix == "" {
		return title
	}

	padding := maxInt(1, maxWidth-len(title)-suffixWidth)
	return title + strings.Repeat(" ", padding) + suffix
}

// renderBacklog renders the ranked backlog, optionally grouped by epic.
func (m WorkspaceModel) renderBacklog(totalWidth, totalHeight int) string {
	projectID := m.store.ActiveProjectID()
	if len(m.backlogRows) == 0 {
		return lipgloss.Place(totalWidth, totalHeight, lipgloss.Center, lipgloss.Center,
			"Stasis is empty. Press 'n' to hatch a new ticket.")
	}

	var lines []string
	effort, _ := m.store.BacklogEffort(projectID)
	lines = append(lines, dimStyle.Render(fmt.Sprintf("%d units in stasis | total effort %d", len(m.backlogRows), effort)))

	if m.groupByEpic {
		project, err := m.store.GetProject(projectID)
		if err != nil {
			return ""
		}
		selected, _ := m.selectedTicket()
		for _, g := range rank.GroupByEpic(m.backlogRows, project.Epics) {
			name := g.Epic.Name
			style := EpicStyle(g.Epic.Color)
			if g.Unassigned {
				name = "Unassigned"
				style = dimStyle
			}
			lines = append(lines, style.Render(fmt.Sprintf("── %s (effort %d) ──", name, g.TotalEffort)))
			for _, t := range g.Tickets {
				lines = append(lines, m.renderBacklogRow(t, t.ID == selected.ID, totalWidth))
			}
		}
	} else {
		for i, t := range m.backlogRows {
			lines = append(lines, m.renderBacklogRow(t, i == m.backlogIndex, totalWidth))
		}
	}

	if len(lines) > totalHeight {
		// Keep the cursor row visible.
		start := clampInt(m.backlogIndex-totalHeight/2, 0, len(lines)-totalHeight)
		lines = lines[start : start+totalHeight]
	}
	return strings.Join(lines, "\n")
}

// renderBacklogRow renders one ranked backlog line with its WSJF score.
func (m WorkspaceModel) renderBacklogRow(t domain.Ticket, selected bool, width int) string {
	score := fmt.Sprintf("%.2f", rank.Score(t))
	impact := strings.ToUpper(string(t.Impact))
	text := fmt.Sprintf("%-8s %-5s e%-3d %s", impact, score, t.Effort, t.Title)
	if len(text) > width-2 {
		text = text[:width-3] + "…"
	}
	if selected {
		return selectedCardStyle.Render("> " + text)
	}
	return cardStyle.Render("  " + text)
}

// renderTimeline renders the day grid with one bar row per dated ticket.
func (m WorkspaceModel) renderTimeline(totalWidth, totalHeight int) string {
	if len(m.layout.Bars) == 0 {
		return lipgloss.Place(totalWidth, totalHeight, lipgloss.Center, lipgloss.Center,
			"No scheduled tickets. Assign start dates to see the timeline.")
	}

	labelWidth := 22
	dayWidth := maxInt(2, (totalWidth-labelWidth)/maxInt(1, len(m.layout.Days)))

	// Day-of-month header, weekends dimmed.
	var header strings.Builder
	header.WriteString(strings.Repeat(" ", labelWidth))
	for _, d := range m.layout.Days {
		cell := fmt.Sprintf("%-*d", dayWidth, d.Day())
		if timeline.IsWeekend(d) {
			header.WriteString(weekendStyle.Render(cell))
		} else {
			header.WriteString(dimStyle.Render(cell))
		}
	}

	lines := []string{header.String()}
	projectID := m.store.ActiveProjectID()
	bars := m.layout.Bars
	if m.timelineOffset < len(bars) {
		bars = bars[m.timelineOffset:]
	} else {
		bars = nil
	}
	for i, bar := range bars {
		if i >= totalHeight-1 {
			break
		}
		t, err := m.store.Ticket(projectID, bar.TicketID)
		if err != nil {
			continue
		}
		label := t.Title
		if len(label) > labelWidth-2 {
			label = label[:labelWidth-3] + "…"
		}
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%-*s", labelWidth, label))
		row.WriteString(strings.Repeat(" ", (bar.ColumnStart-1)*dayWidth))
		style := barStyle
		if epic, ok := m.store.EpicByID(projectID, t.EpicID); ok {
			style = EpicStyle(epic.Color)
		}
		row.WriteString(style.Render(strings.Repeat("█", bar.Span*dayWidth)))
		lines = append(lines, row.String())
	}
	return strings.Join(lines, "\n")
}

// drop persists a board drop through the transition manager.
func (m WorkspaceModel) drop(t domain.Ticket, target domain.TicketStatus) tea.Cmd {
	projectID := m.store.ActiveProjectID()
	return func() tea.Msg {
		return moveDoneMsg{err: m.flow.ApplyDrop(m.ctx, projectID, t.ID, target)}
	}
}

// promote moves a backlog ticket onto the board.
func (m WorkspaceModel) promote(t domain.Ticket) tea.Cmd {
	projectID := m.store.ActiveProjectID()
	return func() tea.Msg {
		return moveDoneMsg{err: m.flow.MoveToBoard(m.ctx, projectID, t.ID)}
	}
}

// demote sends a board ticket into stasis.
func (m WorkspaceModel) demote(t domain.Ticket) tea.Cmd {
	projectID := m.store.ActiveProjectID()
	return func() tea.Msg {
		return moveDoneMsg{err: m.flow.MoveToStasis(m.ctx, projectID, t.ID)}
	}
}

// reloadProject fetches the project fresh and replaces the store copy.
func (m WorkspaceModel) reloadProject() tea.Cmd {
	projectID := m.store.ActiveProjectID()
	return func() tea.Msg {
		project, err := m.client.GetProjectDetails(m.ctx, projectID)
		if err != nil {
			return projectReloadedMsg{err: err}
		}
		return projectReloadedMsg{err: m.store.ReplaceProject(projectID, project)}
	}
}

// deleteTicket removes the ticket remotely and locally.
func (m WorkspaceModel) deleteTicket(t domain.Ticket) tea.Cmd {
	projectID := m.store.ActiveProjectID()
	return func() tea.Msg {
		if err := m.client.DeleteTicket(m.ctx, t.ID); err != nil {
			return ticketDeletedMsg{err: err}
		}
		return ticketDeletedMsg{err: m.store.RemoveTicketLocally(projectID, t.ID)}
	}
}

// openPrompt arms the structure prompt with a label and a starting value.
func (m *WorkspaceModel) openPrompt(action int, target, label, value string) {
	m.promptAction = action
	m.promptTarget = target
	m.promptInput.Prompt = label
	m.promptInput.SetValue(value)
	m.promptInput.CursorEnd()
	m.promptInput.Focus()
}

// selectedEpic resolves the epic of the ticket under the cursor.
func (m WorkspaceModel) selectedEpic() (domain.Epic, bool) {
	t, ok := m.selectedTicket()
	if !ok || t.EpicID == "" {
		return domain.Epic{}, false
	}
	return m.store.EpicByID(m.store.ActiveProjectID(), t.EpicID)
}

// submitPrompt dispatches the armed prompt action with the typed value.
func (m WorkspaceModel) submitPrompt() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.promptInput.Value())
	action, target := m.promptAction, m.promptTarget
	m.promptAction = promptNone
	m.promptTarget = ""
	if value == "" {
		return m, nil
	}

	switch action {
	case promptNewEpic:
		return m, m.createEpic(value)
	case promptRenameEpic:
		return m, m.renameEpic(target, value)
	case promptNewColumn:
		title, statusKey, ok := parseColumnInput(value)
		if !ok {
			m.errorToast = `Columns are "Title:STATUS" with one of the five statuses`
			return m, nil
		}
		return m, m.createColumn(title, statusKey)
	case promptRenameColumn:
		return m, m.renameColumn(target, value)
	case promptGoal:
		return m, m.updateGoal(value)
	}
	return m, nil
}

// parseColumnInput splits a typed "Title:STATUS" value and validates the status key.
func parseColumnInput(v string) (string, domain.TicketStatus, bool) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	title := strings.TrimSpace(parts[0])
	statusKey := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(parts[1])))
	if title == "" || !statusKey.Valid() {
		return "", "", false
	}
	return title, statusKey, true
}

// refreshAfter reloads the project after a structure mutation so columns,
// epics and goal reflect the server's canonical state.
func (m WorkspaceModel) refreshAfter(err error) tea.Msg {
	if err != nil {
		return structureChangedMsg{err: err}
	}
	project, err := m.client.GetProjectDetails(m.ctx, m.store.ActiveProjectID())
	if err == nil {
		err = m.store.ReplaceProject(project.ID, project)
	}
	return structureChangedMsg{err: err}
}

// createEpic creates an epic, colored round-robin from the palette.
func (m WorkspaceModel) createEpic(name string) tea.Cmd {
	projectID := m.store.ActiveProjectID()
	existing := 0
	if project, err := m.store.GetProject(projectID); err == nil {
		existing = len(project.Epics)
	}
	return func() tea.Msg {
		_, err := m.client.CreateEpic(m.ctx, projectID, name, domain.NextEpicColor(existing))
		return m.refreshAfter(err)
	}
}

// renameEpic renames an epic, keeping its color.
func (m WorkspaceModel) renameEpic(id, name string) tea.Cmd {
	color := ""
	if epic, ok := m.store.EpicByID(m.store.ActiveProjectID(), id); ok {
		color = epic.Color
	}
	return func() tea.Msg {
		_, err := m.client.UpdateEpic(m.ctx, id, name, color)
		return m.refreshAfter(err)
	}
}

// deleteEpic removes an epic; its tickets degrade to unassigned.
func (m WorkspaceModel) deleteEpic(id string) tea.Cmd {
	return func() tea.Msg {
		return m.refreshAfter(m.client.DeleteEpic(m.ctx, id))
	}
}

// createColumn adds a board column for the given status.
func (m WorkspaceModel) createColumn(title string, statusKey domain.TicketStatus) tea.Cmd {
	projectID := m.store.ActiveProjectID()
	return func() tea.Msg {
		_, err := m.client.CreateColumn(m.ctx, projectID, title, statusKey)
		return m.refreshAfter(err)
	}
}

// renameColumn retitles a board column.
func (m WorkspaceModel) renameColumn(id, title string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.client.UpdateColumn(m.ctx, id, title)
		return m.refreshAfter(err)
	}
}

// deleteColumn removes a board column. Its tickets keep their status and
// stay in the store; they just lose their lane on the board.
func (m WorkspaceModel) deleteColumn(id string) tea.Cmd {
	return func() tea.Msg {
		return m.refreshAfter(m.client.DeleteColumn(m.ctx, id))
	}
}

// updateGoal rewrites the project goal.
func (m WorkspaceModel) updateGoal(goal string) tea.Cmd {
	projectID := m.store.ActiveProjectID()
	name, description := "", ""
	if project, err := m.store.GetProject(projectID); err == nil {
		name, description = project.Name, project.Description
	}
	return func() tea.Msg {
		_, err := m.client.UpdateProject(m.ctx, projectID, name, description, goal)
		return m.refreshAfter(err)
	}
}

// consultProject asks the Mother for a judgment of the whole project.
func (m WorkspaceModel) consultProject() tea.Cmd {
	projectID := m.store.ActiveProjectID()
	return func() tea.Msg {
		project, err := m.store.GetProject(projectID)
		if err != nil {
			return adviceReadyMsg{err: err}
		}
		text, err := m.consultant.ConsultProject(m.ctx, project)
		if err != nil {
			return adviceReadyMsg{err: err}
		}
		return adviceReadyMsg{text: text}
	}
}

// Message types
type (
	projectReloadedMsg  struct{ err error }
	moveDoneMsg         struct{ err error }
	ticketDeletedMsg    struct{ err error }
	structureChangedMsg struct{ err error }
	adviceReadyMsg     struct {
		text string
		err  error
	}
	openEditorMsg  struct{ ticket domain.Ticket }
	closeEditorMsg struct{}
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
