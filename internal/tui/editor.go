package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/browser"

	"github.com/jvasco/tix/internal/domain"
	"github.com/jvasco/tix/internal/session"
)

// Editor styles
var (
	editorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	draftBadgeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("228")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))
)

// Editor field order. Tab moves forward, shift+tab backward.
const (
	fieldTitle = iota
	fieldDescription
	fieldStatus
	fieldImpact
	fieldEffort
	fieldEpic
	fieldAssignee
	fieldStartDate
	fieldEndDate
	fieldFlagged
	fieldRequiresHuman
	fieldCount
)

// EditorModel edits the ticket held by the session. Free-text fields
// persist on every keystroke through the debounce; discrete fields commit
// immediately when changed. Drafts persist only on ctrl+s.
type EditorModel struct {
	// Dependencies
	session    *session.Session
	consultant Consultant
	ctx        context.Context

	// UI components
	spinner    spinner.Model
	titleInput textinput.Model
	descInput  textarea.Model
	textFields map[int]*textinput.Model
	adviceView viewport.Model

	// State
	focus      int
	epics      []domain.Epic
	adviceMode bool
	consulting bool
	saving     bool
	errorMsg   string
	successMsg string

	width  int
	height int
}

// NewEditorModel creates the editor for the session's open ticket.
func NewEditorModel(s *session.Session, consultant Consultant, epics []domain.Epic, ctx context.Context) EditorModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	t, _ := s.Ticket()

	ti := textinput.New()
	ti.Placeholder = domain.DraftTitle
	ti.SetValue(t.Title)
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Describe the work unit..."
	ta.SetValue(t.Description)
	ta.SetHeight(6)
	ta.ShowLineNumbers = false

	mk := func(value, placeholder string) *textinput.Model {
		in := textinput.New()
		in.SetValue(value)
		in.Placeholder = placeholder
		return &in
	}

	return EditorModel{
		session:    s,
		consultant: consultant,
		ctx:        ctx,
		spinner:    sp,
		titleInput: ti,
		descInput:  ta,
		textFields: map[int]*textinput.Model{
			fieldEffort:    mk(fmt.Sprintf("%d", t.Effort), "0"),
			fieldAssignee:  mk(t.Assignee, "unassigned"),
			fieldStartDate: mk(t.StartDate, "YYYY-MM-DD"),
			fieldEndDate:   mk(t.EndDate, "YYYY-MM-DD"),
		},
		adviceView: viewport.New(60, 12),
		epics:      epics,
	}
}

// Init initializes the editor model.
func (m EditorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize(), textinput.Blink)
}

// Update handles messages.
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.titleInput.Width = clampInt(msg.Width-20, 20, 80)
		m.descInput.SetWidth(clampInt(msg.Width-20, 20, 80))
		m.adviceView.Width = clampInt(msg.Width-10, 30, 90)
		m.adviceView.Height = clampInt(msg.Height-8, 6, 24)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fieldCommittedMsg:
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Save failed: %v", msg.err)
		} else {
			m.errorMsg = ""
		}
		return m, nil

	case ticketCreatedMsg:
		m.saving = false
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Create failed: %v", msg.err)
			return m, nil
		}
		m.successMsg = fmt.Sprintf("Unit %s assimilated", msg.ticket.ID)
		return m, nil

	case adviceReadyMsg:
		m.consulting = false
		if msg.err != nil {
			m.errorMsg = "Link disrupted. Re-attempt assimilation later."
			return m, nil
		}
		m.adviceMode = true
		m.adviceView.SetContent(wordwrap.String(msg.text, m.adviceView.Width-2))
		m.adviceView.GotoTop()
		return m, nil

	case SaveResultMsg:
		// The session already reconciled; refresh the inputs that mirror
		// server-normalized fields, leaving the focused one untouched.
		if msg.Result.Err == nil {
			m.refreshInputs()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m EditorModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.adviceMode {
		switch msg.String() {
		case "esc", "q":
			m.adviceMode = false
		case "j", "down":
			m.adviceView.LineDown(1)
		case "k", "up":
			m.adviceView.LineUp(1)
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		// Closing flushes dirty persisted tickets and discards drafts.
		return m, m.closeEditor()
	case "tab":
		m.focus = (m.focus + 1) % fieldCount
		m.syncFocus()
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		m.syncFocus()
		return m, nil
	case "ctrl+s":
		if m.session.IsDraft() {
			m.saving = true
			return m, m.createTicket()
		}
		return m, nil
	case "ctrl+a":
		if !m.consulting {
			m.consulting = true
			return m, m.consultTicket()
		}
		return m, nil
	case "ctrl+o":
		if t, ok := m.session.Ticket(); ok && t.PRURL != "" {
			_ = browser.OpenURL(t.PRURL)
		}
		return m, nil
	}

	switch m.focus {
	case fieldTitle:
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		m.session.SetTitle(m.ctx, m.titleInput.Value())
		return m, cmd
	case fieldDescription:
		var cmd tea.Cmd
		m.descInput, cmd = m.descInput.Update(msg)
		m.session.SetDescription(m.ctx, m.descInput.Value())
		return m, cmd
	case fieldStatus:
		if delta, ok := cycleDelta(msg); ok {
			return m, m.commit(func(t domain.Ticket) error {
				return m.session.SetStatus(m.ctx, cycleStatus(t.Status, delta))
			})
		}
	case fieldImpact:
		if delta, ok := cycleDelta(msg); ok {
			return m, m.commit(func(t domain.Ticket) error {
				return m.session.SetImpact(m.ctx, cycleImpact(t.Impact, delta))
			})
		}
	case fieldEpic:
		if delta, ok := cycleDelta(msg); ok {
			return m, m.commit(func(t domain.Ticket) error {
				return m.session.SetEpicID(m.ctx, m.cycleEpic(t.EpicID, delta))
			})
		}
	case fieldFlagged:
		if msg.String() == "enter" || msg.String() == " " {
			return m, m.commit(func(domain.Ticket) error {
				return m.session.ToggleFlagged(m.ctx)
			})
		}
	case fieldRequiresHuman:
		if msg.String() == "enter" || msg.String() == " " {
			return m, m.commit(func(domain.Ticket) error {
				return m.session.ToggleRequiresHuman(m.ctx)
			})
		}
	case fieldEffort, fieldAssignee, fieldStartDate, fieldEndDate:
		in := m.textFields[m.focus]
		if msg.String() == "enter" {
			return m, m.commitText(m.focus, in.Value())
		}
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return m, cmd
	}

	return m, nil
}

// commit runs a discrete field change against the session off the UI loop.
// The buffer is read inside the closure so back-to-back commits each see
// the previous one's result.
func (m EditorModel) commit(fn func(domain.Ticket) error) tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		t, ok := sess.Ticket()
		if !ok {
			return fieldCommittedMsg{err: session.ErrNoSession}
		}
		return fieldCommittedMsg{err: fn(t)}
	}
}

// commitText commits a typed field value on enter.
func (m EditorModel) commitText(field int, value string) tea.Cmd {
	return func() tea.Msg {
		var err error
		switch field {
		case fieldEffort:
			err = m.session.SetEffort(m.ctx, value)
		case fieldAssignee:
			err = m.session.SetAssignee(m.ctx, value)
		case fieldStartDate:
			err = m.session.SetStartDate(m.ctx, value)
		case fieldEndDate:
			err = m.session.SetEndDate(m.ctx, value)
		}
		return fieldCommittedMsg{err: err}
	}
}

// createTicket sends the draft to the create endpoint.
func (m EditorModel) createTicket() tea.Cmd {
	return func() tea.Msg {
		created, err := m.session.Create(m.ctx)
		return ticketCreatedMsg{ticket: created, err: err}
	}
}

// closeEditor flushes the session and returns to the workspace.
func (m EditorModel) closeEditor() tea.Cmd {
	return func() tea.Msg {
		_ = m.session.Close(m.ctx)
		return closeEditorMsg{}
	}
}

// consultTicket asks the Mother for advice on this work unit.
func (m EditorModel) consultTicket() tea.Cmd {
	return func() tea.Msg {
		t, ok := m.session.Ticket()
		if !ok {
			return adviceReadyMsg{err: session.ErrNoSession}
		}
		epicName := ""
		for _, e := range m.epics {
			if e.ID == t.EpicID {
				epicName = e.Name
				break
			}
		}
		text, err := m.consultant.ConsultTicket(m.ctx, t, epicName)
		if err != nil {
			return adviceReadyMsg{err: err}
		}
		return adviceReadyMsg{text: text}
	}
}

// refreshInputs re-seeds the text inputs from the session buffer after a
// confirmed save, so server-side normalization (coerced effort, trimmed
// dates) shows up. The input under the cursor keeps the user's typing.
func (m *EditorModel) refreshInputs() {
	t, ok := m.session.Ticket()
	if !ok {
		return
	}
	if m.focus != fieldTitle {
		m.titleInput.SetValue(t.Title)
	}
	if m.focus != fieldDescription {
		m.descInput.SetValue(t.Description)
	}
	values := map[int]string{
		fieldEffort:    fmt.Sprintf("%d", t.Effort),
		fieldAssignee:  t.Assignee,
		fieldStartDate: t.StartDate,
		fieldEndDate:   t.EndDate,
	}
	for field, in := range m.textFields {
		if m.focus != field {
			in.SetValue(values[field])
		}
	}
}

// syncFocus focuses the input under the cursor and blurs the rest.
func (m *EditorModel) syncFocus() {
	m.titleInput.Blur()
	m.descInput.Blur()
	for _, in := range m.textFields {
		in.Blur()
	}
	switch m.focus {
	case fieldTitle:
		m.titleInput.Focus()
	case fieldDescription:
		m.descInput.Focus()
	case fieldEffort, fieldAssignee, fieldStartDate, fieldEndDate:
		m.textFields[m.focus].Focus()
	}
}

// View renders the editor.
func (m EditorModel) View() string {
	t, open := m.session.Ticket()
	if !open {
		return ""
	}

	width := m.width
	if width == 0 {
		width = 80
	}

	if m.adviceMode {
		overlay := adviceOverlayStyle.Render(
			editorTitleStyle.Render("The Mother speaks") + "\n\n" + m.adviceView.View())
		height := m.height
		if height == 0 {
			height = 24
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	}

	var b strings.Builder

	// Header
	if t.IsDraft() {
		b.WriteString(draftBadgeStyle.Render("DRAFT"))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render("[Ctrl+S]create [ESC]discard [tab]next field"))
	} else {
		b.WriteString(dimStyle.Render(fmt.Sprintf("#%s  [ESC]close [tab]next [Ctrl+A]consult [Ctrl+O]open PR", t.ID)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderField(fieldTitle, "Title", m.titleInput.View()))
	b.WriteString(m.renderField(fieldDescription, "Description", "\n"+m.descInput.View()))
	b.WriteString(m.renderField(fieldStatus, "Status", fieldValueStyle.Render(string(t.Status))+cycleHint(m.focus == fieldStatus)))
	b.WriteString(m.renderField(fieldImpact, "Impact", fieldValueStyle.Render(string(t.Impact))+cycleHint(m.focus == fieldImpact)))
	b.WriteString(m.renderField(fieldEffort, "Effort", m.textFields[fieldEffort].View()))
	b.WriteString(m.renderField(fieldEpic, "Epic", m.renderEpicValue(t.EpicID)+cycleHint(m.focus == fieldEpic)))
	b.WriteString(m.renderField(fieldAssignee, "Assignee", m.textFields[fieldAssignee].View()))
	b.WriteString(m.renderField(fieldStartDate, "Start", m.textFields[fieldStartDate].View()))
	b.WriteString(m.renderField(fieldEndDate, "End", m.textFields[fieldEndDate].View()))
	b.WriteString(m.renderField(fieldFlagged, "Flagged", checkbox(t.Flagged)))
	b.WriteString(m.renderField(fieldRequiresHuman, "Needs human", checkbox(t.RequiresHuman)))

	if t.AIInsights != "" {
		b.WriteString("\n")
		b.WriteString(fieldLabelStyle.Render("Insights:"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(wordwrap.String(t.AIInsights, clampInt(width-4, 30, 100))))
		b.WriteString("\n")
	}

	// Footer
	b.WriteString("\n")
	switch {
	case m.saving:
		b.WriteString(m.spinner.View() + " Creating...")
	case m.consulting:
		b.WriteString(m.spinner.View() + " Consulting...")
	case m.errorMsg != "":
		b.WriteString(ErrorStyle.Render("✗ " + m.errorMsg))
	case m.successMsg != "":
		b.WriteString(successStyle.Render("✓ " + m.successMsg))
	case m.session.IsDirty():
		b.WriteString(dimStyle.Render("saving..."))
	default:
		b.WriteString(dimStyle.Render("saved"))
	}

	return b.String()
}

// renderField renders one labeled row with focus highlighting.
func (m EditorModel) renderField(field int, label, value string) string {
	style := fieldLabelStyle
	if m.focus == field {
		style = focusedLabelStyle
	}
	return fmt.Sprintf("%s %s\n", style.Render(fmt.Sprintf("%-12s", label+":")), value)
}

// renderEpicValue shows the epic name in its color, or a dim placeholder.
func (m EditorModel) renderEpicValue(epicID string) string {
	if epicID == "" {
		return dimStyle.Render("(none)")
	}
	for _, e := range m.epics {
		if e.ID == epicID {
			return EpicStyle(e.Color).Render(e.Name)
		}
	}
	// Dangling reference: the epic was deleted elsewhere.
	return dimStyle.Render("(unknown)")
}

// cycleEpic returns the next epic ID in the project's list, with "" (none)
// as an extra stop in the cycle.
func (m EditorModel) cycleEpic(current string, delta int) string {
	ids := make([]string, 0, len(m.epics)+1)
	ids = append(ids, "")
	for _, e := range m.epics {
		ids = append(ids, e.ID)
	}
	idx := 0
	for i, id := range ids {
		if id == current {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(ids)) % len(ids)
	return ids[idx]
}

func cycleDelta(msg tea.KeyMsg) (int, bool) {
	switch msg.String() {
	case "right", "l", " ", "enter":
		return 1, true
	case "left", "h":
		return -1, true
	}
	return 0, false
}

func cycleStatus(current domain.TicketStatus, delta int) domain.TicketStatus {
	all := domain.AllStatuses
	idx := 0
	for i, s := range all {
		if s == current {
			idx = i
			break
		}
	}
	return all[(idx+delta+len(all))%len(all)]
}

func cycleImpact(current domain.Impact, delta int) domain.Impact {
	all := domain.AllImpacts
	idx := 0
	for i, v := range all {
		if v == current {
			idx = i
			break
		}
	}
	return all[(idx+delta+len(all))%len(all)]
}

func cycleHint(focused bool) string {
	if focused {
		return dimStyle.Render("  ←/→")
	}
	return ""
}

func checkbox(v bool) string {
	if v {
		return fieldValueStyle.Render("[x]")
	}
	return dimStyle.Render("[ ]")
}

// Message types for the editor
type (
	fieldCommittedMsg struct{ err error }
	ticketCreatedMsg  struct {
		ticket domain.Ticket
		err    error
	}
)
