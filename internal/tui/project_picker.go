package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jvasco/tix/internal/domain"
)

// Picker prompt states: typing a new project name, or the deletion secret.
const (
	pickerPromptNone = iota
	pickerPromptName
	pickerPromptSecret
)

// projectItem wraps a domain.Project for use in bubbles/list.
type projectItem struct {
	project domain.Project
}

func (i projectItem) FilterValue() string {
	return i.project.Name
}

func (i projectItem) Title() string {
	return i.project.Name
}

func (i projectItem) Description() string {
	if i.project.Goal != "" {
		return i.project.Goal
	}
	return i.project.Description
}

// projectDelegate is a custom item delegate for project items.
type projectDelegate struct{}

func (d projectDelegate) Height() int                             { return 2 }
func (d projectDelegate) Spacing() int                            { return 1 }
func (d projectDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(projectItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())
	desc := i.Description()
	if desc == "" {
		desc = "(no goal recorded)"
	}

	if index == m.Index() {
		// Selected item
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(desc))
	} else {
		// Normal item
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
		fmt.Fprint(w, "\n  "+lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(desc))
	}
}

// ProjectPickerModel displays the project list and owns project creation
// and secret-gated deletion.
type ProjectPickerModel struct {
	list list.Model
	err  error

	prompt     int
	input      textinput.Model
	deleteID   string
	deleteName string
}

// NewProjectPickerModel creates a new ProjectPickerModel.
func NewProjectPickerModel(projects []domain.Project) ProjectPickerModel {
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p}
	}

	l := list.New(items, projectDelegate{}, 80, 20)
	l.Title = "Select a Project"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle

	in := textinput.New()
	in.CharLimit = 120

	return ProjectPickerModel{
		list:  l,
		input: in,
	}
}

// Init initializes the model.
func (m ProjectPickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m ProjectPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		if m.prompt != pickerPromptNone {
			return m.handlePromptKey(msg)
		}

		// While the list filter is typing, every key belongs to it.
		if m.list.SettingFilter() {
			break
		}

		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, func() tea.Msg {
				return QuitMsg{}
			}
		case "n":
			m.prompt = pickerPromptName
			m.input.Prompt = "New project: "
			m.input.SetValue("")
			m.input.Focus()
			return m, nil
		case "x":
			if item, ok := m.list.SelectedItem().(projectItem); ok {
				m.prompt = pickerPromptSecret
				m.deleteID = item.project.ID
				m.deleteName = item.project.Name
				m.input.Prompt = fmt.Sprintf("Secret to delete %q: ", item.project.Name)
				m.input.SetValue("")
				m.input.Focus()
			}
			return m, nil
		case "enter":
			if item, ok := m.list.SelectedItem().(projectItem); ok {
				return m, func() tea.Msg {
					return ProjectSelectedMsg{Project: item.project}
				}
			}
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handlePromptKey drives the name/secret prompt.
func (m ProjectPickerModel) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt = pickerPromptNone
		m.deleteID = ""
		m.deleteName = ""
		return m, nil
	case "enter":
		value := m.input.Value()
		prompt, deleteID := m.prompt, m.deleteID
		m.prompt = pickerPromptNone
		m.deleteID = ""
		m.deleteName = ""
		if value == "" {
			return m, nil
		}
		switch prompt {
		case pickerPromptName:
			return m, func() tea.Msg {
				return CreateProjectMsg{Name: value}
			}
		case pickerPromptSecret:
			return m, func() tea.Msg {
				return DeleteProjectMsg{ID: deleteID, Secret: value}
			}
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// View renders the model.
func (m ProjectPickerModel) View() string {
	view := m.list.View()

	if m.prompt != pickerPromptNone {
		view += "\n" + m.input.View()
	} else {
		view += "\n" + HelpStyle.Render("[n]new project  [x]delete project  [enter]open")
	}

	if m.err != nil {
		errorMsg := ErrorStyle.Render(fmt.Sprintf("\nError: %v", m.err))
		view += errorMsg
	}

	return view
}
