package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jvasco/tix/internal/domain"
	"github.com/jvasco/tix/internal/persist"
	"github.com/jvasco/tix/internal/session"
	"github.com/jvasco/tix/internal/store"
	"github.com/jvasco/tix/internal/workflow"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLoading AppScreen = iota
	ScreenProjectPicker
	ScreenWorkspace
	ScreenEditor
)

// AppModel is the root Bubble Tea model that manages screen transitions.
// It orchestrates the flow from project selection to the workspace, and
// routes auto-persist results back into the session.
type AppModel struct {
	// Dependencies
	client     Client
	store      *store.Store
	session    *session.Session
	flow       *workflow.Manager
	consultant Consultant
	results    <-chan persist.Result
	ctx        context.Context

	// CLI flags (pre-filled values)
	projectFlag string

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	err           error
	loadingMsg    string

	// Cached models to preserve state across screen transitions
	workspaceModel *WorkspaceModel
}

// NewAppModel creates a new app model. projectFlag pre-selects a project
// by ID or name and skips the picker; pass empty to show it.
func NewAppModel(client Client, st *store.Store, sess *session.Session, flow *workflow.Manager, consultant Consultant, results <-chan persist.Result, ctx context.Context, projectFlag string) AppModel {
	return AppModel{
		client:        client,
		store:         st,
		session:       sess,
		flow:          flow,
		consultant:    consultant,
		results:       results,
		ctx:           ctx,
		projectFlag:   projectFlag,
		currentScreen: ScreenLoading,
		loadingMsg:    "Connecting to tracker...",
	}
}

// Init initializes the app model.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.listProjects(), m.waitForSave())
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" && m.currentScreen != ScreenWorkspace {
			return m, tea.Quit
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case SaveResultMsg:
		// Reconcile the canonical server copy, surface failures in the
		// active screen, and re-arm the listener.
		if msg.Result.Err == nil {
			m.session.ApplyServerTicket(m.store.ActiveProjectID(), msg.Result.Ticket)
		}
		var cmd tea.Cmd
		if m.currentModel != nil {
			m.currentModel, cmd = m.currentModel.Update(msg)
			m.syncWorkspace()
		}
		return m, tea.Batch(cmd, m.waitForSave())

	case projectsLoadedMsg:
		m.store.SetProjects(msg.projects)

		// If the project flag matches, skip the picker.
		if m.projectFlag != "" {
			for _, p := range msg.projects {
				if p.ID == m.projectFlag || strings.EqualFold(p.Name, m.projectFlag) {
					m.loadingMsg = fmt.Sprintf("Loading %s...", p.Name)
					return m, m.loadProject(p.ID)
				}
			}
			m.err = fmt.Errorf("project %q not found", m.projectFlag)
			return m, nil
		}

		m.currentScreen = ScreenProjectPicker
		pickerModel := NewProjectPickerModel(msg.projects)
		m.currentModel = pickerModel
		return m, pickerModel.Init()

	case CreateProjectMsg:
		return m, m.createProject(msg.Name)

	case DeleteProjectMsg:
		return m, m.deleteProject(msg.ID, msg.Secret)

	case projectMutatedMsg:
		if msg.err != nil {
			// Keep the picker up; surface the failure inside it.
			if m.currentModel != nil {
				m.currentModel, _ = m.currentModel.Update(ErrorMsg{Err: msg.err})
			}
			return m, nil
		}
		return m, m.listProjects()

	case ProjectSelectedMsg:
		m.loadingMsg = fmt.Sprintf("Loading %s...", msg.Project.Name)
		m.currentModel = nil
		return m, m.loadProject(msg.Project.ID)

	case projectLoadedMsg:
		m.store.SetActiveProject(msg.project.ID)
		if err := m.store.ReplaceProject(msg.project.ID, msg.project); err != nil {
			m.store.AddProject(msg.project)
		}
		m.currentScreen = ScreenWorkspace
		workspace := NewWorkspaceModel(m.store, m.client, m.flow, m.consultant, m.ctx)
		m.workspaceModel = &workspace
		m.currentModel = m.workspaceModel
		return m, workspace.Init()

	case openEditorMsg:
		m.currentScreen = ScreenEditor
		projectID := m.store.ActiveProjectID()
		m.session.Open(m.ctx, projectID, msg.ticket)
		var epics []domain.Epic
		if project, err := m.store.GetProject(projectID); err == nil {
			epics = project.Epics
		}
		editorModel := NewEditorModel(m.session, m.consultant, epics, m.ctx)
		m.currentModel = editorModel
		return m, editorModel.Init()

	case closeEditorMsg:
		// Return to the workspace; the session was already closed.
		m.currentScreen = ScreenWorkspace
		m.currentModel = m.workspaceModel
		return m, tea.Batch(tea.WindowSize(), func() tea.Msg { return workspaceInitMsg{} })
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		m.syncWorkspace()
		return m, cmd
	}

	return m, nil
}

// syncWorkspace keeps the cached workspace model current when it is the
// active screen.
func (m *AppModel) syncWorkspace() {
	if m.currentScreen == ScreenWorkspace {
		if wm, ok := m.currentModel.(WorkspaceModel); ok {
			m.workspaceModel = &wm
		}
	}
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err))
	}

	if m.currentModel != nil {
		return m.currentModel.View()
	}

	return m.loadingMsg + "\n\nPress Ctrl+C to quit"
}

// listProjects creates a command to fetch all projects.
func (m AppModel) listProjects() tea.Cmd {
	return func() tea.Msg {
		projects, err := m.client.ListProjects(m.ctx)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to list projects: %w", err)}
		}
		if len(projects) == 0 {
			return ErrorMsg{Err: fmt.Errorf("no projects found on the server")}
		}
		return projectsLoadedMsg{projects: projects}
	}
}

// createProject creates a project and triggers a fresh listing.
func (m AppModel) createProject(name string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.client.CreateProject(m.ctx, name)
		return projectMutatedMsg{err: err}
	}
}

// deleteProject deletes a project behind its secret and relists.
func (m AppModel) deleteProject(id, secret string) tea.Cmd {
	return func() tea.Msg {
		return projectMutatedMsg{err: m.client.DeleteProject(m.ctx, id, secret)}
	}
}

// loadProject creates a command to fetch a project's full details.
func (m AppModel) loadProject(id string) tea.Cmd {
	return func() tea.Msg {
		project, err := m.client.GetProjectDetails(m.ctx, id)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to load project: %w", err)}
		}
		return projectLoadedMsg{project: project}
	}
}

// waitForSave blocks on the scheduler's result channel and re-arms after
// every delivery.
func (m AppModel) waitForSave() tea.Cmd {
	if m.results == nil {
		return nil
	}
	return func() tea.Msg {
		res, ok := <-m.results
		if !ok {
			return nil
		}
		return SaveResultMsg{Result: res}
	}
}

// Custom messages for app transitions.
type (
	projectsLoadedMsg struct {
		projects []domain.Project
	}

	projectLoadedMsg struct {
		project domain.Project
	}

	projectMutatedMsg struct {
		err error
	}
)
