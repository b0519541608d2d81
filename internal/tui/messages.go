// Package tui provides Bubble Tea models for the interactive TUI.
package tui

import (
	"github.com/jvasco/tix/internal/domain"
	"github.com/jvasco/tix/internal/persist"
)

// ProjectSelectedMsg is emitted when the user selects a project.
type ProjectSelectedMsg struct {
	Project domain.Project
}

// CreateProjectMsg asks for a new project with the typed name.
type CreateProjectMsg struct {
	Name string
}

// DeleteProjectMsg asks for a secret-gated project deletion.
type DeleteProjectMsg struct {
	ID     string
	Secret string
}

// SaveResultMsg wraps the outcome of one auto-persist attempt.
type SaveResultMsg struct {
	Result persist.Result
}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}
