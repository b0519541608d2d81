package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jvasco/tix/internal/domain"
)

// ListProjects returns all projects, shallow: epics, tickets and columns
// are loaded separately via GetProjectDetails.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var dtos []projectDTO
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]domain.Project, 0, len(dtos))
	for _, d := range dtos {
		projects = append(projects, toProject(d))
	}
	return projects, nil
}

// GetProjectDetails fetches a project together with its epics, tickets and
// columns in a single round trip and assembles them into one Project value.
func (c *Client) GetProjectDetails(ctx context.Context, id string) (domain.Project, error) {
	var resp struct {
		Project projectDTO  `json:"project"`
		Epics   []epicDTO   `json:"epics"`
		Tickets []ticketDTO `json:"tickets"`
		Columns []columnDTO `json:"columns"`
	}
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id)+"/details", nil, &resp); err != nil {
		return domain.Project{}, fmt.Errorf("failed to load project %s: %w", id, err)
	}

	project := toProject(resp.Project)
	project.Epics = make([]domain.Epic, 0, len(resp.Epics))
	for _, e := range resp.Epics {
		project.Epics = append(project.Epics, toEpic(e))
	}
	project.Tickets = make([]domain.Ticket, 0, len(resp.Tickets))
	for _, t := range resp.Tickets {
		project.Tickets = append(project.Tickets, toTicket(t))
	}
	project.Columns = make([]domain.Column, 0, len(resp.Columns))
	for _, col := range resp.Columns {
		project.Columns = append(project.Columns, toColumn(col))
	}
	return project, nil
}

// CreateProject creates a new project and returns the canonical record.
func (c *Client) CreateProject(ctx context.Context, name string) (domain.Project, error) {
	payload := map[string]string{"name": name}
	var dto projectDTO
	if err := c.do(ctx, http.MethodPost, "/projects", payload, &dto); err != nil {
		return domain.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return toProject(dto), nil
}

// UpdateProject updates a project's name, description and goal and returns
// the canonical record.
func (c *Client) UpdateProject(ctx context.Context, id, name, description, goal string) (domain.Project, error) {
	payload := struct {
		Name        string `json:"name,omitempty"`
		Description string `json:"description,omitempty"`
		Goal        string `json:"goal,omitempty"`
	}{Name: name, Description: description, Goal: goal}

	var dto projectDTO
	if err := c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), payload, &dto); err != nil {
		return domain.Project{}, fmt.Errorf("failed to update project %s: %w", id, err)
	}
	return toProject(dto), nil
}

// DeleteProject deletes a project. Deletion is secret-gated server-side and
// cascades to the project's epics, tickets and columns.
func (c *Client) DeleteProject(ctx context.Context, id, secret string) error {
	path := "/projects/" + url.PathEscape(id) + "?secret=" + url.QueryEscape(secret)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	return nil
}
