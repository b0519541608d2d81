package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jvasco/tix/internal/domain"
)

// CreateEpic creates an epic within a project and returns the canonical record.
func (c *Client) CreateEpic(ctx context.Context, projectID, name, color string) (domain.Epic, error) {
	payload := struct {
		ProjectID string `json:"project_id"`
		Name      string `json:"name"`
		Color     string `json:"color,omitempty"`
	}{ProjectID: projectID, Name: name, Color: color}

	var dto epicDTO
	if err := c.do(ctx, http.MethodPost, "/epics", payload, &dto); err != nil {
		return domain.Epic{}, fmt.Errorf("failed to create epic: %w", err)
	}
	return toEpic(dto), nil
}

// UpdateEpic renames or recolors an epic.
func (c *Client) UpdateEpic(ctx context.Context, id, name, color string) (domain.Epic, error) {
	payload := struct {
		Name  string `json:"name,omitempty"`
		Color string `json:"color,omitempty"`
	}{Name: name, Color: color}

	var dto epicDTO
	if err := c.do(ctx, http.MethodPut, "/epics/"+url.PathEscape(id), payload, &dto); err != nil {
		return domain.Epic{}, fmt.Errorf("failed to update epic %s: %w", id, err)
	}
	return toEpic(dto), nil
}

// DeleteEpic removes an epic. Tickets referencing it keep their EpicID;
// the dangling reference degrades to "unassigned" at read time.
func (c *Client) DeleteEpic(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/epics/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete epic %s: %w", id, err)
	}
	return nil
}
