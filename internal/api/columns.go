package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jvasco/tix/internal/domain"
)

// CreateColumn adds a board lane mapped to the given status key.
func (c *Client) CreateColumn(ctx context.Context, projectID, title string, statusKey domain.TicketStatus) (domain.Column, error) {
	payload := struct {
		ProjectID string `json:"project_id"`
		Title     string `json:"title"`
		StatusKey string `json:"statusKey"`
	}{ProjectID: projectID, Title: title, StatusKey: string(statusKey)}

	var dto columnDTO
	if err := c.do(ctx, http.MethodPost, "/columns", payload, &dto); err != nil {
		return domain.Column{}, fmt.Errorf("failed to create column: %w", err)
	}
	return toColumn(dto), nil
}

// UpdateColumn retitles a board lane.
func (c *Client) UpdateColumn(ctx context.Context, id, title string) (domain.Column, error) {
	payload := map[string]string{"title": title}

	var dto columnDTO
	if err := c.do(ctx, http.MethodPut, "/columns/"+url.PathEscape(id), payload, &dto); err != nil {
		return domain.Column{}, fmt.Errorf("failed to update column %s: %w", id, err)
	}
	return toColumn(dto), nil
}

// DeleteColumn removes a board lane. Tickets keyed to its status are NOT
// deleted; they disappear from the board but remain in backlog and
// timeline queries.
func (c *Client) DeleteColumn(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/columns/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete column %s: %w", id, err)
	}
	return nil
}
