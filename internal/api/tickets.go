package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jvasco/tix/internal/domain"
)

// CreateTicket creates a ticket in the given project and returns the
// canonical record with the server-assigned ID. This is the only endpoint
// a draft ticket may be sent to.
func (c *Client) CreateTicket(ctx context.Context, projectID string, t domain.Ticket) (domain.Ticket, error) {
	var dto ticketDTO
	if err := c.do(ctx, http.MethodPost, "/tickets", toTicketPayload(projectID, t), &dto); err != nil {
		return domain.Ticket{}, fmt.Errorf("failed to create ticket: %w", err)
	}
	return toTicket(dto), nil
}

// UpdateTicket persists the full field set of an existing ticket. Drafts
// are rejected: an empty ID must never reach the update endpoint.
func (c *Client) UpdateTicket(ctx context.Context, t domain.Ticket) (domain.Ticket, error) {
	if t.IsDraft() {
		return domain.Ticket{}, ErrDraftTicket
	}

	var dto ticketDTO
	path := "/tickets/" + url.PathEscape(t.ID)
	if err := c.do(ctx, http.MethodPut, path, toTicketPayload("", t), &dto); err != nil {
		return domain.Ticket{}, fmt.Errorf("failed to update ticket %s: %w", t.ID, err)
	}
	return toTicket(dto), nil
}

// UpdateTicketStatus changes only the workflow status of a ticket. Used by
// board drops and the explicit board/stasis moves.
func (c *Client) UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus) (domain.Ticket, error) {
	if id == "" {
		return domain.Ticket{}, ErrDraftTicket
	}

	payload := map[string]string{"status": string(status)}
	var dto ticketDTO
	path := "/tickets/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, payload, &dto); err != nil {
		return domain.Ticket{}, fmt.Errorf("failed to update status of ticket %s: %w", id, err)
	}
	return toTicket(dto), nil
}

// DeleteTicket removes a ticket permanently.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/tickets/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete ticket %s: %w", id, err)
	}
	return nil
}
