// Package api provides an HTTP/JSON client for the ticket tracker server.
// It implements a deep module interface - simple CRUD methods hiding the
// request plumbing, wire DTOs and error mapping.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound indicates the referenced resource vanished server-side.
// Callers treat this as a soft miss, not a crash.
var ErrNotFound = errors.New("resource not found")

// ErrDraftTicket indicates a draft (no server ID) was passed to an
// endpoint that requires a persisted ticket.
var ErrDraftTicket = errors.New("draft ticket has no server id")

// Error is a non-2xx response from the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err represents a missing resource.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the tracker server's REST API. Every mutating call
// returns the canonical server-assigned record; the client never
// synthesizes permanent IDs itself.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given server base URL (e.g.
// "http://localhost:3333"). The "/api" prefix is appended here.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do executes a JSON request and decodes the response into out (if non-nil).
// Non-2xx responses are mapped to *Error, with 404 also matching ErrNotFound.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
		}
		return apiErr
	}

	// 204 No Content is common for DELETE
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
