package api

import (
	"github.com/jvasco/tix/internal/domain"
)

// Wire DTOs. Responses are camelCase; mutation payloads use the server's
// snake_case identifiers for foreign keys and dates.

type projectDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Goal        string `json:"goal,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type epicDTO struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Position  int    `json:"position"`
}

type columnDTO struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	StatusKey string `json:"statusKey"`
	Position  int    `json:"position"`
}

type ticketDTO struct {
	ID            string `json:"id"`
	ProjectID     string `json:"projectId"`
	EpicID        string `json:"epicId,omitempty"`
	AssigneeID    string `json:"assigneeId,omitempty"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
	Impact        string `json:"impact"`
	Effort        int    `json:"effort"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	AIInsights    string `json:"aiInsights,omitempty"`
	PRURL         string `json:"prUrl,omitempty"`
	PRDURL        string `json:"prdUrl,omitempty"`
	Position      int    `json:"position"`
	Flagged       bool   `json:"flagged"`
	RequiresHuman bool   `json:"requiresHuman"`
}

type ticketPayload struct {
	ProjectID     string `json:"project_id,omitempty"`
	EpicID        string `json:"epic_id,omitempty"`
	AssigneeID    string `json:"assignee_id,omitempty"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	Impact        string `json:"impact"`
	Effort        int    `json:"effort"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	Flagged       bool   `json:"flagged"`
	RequiresHuman bool   `json:"requiresHuman"`
}

func toProject(d projectDTO) domain.Project {
	return domain.Project{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Goal:        d.Goal,
	}
}

func toEpic(d epicDTO) domain.Epic {
	return domain.Epic{
		ID:       d.ID,
		Name:     d.Name,
		Color:    d.Color,
		Position: d.Position,
	}
}

func toColumn(d columnDTO) domain.Column {
	return domain.Column{
		ID:        d.ID,
		Title:     d.Title,
		StatusKey: domain.TicketStatus(d.StatusKey),
		Position:  d.Position,
	}
}

func toTicket(d ticketDTO) domain.Ticket {
	return domain.Ticket{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		Status:        domain.TicketStatus(d.Status),
		Impact:        domain.Impact(d.Impact),
		Effort:        d.Effort,
		EpicID:        d.EpicID,
		Assignee:      d.AssigneeID,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		AIInsights:    d.AIInsights,
		PRURL:         d.PRURL,
		PRDURL:        d.PRDURL,
		Position:      d.Position,
		Flagged:       d.Flagged,
		RequiresHuman: d.RequiresHuman,
	}
}

func toTicketPayload(projectID string, t domain.Ticket) ticketPayload {
	return ticketPayload{
		ProjectID:     projectID,
		EpicID:        t.EpicID,
		AssigneeID:    t.Assignee,
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		Impact:        string(t.Impact),
		Effort:        t.Effort,
		StartDate:     t.StartDate,
		EndDate:       t.EndDate,
		Flagged:       t.Flagged,
		RequiresHuman: t.RequiresHuman,
	}
}
