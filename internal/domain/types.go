// Package domain defines the normalized domain types for the ticket tracker.
// These types represent the core concepts independent of the server's JSON API structure.
package domain

// TicketStatus is the workflow state of a ticket. Only the five declared
// values are valid; anything else is rejected at the edges.
type TicketStatus string

const (
	StatusBacklog    TicketStatus = "BACKLOG"
	StatusTodo       TicketStatus = "TODO"
	StatusInProgress TicketStatus = "IN_PROGRESS"
	StatusReview     TicketStatus = "REVIEW"
	StatusDone       TicketStatus = "DONE"
)

// AllStatuses lists every valid status in workflow order.
var AllStatuses = []TicketStatus{
	StatusBacklog,
	StatusTodo,
	StatusInProgress,
	StatusReview,
	StatusDone,
}

// BoardStatuses lists the statuses that appear on the board. BACKLOG is
// excluded: tickets in stasis live in the backlog view only.
var BoardStatuses = []TicketStatus{
	StatusTodo,
	StatusInProgress,
	StatusReview,
	StatusDone,
}

// Valid reports whether s is one of the five declared statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// Impact is the business-impact rating of a ticket. Unknown values are
// tolerated and rank at the lowest weight.
type Impact string

const (
	ImpactLow      Impact = "low"
	ImpactMedium   Impact = "medium"
	ImpactHigh     Impact = "high"
	ImpactCritical Impact = "critical"
)

// AllImpacts lists the impact levels from lowest to highest.
var AllImpacts = []Impact{ImpactLow, ImpactMedium, ImpactHigh, ImpactCritical}

// Ticket is the atomic unit of work. An empty ID marks a draft: a ticket
// that exists only inside an edit session and has never been confirmed by
// the server. Drafts must never be sent to the update endpoint.
type Ticket struct {
	ID            string       // Server-assigned ID; empty for drafts
	Title         string       // Short identifier shown everywhere
	Description   string       // Free text, markdown
	Status        TicketStatus // Workflow state
	Impact        Impact       // Drives backlog ranking
	Effort        int          // Cost estimate, always >= 0
	EpicID        string       // Soft reference; empty or dangling renders as unassigned
	Assignee      string       // Soft reference to a user; may be empty
	StartDate     string       // ISO date (YYYY-MM-DD), empty if unscheduled
	EndDate       string       // ISO date (YYYY-MM-DD), empty if open-ended
	AIInsights    string       // Opaque prose from the advice collaborator
	PRURL         string       // External link, may be empty
	PRDURL        string       // External link, may be empty
	Position      int          // Manual/insertion order, used as final tie-break
	Flagged       bool         // Important/urgent marker
	RequiresHuman bool         // Needs human intervention
}

// IsDraft reports whether the ticket has not yet been created server-side.
func (t Ticket) IsDraft() bool {
	return t.ID == ""
}

// DraftTitle is the default title for newly created drafts.
const DraftTitle = "UNIDENTIFIED UNIT"

// NewDraft returns a draft ticket with the standard defaults. The status
// defaults to BACKLOG when the given status is invalid.
func NewDraft(status TicketStatus, startDate, endDate string) Ticket {
	if !status.Valid() {
		status = StatusBacklog
	}
	return Ticket{
		Title:     DraftTitle,
		Status:    status,
		Impact:    ImpactLow,
		StartDate: startDate,
		EndDate:   endDate,
	}
}

// Epic is a non-exclusive grouping label for tickets within a project.
type Epic struct {
	ID       string
	Name     string
	Color    string // Display tag, hex color
	Position int    // Stable ordering within the project
}

// Column is a board lane bound to one status key. Multiple columns may map
// to the same status, and a status may have no column at all.
type Column struct {
	ID        string
	Title     string
	StatusKey TicketStatus
	Position  int
}

// Project owns its epics, columns and tickets. Projects are loaded shallow
// from the list endpoint and filled in by the details endpoint.
type Project struct {
	ID          string
	Name        string
	Description string
	Goal        string
	Epics       []Epic
	Columns     []Column
	Tickets     []Ticket
}

// EpicColors is the palette used for new epics, assigned round-robin.
var EpicColors = []string{"#06b6d4", "#10b981", "#8b5cf6", "#f43f5e", "#f59e0b", "#ec4899"}

// NextEpicColor picks the palette color for the n-th epic of a project.
func NextEpicColor(existing int) string {
	if existing < 0 {
		existing = 0
	}
	return EpicColors[existing%len(EpicColors)]
}
