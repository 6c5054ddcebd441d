package dto

import (
	"time"

	"github.com/ticketflow/ticketflow/internal/domain"
)

// CreateTicketRequest payload. Status, priority and assignees are
// optional; the schema applies defaults.
type CreateTicketRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	Priority    *int                `json:"priority"`
	Assignees   []string            `json:"assignees"`
}

// UpdateTicketRequest is a partial update; absent fields stay untouched.
type UpdateTicketRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.TicketStatus `json:"status"`
	Priority    *int                 `json:"priority"`
	Assignees   *[]string            `json:"assignees"`
}

// TicketResponse carries a ticket with resolved assignee summaries.
type TicketResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      domain.TicketStatus  `json:"status"`
	Priority    int                  `json:"priority"`
	Assignees   []domain.UserSummary `json:"assignees"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// TicketListResponse is one page of tickets plus pagination metadata.
type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
	HasMore bool             `json:"hasMore"`
	Total   int              `json:"total"`
}

// DeleteTicketResponse acknowledges a deletion.
type DeleteTicketResponse struct {
	Success bool `json:"success"`
}
