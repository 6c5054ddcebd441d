package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// ValidStatus reports whether the value is a known status.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// Title and priority bounds enforced by the ticket schema.
const (
	TitleMinLen       = 5
	TitleMaxLen       = 80
	DescriptionMinLen = 20
	PriorityMin       = 1
	PriorityMax       = 5
)

// Ticket is the aggregate for support requests. AssigneeIDs are weak
// references to users; a deleted user is not cascaded, so resolution
// tolerates dangling ids.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	Priority    int
	AssigneeIDs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
