package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	// EventTicketAssigned fires when a create or update leaves one or
	// more users newly assigned to a ticket.
	EventTicketAssigned EventType = "ticket_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketAssignedPayload carries everything the notification side needs:
// the ids that were newly assigned and the ticket text the email quotes.
// On updates the text is the pre-update title and description.
type TicketAssignedPayload struct {
	AssigneeIDs []string `json:"assignee_ids"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	IsUpdate    bool     `json:"is_update"`
}
