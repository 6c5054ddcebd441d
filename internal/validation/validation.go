// Package validation holds the field constraints shared by every request
// schema. Each rule appends to a Report; a non-empty report renders as a
// single validation error with per-field messages, so clients always see
// everything wrong with a payload at once.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/pkg/util"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	NameMinLen     = 2
	PasswordMinLen = 6
)

// Report accumulates per-field validation failures.
type Report struct {
	fields map[string]any
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{fields: map[string]any{}}
}

// Add records a failure for a field. Only the first message per field is
// kept; later rules for the same field are noise once one has failed.
func (r *Report) Add(field, message string) {
	if _, exists := r.fields[field]; !exists {
		r.fields[field] = message
	}
}

// Empty reports whether all rules passed.
func (r *Report) Empty() bool {
	return len(r.fields) == 0
}

// Err returns nil when the report is empty, otherwise a validation error
// carrying the field map.
func (r *Report) Err() error {
	if r.Empty() {
		return nil
	}
	return util.NewValidationError("validation failed", r.fields)
}

// Name requires a trimmed name of at least NameMinLen characters.
func (r *Report) Name(name string) {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < NameMinLen {
		r.Add("name", fmt.Sprintf("Name must be at least %d characters", NameMinLen))
	}
}

// Email requires a plausible address.
func (r *Report) Email(email string) {
	if !emailPattern.MatchString(email) {
		r.Add("email", "Invalid email address")
	}
}

// Password requires a minimum length.
func (r *Report) Password(password string) {
	if utf8.RuneCountInString(password) < PasswordMinLen {
		r.Add("password", fmt.Sprintf("Password must be at least %d characters", PasswordMinLen))
	}
}

// Role requires membership in the role enum.
func (r *Report) Role(role domain.UserRole) {
	if !domain.ValidRole(role) {
		r.Add("role", "Role must be admin or developer")
	}
}

// TicketTitle enforces the title length bounds.
func (r *Report) TicketTitle(title string) {
	n := utf8.RuneCountInString(title)
	if n < domain.TitleMinLen {
		r.Add("title", fmt.Sprintf("Title must be at least %d characters", domain.TitleMinLen))
		return
	}
	if n > domain.TitleMaxLen {
		r.Add("title", fmt.Sprintf("Title must be less than %d characters", domain.TitleMaxLen))
	}
}

// TicketDescription enforces the minimum description length.
func (r *Report) TicketDescription(description string) {
	if utf8.RuneCountInString(description) < domain.DescriptionMinLen {
		r.Add("description", fmt.Sprintf("Description must be at least %d characters", domain.DescriptionMinLen))
	}
}

// TicketStatus requires membership in the status enum.
func (r *Report) TicketStatus(status domain.TicketStatus) {
	if !domain.ValidStatus(status) {
		r.Add("status", "Status must be open, in_progress or closed")
	}
}

// TicketPriority enforces the priority range.
func (r *Report) TicketPriority(priority int) {
	if priority < domain.PriorityMin || priority > domain.PriorityMax {
		r.Add("priority", fmt.Sprintf("Priority must be between %d and %d", domain.PriorityMin, domain.PriorityMax))
	}
}
