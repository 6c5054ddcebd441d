package domain

import "time"

// UserRole enumerates account roles.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleDeveloper UserRole = "developer"
)

// DefaultRole is applied when signup omits a role.
const DefaultRole = RoleDeveloper

// ValidRole reports whether the value is a known role.
func ValidRole(r UserRole) bool {
	return r == RoleAdmin || r == RoleDeveloper
}

// User is the domain model for accounts that log in and get assigned tickets.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is the safe projection of a user exposed in API responses
// and on resolved ticket assignees. Never carries the password hash.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary projects the user to its public form.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
