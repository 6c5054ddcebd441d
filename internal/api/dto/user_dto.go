package dto

import "github.com/ticketflow/ticketflow/internal/domain"

// SignupRequest payload for new accounts. Role is optional and
// defaults to developer.
type SignupRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     domain.UserRole `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthUser is the identity returned by auth endpoints.
type AuthUser struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

// LoginResponse returns the bearer token alongside the identity.
type LoginResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// SignupResponse returns the created identity.
type SignupResponse struct {
	User AuthUser `json:"user"`
}
