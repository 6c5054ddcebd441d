package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ticketflow/ticketflow/internal/auth"
	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/repository"
	"github.com/ticketflow/ticketflow/internal/validation"
	apperrors "github.com/ticketflow/ticketflow/pkg/util"
)

const uniqueViolation = "23505"

// AuthService coordinates signup and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		bcryptCost: cfg.BcryptCost,
	}
}

// SignupInput describes the signup payload. Role is optional.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.UserRole
}

// Validate applies the signup schema.
func (in SignupInput) Validate() error {
	report := validation.NewReport()
	report.Name(in.Name)
	report.Email(in.Email)
	report.Password(in.Password)
	if in.Role != "" {
		report.Role(in.Role)
	}
	return report.Err()
}

// Signup creates a new account. Duplicate emails (case-insensitive)
// fail with a conflict regardless of the rest of the payload.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("user already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	role := input.Role
	if role == "" {
		role = domain.DefaultRole
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique index still wins a lost race with another signup.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperrors.NewConflict("user already exists", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates a user. Unknown emails and wrong passwords fail
// with the same error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	report := validation.NewReport()
	report.Email(email)
	report.Password(password)
	if err := report.Err(); err != nil {
		return nil, "", time.Time{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for gate wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
