package service

import (
	"context"

	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/repository"
	apperrors "github.com/ticketflow/ticketflow/pkg/util"
)

// UserService exposes the user directory backing assignee pickers.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// List returns all users as summaries, sorted by name ascending.
func (s *UserService) List(ctx context.Context) ([]domain.UserSummary, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	summaries := make([]domain.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries, nil
}
