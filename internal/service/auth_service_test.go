package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/pkg/util"
)

// mockUserRepo is an in-memory UserRepository.
type mockUserRepo struct {
	users     map[string]*domain.User // id -> user
	createErr error
	nextID    int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*domain.User{}}
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == strings.ToLower(email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	var result []domain.User
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (m *mockUserRepo) ListAll(ctx context.Context) ([]domain.User, error) {
	var result []domain.User
	for _, user := range m.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func newTestAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
		BcryptCost:    bcrypt.MinCost,
	}, repo)
}

func domainErr(t *testing.T, err error) *util.DomainError {
	t.Helper()
	require.Error(t, err)
	var de *util.DomainError
	require.ErrorAs(t, err, &de)
	return de
}

func TestSignupThenLoginSucceeds(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{
		Name:     "Jamie Dev",
		Email:    "Jamie@Example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "jamie@example.com", user.Email, "email stored lowercased")
	assert.Equal(t, domain.RoleDeveloper, user.Role, "role defaults to developer")

	loggedIn, token, exp, err := svc.Login(ctx, "jamie@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Name: "First", Email: "dev@example.com", Password: "secret1"})
	require.NoError(t, err)

	// Different password, role and case still conflict.
	_, err = svc.Signup(ctx, SignupInput{
		Name:     "Second",
		Email:    "Dev@Example.COM",
		Password: "other-password",
		Role:     domain.RoleAdmin,
	})
	de := domainErr(t, err)
	assert.Equal(t, "CONFLICT", de.Code)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Name: "Jamie", Email: "dev@example.com", Password: "correct-pw"})
	require.NoError(t, err)

	_, _, _, errUnknown := svc.Login(ctx, "nobody@example.com", "whatever1")
	_, _, _, errWrongPw := svc.Login(ctx, "dev@example.com", "wrong-password")

	deUnknown := domainErr(t, errUnknown)
	deWrongPw := domainErr(t, errWrongPw)
	assert.Equal(t, "UNAUTHORIZED", deUnknown.Code)
	assert.Equal(t, deUnknown.Code, deWrongPw.Code)
	assert.Equal(t, deUnknown.Message, deWrongPw.Message)
}

func TestSignupValidationReportsFields(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Signup(context.Background(), SignupInput{
		Name:     "x",
		Email:    "not-an-email",
		Password: "123",
		Role:     domain.UserRole("superuser"),
	})
	de := domainErr(t, err)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Contains(t, de.Details, "name")
	assert.Contains(t, de.Details, "email")
	assert.Contains(t, de.Details, "password")
	assert.Contains(t, de.Details, "role")
	assert.Empty(t, repo.users, "validation failures never reach the store")
}

func TestLoginValidatesBeforeLookup(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestAuthService(repo)

	_, _, _, err := svc.Login(context.Background(), "bad", "12")
	de := domainErr(t, err)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
}
