package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/events"
)

// stubUserRepo serves fixed users keyed by id.
type stubUserRepo struct {
	users map[string]domain.User
	err   error
}

func (s *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubUserRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	var result []domain.User
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			result = append(result, user)
		}
	}
	return result, nil
}

func (s *stubUserRepo) ListAll(ctx context.Context) ([]domain.User, error) {
	return nil, nil
}

// captureMailer records sent messages and can fail on demand.
type captureMailer struct {
	sent    []EmailMessage
	sendErr error
}

func (m *captureMailer) Send(ctx context.Context, msg EmailMessage) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func assignedEvent(payload events.TicketAssignedPayload) events.Event {
	return events.Event{
		ID:       "evt-1",
		Type:     events.EventTicketAssigned,
		TicketID: "ticket-1",
		Payload:  payload,
	}
}

func TestHandlerSendsOneMessageToAllRecipients(t *testing.T) {
	repo := &stubUserRepo{users: map[string]domain.User{
		"u1": {ID: "u1", Name: "Alice", Email: "alice@example.com"},
		"u2": {ID: "u2", Name: "Bob", Email: "bob@example.com"},
	}}
	mailer := &captureMailer{}
	notifier := NewAssignmentNotifier(repo, mailer, zap.NewNop())

	err := notifier.handleTicketAssigned(context.Background(), assignedEvent(events.TicketAssignedPayload{
		AssigneeIDs: []string{"u1", "u2"},
		Title:       "Login broken now",
		Description: "Users cannot authenticate due to timeout errors in prod",
	}))
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1, "recipients share a single message")
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "Ticket assigned: Login broken now")
	assert.Contains(t, mailer.sent[0].HTML, "Users cannot authenticate")
}

func TestHandlerSkipsDanglingAssignees(t *testing.T) {
	repo := &stubUserRepo{users: map[string]domain.User{
		"u1": {ID: "u1", Name: "Alice", Email: "alice@example.com"},
	}}
	mailer := &captureMailer{}
	notifier := NewAssignmentNotifier(repo, mailer, zap.NewNop())

	err := notifier.handleTicketAssigned(context.Background(), assignedEvent(events.TicketAssignedPayload{
		AssigneeIDs: []string{"u1", "deleted-user"},
		Title:       "Some valid title",
		Description: "A description long enough to matter",
	}))
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"alice@example.com"}, mailer.sent[0].To)
}

func TestHandlerDoesNothingWhenNoEmailsResolve(t *testing.T) {
	repo := &stubUserRepo{users: map[string]domain.User{}}
	mailer := &captureMailer{}
	notifier := NewAssignmentNotifier(repo, mailer, zap.NewNop())

	err := notifier.handleTicketAssigned(context.Background(), assignedEvent(events.TicketAssignedPayload{
		AssigneeIDs: []string{"ghost"},
		Title:       "Some valid title",
		Description: "A description long enough to matter",
	}))
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestHandlerSwallowsDeliveryFailure(t *testing.T) {
	repo := &stubUserRepo{users: map[string]domain.User{
		"u1": {ID: "u1", Name: "Alice", Email: "alice@example.com"},
	}}
	mailer := &captureMailer{sendErr: errors.New("relay unreachable")}
	notifier := NewAssignmentNotifier(repo, mailer, zap.NewNop())

	err := notifier.handleTicketAssigned(context.Background(), assignedEvent(events.TicketAssignedPayload{
		AssigneeIDs: []string{"u1"},
		Title:       "Some valid title",
		Description: "A description long enough to matter",
	}))
	assert.NoError(t, err, "delivery failure never propagates")
}

func TestHandlerSwallowsLookupFailure(t *testing.T) {
	repo := &stubUserRepo{err: errors.New("db down")}
	mailer := &captureMailer{}
	notifier := NewAssignmentNotifier(repo, mailer, zap.NewNop())

	err := notifier.handleTicketAssigned(context.Background(), assignedEvent(events.TicketAssignedPayload{
		AssigneeIDs: []string{"u1"},
		Title:       "Some valid title",
		Description: "A description long enough to matter",
	}))
	assert.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestAssignmentEmailTemplate(t *testing.T) {
	created := AssignmentEmail([]string{"a@example.com"}, "Broken build", "The nightly build fails on main", false)
	assert.Equal(t, "Ticket assigned: Broken build", created.Subject)
	assert.Contains(t, created.HTML, "You have been assigned")

	updated := AssignmentEmail([]string{"a@example.com"}, "Broken build", "The nightly build fails on main", true)
	assert.Equal(t, "Ticket updated and assigned: Broken build", updated.Subject)
	assert.Contains(t, updated.HTML, "updated and assigned")
}
