package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/events"
	"github.com/ticketflow/ticketflow/internal/repository"
)

// AssignmentNotifier turns ticket_assigned events into emails. It lives
// in its own failure domain: a lost email never affects the mutation
// that triggered it, so every error path here ends in a log line.
type AssignmentNotifier struct {
	users  repository.UserRepository
	mailer Mailer
	logger *zap.Logger
}

// NewAssignmentNotifier creates the notifier.
func NewAssignmentNotifier(users repository.UserRepository, mailer Mailer, logger *zap.Logger) *AssignmentNotifier {
	return &AssignmentNotifier{users: users, mailer: mailer, logger: logger}
}

// Register subscribes the notifier to assignment events.
func (n *AssignmentNotifier) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
}

func (n *AssignmentNotifier) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		n.logger.Warn("unexpected assignment payload", zap.String("ticket_id", event.TicketID))
		return nil
	}

	emails, err := n.resolveEmails(ctx, payload.AssigneeIDs)
	if err != nil {
		n.logger.Error("resolve assignee emails failed",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
		return nil
	}
	if len(emails) == 0 {
		return nil
	}

	msg := AssignmentEmail(emails, payload.Title, payload.Description, payload.IsUpdate)
	if err := n.mailer.Send(ctx, msg); err != nil {
		// No retry queue: a failed send is lost.
		n.logger.Error("assignment email failed",
			zap.String("ticket_id", event.TicketID),
			zap.Int("recipients", len(emails)),
			zap.Error(err))
		return nil
	}

	n.logger.Info("assignment email sent",
		zap.String("ticket_id", event.TicketID),
		zap.Int("recipients", len(emails)))
	return nil
}

// resolveEmails maps assignee ids to addresses, dropping dangling ids.
func (n *AssignmentNotifier) resolveEmails(ctx context.Context, ids []string) ([]string, error) {
	users, err := n.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(users))
	for _, user := range users {
		emails = append(emails, user.Email)
	}
	return emails, nil
}

// AssignmentEmail builds the fixed-template assignment email. The
// subject distinguishes first assignment from reassignment-on-update.
func AssignmentEmail(to []string, title, description string, isUpdate bool) EmailMessage {
	action := "assigned"
	heading := "Assigned"
	if isUpdate {
		action = "updated and assigned"
		heading = "Updated and assigned"
	}

	html := fmt.Sprintf(`
      <h2>Support Ticket %s</h2>
      <p>You have been %s to the following support ticket:</p>

      <div style="border: 1px solid #ddd; padding: 16px; margin: 16px 0; border-radius: 4px;">
        <h3>%s</h3>
        <p><strong>Description:</strong></p>
        <p>%s</p>
      </div>

      <p>Please log in to the support system to view and manage this ticket.</p>
    `, heading, action, title, description)

	return EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("Ticket %s: %s", action, title),
		HTML:    html,
	}
}
