package notify

import (
	"context"

	"github.com/wneessen/go-mail"

	"github.com/ticketflow/ticketflow/internal/config"
)

// EmailMessage is a single outbound email. Recipients share one message;
// assignment notifications are never fanned out per recipient.
type EmailMessage struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers email. Implementations make exactly one attempt.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer builds the mailer. The client timeout bounds both dial
// and send, so a slow relay cannot hold a request open indefinitely.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout()),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// Send delivers the message in a single attempt.
func (m *SMTPMailer) Send(ctx context.Context, msg EmailMessage) error {
	message := mail.NewMsg()
	if err := message.From(m.from); err != nil {
		return err
	}
	if err := message.To(msg.To...); err != nil {
		return err
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextHTML, msg.HTML)

	return m.client.DialAndSendWithContext(ctx, message)
}
