package notify

import (
	"context"
	"fmt"
	"time"

	appfulfillment "github.com/shopdesk/backend/internal/application/fulfillment"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/wneessen/go-mail"
)

type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailSink sends notifications over SMTP
type EmailSink struct {
	client mailSender
	from   string
}

// NewEmailSink creates an SMTP client from cfg
func NewEmailSink(cfg config.EmailConfig) (*EmailSink, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(10 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return newEmailSink(client, cfg.From), nil
}

func newEmailSink(client mailSender, from string) *EmailSink {
	return &EmailSink{client: client, from: from}
}

// Name returns "email"
func (s *EmailSink) Name() string { return "email" }

// Send mails the notification. Customers without an email address are skipped.
func (s *EmailSink) Send(ctx context.Context, n appfulfillment.Notification) error {
	if n.Recipient.Email == "" {
		return nil
	}
	msg, err := s.message(n)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", n.Recipient.Email, err)
	}
	return nil
}

func (s *EmailSink) message(n appfulfillment.Notification) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.AddToFormat(n.Recipient.Name, n.Recipient.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(n.Subject)
	msg.SetBodyString(mail.TypeTextPlain, n.Body)
	return msg, nil
}

var _ appfulfillment.NotificationSink = (*EmailSink)(nil)
