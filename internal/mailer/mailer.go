// Package mailer sends notification emails over SMTP
package mailer

import (
	"context"
	"fmt"

	"github.com/madaure/backend/internal/events"
	"gopkg.in/mail.v2"
)

// Dialer is the subset of *mail.Dialer used by Sender
type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// Sender sends emails using gopkg.in/mail.v2
type Sender struct {
	dialer Dialer
	from   string
}

// NewSender creates a new SMTP sender
func NewSender(host string, port int, username, password, from string) *Sender {
	return &Sender{
		dialer: mail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// NewSenderWithDialer creates a sender on top of a custom dialer
func NewSenderWithDialer(dialer Dialer, from string) *Sender {
	return &Sender{dialer: dialer, from: from}
}

// Send builds and sends one HTML email
func (s *Sender) Send(ctx context.Context, email events.EmailPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", email.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
