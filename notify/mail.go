// Package notify delivers outbound notifications: transactional email through
// Resend and row mirroring into Google Sheets. Both sit behind small
// interfaces so handlers can treat them as best-effort collaborators.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ErrNotConfigured is returned by constructors when credentials are missing.
var ErrNotConfigured = errors.New("notify: not configured")

// Message is a single outbound email.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ResendMailer sends mail through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer returns a mailer for apiKey sending as from.
func NewResendMailer(apiKey, from string) (*ResendMailer, error) {
	if apiKey == "" || from == "" {
		return nil, ErrNotConfigured
	}
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}, nil
}

// Send delivers msg.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("notify: %q has no recipients", msg.Subject)
	}
	req := &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if _, err := m.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("notify: send %q: %w", msg.Subject, err)
	}
	return nil
}
