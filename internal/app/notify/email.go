// internal/app/notify/email.go
package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v3"
)

// EmailSender delivers over the Resend transactional email API.
type EmailSender struct {
	client *resend.Client
	from   string
}

// NewEmailSender builds the EMAIL channel sender. An empty API key
// leaves the channel disabled.
func NewEmailSender(apiKey, from string) *EmailSender {
	s := &EmailSender{from: from}
	if apiKey != "" {
		s.client = resend.NewClient(apiKey)
	}
	return s
}

func (s *EmailSender) Enabled() bool {
	return s.client != nil && s.from != ""
}

func (s *EmailSender) Send(ctx context.Context, to, title, message string) error {
	if !s.Enabled() {
		return fmt.Errorf("email: %w", errChannelDisabled)
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: title,
		Html: fmt.Sprintf("<h2>%s</h2><p>%s</p>",
			html.EscapeString(title), html.EscapeString(message)),
	}
	if _, err := s.client.Emails.Send(params); err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	return nil
}
