package outreach

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/justjjosh/Hermes-backend/pkg/resend"
)

// Mailer delivers a single HTML email. Implementations must be safe for
// concurrent use; the batch pipeline sends from multiple goroutines.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, replyTo string) error
}

// ResendMailer delivers email through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer creates a mailer that sends from the given verified
// sender address.
func NewResendMailer(client *resend.Client, from string) *ResendMailer {
	return &ResendMailer{client: client, from: from}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, htmlBody, replyTo string) error {
	req := resend.EmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	}
	if replyTo != "" {
		req.ReplyTo = []string{replyTo}
	}

	if _, err := m.client.SendEmail(ctx, req); err != nil {
		return eris.Wrapf(err, "outreach: send email to %s", to)
	}
	return nil
}
