package mailer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGrid delivers email through the SendGrid v3 API.
type SendGrid struct {
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
}

// NewSendGrid builds a SendGrid mailer. subjPrefix is prepended to every
// subject, e.g. "[LittleNest] ".
func NewSendGrid(apiKey, fromName, fromAddr, subjPrefix string) *SendGrid {
	return &SendGrid{
		client:     sendgrid.NewSendClient(apiKey),
		from:       sgmail.NewEmail(fromName, fromAddr),
		subjPrefix: subjPrefix,
	}
}

// Send delivers one message. Non-2xx API responses are returned as errors so
// callers can log and flag them.
func (s *SendGrid) Send(ctx context.Context, e Email) (string, error) {
	msg := sgmail.NewSingleEmail(s.from, s.subjPrefix+e.Subject, sgmail.NewEmail("", e.To), e.TextBody, e.HTMLBody)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}

	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return uuid.NewString(), nil
}
