// Package mailer is the transactional-email gateway.
//
// Mailer is an injected dependency so workflows can substitute a fake; send
// failures are the caller's to log and surface as a boolean, never a reason
// to fail the surrounding workflow.
package mailer

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Email is one transactional message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers one email and returns the provider's message ID.
type Mailer interface {
	Send(ctx context.Context, e Email) (messageID string, err error)
}

// Console is the dev/test backend: it logs the message instead of sending it
// and remembers what was "sent".
type Console struct {
	Log  *zap.Logger
	sent []Email
}

// NewConsole builds a console mailer.
func NewConsole(log *zap.Logger) *Console {
	return &Console{Log: log}
}

// Send logs the email and records it.
func (c *Console) Send(_ context.Context, e Email) (string, error) {
	id := uuid.NewString()
	c.Log.Info("console mailer: email not sent",
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("message_id", id),
	)
	c.sent = append(c.sent, e)
	return id, nil
}

// Sent returns the messages recorded so far.
func (c *Console) Sent() []Email { return c.sent }
