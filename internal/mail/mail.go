package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// Message is a single outgoing email.
type Message struct {
	ToName      string
	ToAddress   string
	Subject     string
	TextContent string
	HTMLContent string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them. Used when
// no mail provider is configured.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info().
		Str("to", msg.ToAddress).
		Str("subject", msg.Subject).
		Str("body", msg.TextContent).
		Msg("email not delivered: no mail provider configured")
	return nil
}
