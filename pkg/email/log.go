package email

import (
	"context"
	"log/slog"
)

// LogSender logs emails instead of sending them.
// Useful for local development without an SMTP relay.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender creates a new log-based email sender.
func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogSender{log: log}
}

// Send logs the email details.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.InfoContext(ctx, "EMAIL (dev mode - not actually sent)",
		"from", msg.From.String(),
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
