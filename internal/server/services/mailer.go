package services

import (
	"context"

	"github.com/dmitrijs2005/noxus/internal/logging"
)

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes messages to the log instead of delivering them. It is
// the development mailer; recovery links are read from the server log.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info(ctx, "outgoing email", "to", to, "subject", subject, "body", body)
	return nil
}
