package mailer

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"devis/internal/notification"
)

// LogTransport only logs messages. It is used when no SMTP host is set.
type LogTransport struct {
	logger *zap.Logger
}

func NewLogTransport(logger *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Deliver(ctx context.Context, m notification.Message) (string, error) {
	id := "<" + uuid.New().String() + "@devis.local>"

	names := make([]string, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		names = append(names, a.Filename)
	}

	t.logger.Info("mail not sent, no smtp host configured",
		zap.String("messageId", id),
		zap.String("from", m.From),
		zap.Strings("to", m.To),
		zap.Strings("cc", m.Cc),
		zap.String("subject", m.Subject),
		zap.Strings("attachments", names),
		zap.Int("bodyBytes", len(m.Body)),
	)

	return id, nil
}
