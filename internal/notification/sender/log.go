package sender

import (
	"context"

	"github.com/Falloukarim/colis-sn-sub000/internal/notification/domain"
	"go.uber.org/zap"
)

// LogSender writes messages to the log and reports them delivered. It backs
// NOTIFICATION_MODE=mock.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.Named("notification.sender.mock")}
}

func (s *LogSender) Send(ctx context.Context, channel domain.Channel, destination, message string) (bool, error) {
	s.log.Info("notification",
		zap.String("channel", string(channel)),
		zap.String("destination", destination),
		zap.Int("length", len(message)),
	)
	s.log.Debug("notification body", zap.String("message", message))
	return true, nil
}
