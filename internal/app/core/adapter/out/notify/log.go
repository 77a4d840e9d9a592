package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/timeless/bank-core/internal/app/core/domain"
	"github.com/timeless/bank-core/internal/app/core/usecase"
)

// LogSink 把通知寫到 Log 的出口
// 單機或開發環境沒有 Kafka 時使用
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{
		logger: log.With().Str("pkg", "notify").Logger(),
	}
}

func (s *LogSink) Send(ctx context.Context, n domain.Notification) error {
	s.logger.Info().
		Str("recipient", n.Recipient).
		Str("subject", n.Subject).
		Str("body", n.Body).
		Msg("notification")
	return nil
}

var _ usecase.NotificationSink = (*LogSink)(nil)
