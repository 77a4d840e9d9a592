package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/timeless/bank-core/internal/app/core/domain"
	"github.com/timeless/bank-core/internal/app/core/usecase"
)

// Config Kafka 通知出口的連線配置
type Config struct {
	Brokers  []string `yaml:"brokers"`
	ClientID string   `yaml:"client_id"`
	Topic    string   `yaml:"topic"`
}

// Notifier 把通知以 JSON 發佈到 Kafka Topic
// 下游的投遞服務 (email/SMS) 自行消費，本核心只負責發佈
type Notifier struct {
	writer *kafkago.Writer
}

func NewNotifier(cfg Config) *Notifier {
	dialer := &kafkago.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
		ClientID:  cfg.ClientID,
	}

	writer := kafkago.NewWriter(kafkago.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		// 同一收件人的通知進同一個 Partition，維持送達順序
		Balancer:     &kafkago.Hash{},
		Dialer:       dialer,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	})

	return &Notifier{writer: writer}
}

// Send 發佈一筆通知，Key 為收件人
func (n *Notifier) Send(ctx context.Context, notification domain.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(notification.Recipient),
		Value: payload,
		Time:  time.Now(),
	})
}

// Close 關閉底層 Writer
func (n *Notifier) Close() error {
	return n.writer.Close()
}

var _ usecase.NotificationSink = (*Notifier)(nil)
