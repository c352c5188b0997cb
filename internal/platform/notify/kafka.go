package notify

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter は kafka.Writer のうち通知に使うメソッドです。
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier は通知をKafkaのトピックへ書き込みます。
type KafkaNotifier struct {
	writer MessageWriter
	now    func() time.Time
}

var _ Notifier = (*KafkaNotifier)(nil)

func NewKafkaNotifier(writer MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer, now: time.Now}
}

// NewKafkaWriter はトピックへ書き込むkafka.Writerを生成します。
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
}

func (k *KafkaNotifier) NotifyDataUpdated(ctx context.Context) error {
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte("action"),
		Value: []byte(ActionDataUpdated),
		Time:  k.now(),
	})
}
