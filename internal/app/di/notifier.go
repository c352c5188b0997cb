package di

import (
	"github.com/redis/go-redis/v9"

	"stockwatch/internal/platform/config"
	"stockwatch/internal/platform/notify"
)

// NewNotifier assembles the data-updated notifier.
//
// With Redis, notifications go through the Redis channel only; the server's
// relay feeds them back into hub, so local and remote refreshes reach
// WebSocket clients the same way. Without Redis, hub is notified directly.
// hub may be nil (stockctl). Kafka is added when brokers are configured.
// The returned close function releases the Kafka writer.
func NewNotifier(rdb *redis.Client, hub *notify.Hub, kcfg config.KafkaConfig) (notify.Multi, func() error) {
	var n notify.Multi
	switch {
	case rdb != nil:
		n = append(n, notify.NewRedisPublisher(rdb, notify.DefaultChannel))
	case hub != nil:
		n = append(n, hub)
	}

	closeFn := func() error { return nil }
	if len(kcfg.Brokers) > 0 {
		w := notify.NewKafkaWriter(kcfg.Brokers, kcfg.Topic)
		n = append(n, notify.NewKafkaNotifier(w))
		closeFn = w.Close
	}
	return n, closeFn
}
