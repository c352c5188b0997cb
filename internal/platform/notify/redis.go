package notify

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel はRedis Pub/Subのチャネル名です。
const DefaultChannel = "stockwatch:data-updated"

// RedisPublisher は通知をRedisのチャネルへPUBLISHします。
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

var _ Notifier = (*RedisPublisher)(nil)

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) NotifyDataUpdated(ctx context.Context) error {
	return p.client.Publish(ctx, p.channel, ActionDataUpdated).Err()
}

// RedisRelay はRedisのチャネルを購読し、受け取った通知をHubへ流します。
// stockctl など別プロセスのリフレッシュをWebSocketクライアントへ届けるために使います。
type RedisRelay struct {
	client  *redis.Client
	channel string
}

func NewRedisRelay(client *redis.Client, channel string) *RedisRelay {
	return &RedisRelay{client: client, channel: channel}
}

// Run はctxが終わるまでブロックします。購読が確立したらreadyを閉じます（nil可）。
func (r *RedisRelay) Run(ctx context.Context, hub *Hub, ready chan<- struct{}) error {
	ps := r.client.Subscribe(ctx, r.channel)
	defer func() {
		if err := ps.Close(); err != nil {
			slog.Warn("failed to close redis subscription", "error", err)
		}
	}()

	// 購読の確立を待つ
	if _, err := ps.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}
	slog.Info("relaying data updates from redis", "channel", r.channel)

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			hub.Broadcast(msg.Payload)
		}
	}
}
