package adapters

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"stockwatch/internal/feature/watchlist/usecase"
)

// PreferenceRedis はRedisを使ったPreferenceRepositoryの実装です。
type PreferenceRedis struct {
	client *redis.Client
	prefix string
}

var _ usecase.PreferenceRepository = (*PreferenceRedis)(nil)

// NewPreferenceRedis はPreferenceRedisを生成します。prefixはキーの名前空間です。
func NewPreferenceRedis(client *redis.Client, prefix string) *PreferenceRedis {
	return &PreferenceRedis{client: client, prefix: prefix}
}

func (r *PreferenceRedis) key(name string) string {
	return fmt.Sprintf("%s:%s", r.prefix, name)
}

func (r *PreferenceRedis) LoadSymbols(ctx context.Context) ([]string, bool, error) {
	pipe := r.client.Pipeline()
	members := pipe.SMembers(ctx, r.key("stocks"))
	flag := pipe.Get(ctx, r.key(keyStocksInitialized))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, false, err
	}

	initialized, err := flag.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, false, err
	}
	symbols := members.Val()
	slices.Sort(symbols)
	return symbols, initialized == "1", nil
}

// SaveSymbols はDEL+SADD+SETをMULTIで実行し、セットとフラグを同時に書き換えます。
func (r *PreferenceRedis) SaveSymbols(ctx context.Context, symbols []string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key("stocks"))
		if len(symbols) > 0 {
			members := make([]any, 0, len(symbols))
			for _, s := range symbols {
				members = append(members, s)
			}
			pipe.SAdd(ctx, r.key("stocks"), members...)
		}
		pipe.Set(ctx, r.key(keyStocksInitialized), "1", 0)
		return nil
	})
	return err
}

func (r *PreferenceRedis) LoadDisplayMode(ctx context.Context) (string, error) {
	v, err := r.client.Get(ctx, r.key(keyDisplayMode)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (r *PreferenceRedis) SaveDisplayMode(ctx context.Context, mode string) error {
	return r.client.Set(ctx, r.key(keyDisplayMode), mode, 0).Err()
}
