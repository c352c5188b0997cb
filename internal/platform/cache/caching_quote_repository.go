// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stockwatch/internal/feature/quotes/domain/entity"
	"stockwatch/internal/feature/quotes/usecase"
)

// CachingQuoteRepository decorates a QuoteRepository with Redis read-through caching.
// Reads are served from Redis when possible; every write drops the whole namespace.
type CachingQuoteRepository struct {
	inner     usecase.QuoteRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.QuoteRepository = (*CachingQuoteRepository)(nil)

// NewCachingQuoteRepository decorates a QuoteRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "quotes".
// A nil rdb disables caching.
func NewCachingQuoteRepository(rdb *redis.Client, ttl time.Duration, inner usecase.QuoteRepository, namespace string) *CachingQuoteRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "quotes"
	}
	return &CachingQuoteRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindAll returns every stored quote, checking the cache first.
func (c *CachingQuoteRepository) FindAll(ctx context.Context) ([]entity.Quote, error) {
	if c.rdb == nil {
		return c.inner.FindAll(ctx)
	}
	return readThrough(ctx, c, c.namespace+":all", c.inner.FindAll)
}

// FindBySymbol returns one stored quote, checking the cache first.
// ErrQuoteNotFound is never cached.
func (c *CachingQuoteRepository) FindBySymbol(ctx context.Context, symbol string) (entity.Quote, error) {
	if c.rdb == nil {
		return c.inner.FindBySymbol(ctx, symbol)
	}
	return readThrough(ctx, c, c.namespace+":symbol:"+safe(symbol), func(ctx context.Context) (entity.Quote, error) {
		return c.inner.FindBySymbol(ctx, symbol)
	})
}

// Exists always asks the underlying repository; the refresh job relies on it being exact.
func (c *CachingQuoteRepository) Exists(ctx context.Context, symbol string) (bool, error) {
	return c.inner.Exists(ctx, symbol)
}

// UpsertBatch writes the quotes and invalidates the cache.
func (c *CachingQuoteRepository) UpsertBatch(ctx context.Context, quotes []entity.Quote) error {
	if err := c.inner.UpsertBatch(ctx, quotes); err != nil {
		return err
	}
	if c.rdb == nil || len(quotes) == 0 {
		return nil
	}
	c.invalidate(ctx)
	return nil
}

// DeleteBySymbols removes the quotes and invalidates the cache.
func (c *CachingQuoteRepository) DeleteBySymbols(ctx context.Context, symbols []string) error {
	if err := c.inner.DeleteBySymbols(ctx, symbols); err != nil {
		return err
	}
	if c.rdb == nil || len(symbols) == 0 {
		return nil
	}
	c.invalidate(ctx)
	return nil
}

func readThrough[T any](ctx context.Context, c *CachingQuoteRepository, key string, load func(context.Context) (T, error)) (T, error) {
	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load(ctx)
	if err != nil {
		return out, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// invalidate drops every key of the namespace. Failures only leave entries until their TTL.
func (c *CachingQuoteRepository) invalidate(ctx context.Context) {
	if err := c.deleteByPattern(ctx, c.namespace+":*"); err != nil {
		slog.Warn("failed to invalidate quote cache", "namespace", c.namespace, "error", err)
	}
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingQuoteRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
