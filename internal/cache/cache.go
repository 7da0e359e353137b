// Package cache keeps recently rendered recipe listings in Redis so repeated
// navigation does not refetch from the backend. Every successful mutation
// bumps a generation counter, which orphans all earlier entries.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	generationKey = "cookbooks:listings:generation"
	entryPrefix   = "cookbooks:listings:page"
)

// ViewCache stores rendered listing pages. An empty key from Key means the
// page must not be cached.
type ViewCache interface {
	Key(ctx context.Context, userID, query string) string
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, page []byte)
	Invalidate(ctx context.Context) error
}

// RedisViewCache is a ViewCache backed by Redis
type RedisViewCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New returns a Redis backed cache, or a no-op cache when redisClient is nil
// or ttl is not positive.
func New(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) ViewCache {
	if redisClient == nil || ttl <= 0 {
		return Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisViewCache{redis: redisClient, ttl: ttl, logger: logger.Named("view_cache")}
}

// Key builds the entry key from the current generation. The generation is
// read before rendering so a concurrent Invalidate is never masked.
func (c *RedisViewCache) Key(ctx context.Context, userID, query string) string {
	gen, err := c.redis.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("failed to read cache generation", zap.Error(err))
		return ""
	}
	sum := sha256.Sum256([]byte(userID + "\x00" + query))
	return fmt.Sprintf("%s:%d:%s", entryPrefix, gen, hex.EncodeToString(sum[:16]))
}

// Get returns a cached page
func (c *RedisViewCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if key == "" {
		return nil, false
	}
	page, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("failed to read cached page", zap.Error(err))
		}
		return nil, false
	}
	return page, true
}

// Set stores a page for the configured TTL
func (c *RedisViewCache) Set(ctx context.Context, key string, page []byte) {
	if key == "" {
		return
	}
	if err := c.redis.Set(ctx, key, page, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache page", zap.Error(err))
	}
}

// Invalidate drops every cached listing
func (c *RedisViewCache) Invalidate(ctx context.Context) error {
	if err := c.redis.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	return nil
}

// Nop caches nothing
type Nop struct{}

func (Nop) Key(context.Context, string, string) string { return "" }

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Nop) Set(context.Context, string, []byte) {}

func (Nop) Invalidate(context.Context) error { return nil }
