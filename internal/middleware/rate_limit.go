package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Limiter decides whether another request for key is allowed.
// Returns: allowed, remaining requests, reset time, error
type Limiter interface {
	IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error)
	Config() RateLimitConfig
}

// RateLimiter handles fixed window rate limiting using Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		now:    time.Now,
	}
}

// Config returns the limiter settings
func (rl *RateLimiter) Config() RateLimitConfig {
	return rl.config
}

// IsAllowed counts a request for key in the current window
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := max(rl.config.Limit-count, 0)
	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// localEntry is a token bucket plus its last use, for idle eviction
type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimiter is an in-process token bucket per key, used when Redis is
// not configured. Limit tokens refill evenly over Window.
type LocalRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*localEntry
	config   RateLimitConfig
	limit    rate.Limit
	idle     time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewLocalRateLimiter creates a limiter and starts its eviction loop. Call
// Stop to end the loop.
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	l := &LocalRateLimiter{
		limiters: make(map[string]*localEntry),
		config:   config,
		limit:    rate.Limit(float64(config.Limit) / config.Window.Seconds()),
		idle:     2 * config.Window,
		done:     make(chan struct{}),
	}
	go l.cleanup(config.Window)
	return l
}

// Config returns the limiter settings
func (l *LocalRateLimiter) Config() RateLimitConfig {
	return l.config
}

// IsAllowed takes a token for key if one is available
func (l *LocalRateLimiter) IsAllowed(_ context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()

	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.limit, l.config.Limit)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	allowed := entry.limiter.AllowN(now, 1)
	tokens := entry.limiter.TokensAt(now)
	remaining := max(int(math.Floor(tokens)), 0)

	reset := now
	if tokens < 1 && l.limit > 0 {
		reset = now.Add(time.Duration((1 - tokens) / float64(l.limit) * float64(time.Second)))
	}
	return allowed, remaining, reset, nil
}

// Stop shuts down the eviction loop
func (l *LocalRateLimiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

func (l *LocalRateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.evict(now)
		}
	}
}

func (l *LocalRateLimiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idle {
			delete(l.limiters, key)
		}
	}
}

// NewLoginRateLimiter limits sign-in attempts to perMinute per client. It
// uses Redis when a client is given and an in-process limiter otherwise.
func NewLoginRateLimiter(redisClient *redis.Client, perMinute int) Limiter {
	config := RateLimitConfig{
		Window:    time.Minute,
		Limit:     perMinute,
		KeyPrefix: "rate_limit:login",
	}
	if redisClient != nil {
		return NewRateLimiter(redisClient, config)
	}
	return NewLocalRateLimiter(config)
}

// RateLimitMiddleware enforces limiter per client IP. onLimited writes the
// rejection; when nil a plain 429 is sent.
func RateLimitMiddleware(limiter Limiter, logger *zap.Logger, onLimited func(c *gin.Context, retryAfter time.Duration)) gin.HandlerFunc {
	config := limiter.Config()
	return func(c *gin.Context) {
		allowed, remaining, resetTime, err := limiter.IsAllowed(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Log error but don't fail the request
			logger.Warn("rate limit check failed", zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := max(time.Until(resetTime), time.Second)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			logger.Warn("rate limit exceeded", zap.String("client_ip", c.ClientIP()), zap.String("path", c.FullPath()))
			if onLimited != nil {
				onLimited(c, retryAfter)
			} else {
				c.String(http.StatusTooManyRequests, "rate limit exceeded")
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
