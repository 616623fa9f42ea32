package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/omkarr10/Vagabond/internal/redisx"
	"github.com/omkarr10/Vagabond/internal/response"
	"github.com/omkarr10/Vagabond/internal/telemetry"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Rate limit per second per IP (0 = unlimited)
	RequestsPerSecond int
	// Burst size (token bucket capacity)
	BurstSize int
	// Redis client, nil falls back to local in-memory limiting
	RedisClient *redisx.Client
	// Key prefix for Redis
	KeyPrefix string
	// Cleanup interval for local rate limiter
	CleanupInterval time.Duration
	// Entry TTL for local rate limiter
	EntryTTL time.Duration
}

// DefaultRateLimitConfig returns defaults suited to auth endpoints, which
// are bcrypt-bound and the usual target of credential stuffing.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 20,
		BurstSize:         5,
		KeyPrefix:         "ratelimit:",
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	}
}

type rateLimitEntry struct {
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// LocalRateLimiter implements in-memory token bucket rate limiting
type LocalRateLimiter struct {
	config  RateLimitConfig
	entries sync.Map
	stop    chan struct{}
}

// NewLocalRateLimiter creates a new local rate limiter
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	rl := &LocalRateLimiter{
		config: config,
		stop:   make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow checks if a request should be allowed
func (rl *LocalRateLimiter) Allow(key string) bool {
	now := time.Now()

	entry, _ := rl.entries.LoadOrStore(key, &rateLimitEntry{
		tokens:     float64(rl.config.BurstSize),
		lastUpdate: now,
	})
	e := entry.(*rateLimitEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	elapsed := now.Sub(e.lastUpdate).Seconds()
	e.tokens += elapsed * float64(rl.config.RequestsPerSecond)
	if max := float64(rl.config.BurstSize); e.tokens > max {
		e.tokens = max
	}
	e.lastUpdate = now

	if e.tokens >= 1 {
		e.tokens--
		return true
	}
	return false
}

func (rl *LocalRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.EntryTTL)
			rl.entries.Range(func(key, value interface{}) bool {
				e := value.(*rateLimitEntry)
				e.mu.Lock()
				if e.lastUpdate.Before(cutoff) {
					rl.entries.Delete(key)
				}
				e.mu.Unlock()
				return true
			})
		case <-rl.stop:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *LocalRateLimiter) Stop() {
	close(rl.stop)
}

// Lua token bucket, evaluated atomically per key
const rateLimitScript = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call("HMGET", key, "tokens", "last_update")
local tokens = tonumber(data[1]) or burst
local last_update = tonumber(data[2]) or now

local elapsed = now - last_update
tokens = math.min(burst, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call("HMSET", key, "tokens", tokens, "last_update", now)
redis.call("EXPIRE", key, 60)
return allowed
`

// RateLimiter creates a rate limiting middleware keyed on client IP. With a
// Redis client the limit is shared across instances; without one each
// instance keeps its own buckets. Redis errors fail open.
func RateLimiter(config RateLimitConfig) gin.HandlerFunc {
	var localLimiter *LocalRateLimiter
	if config.RedisClient == nil {
		localLimiter = NewLocalRateLimiter(config)
	}

	return func(c *gin.Context) {
		if config.RequestsPerSecond <= 0 {
			c.Next()
			return
		}

		ctx, span := telemetry.StartSpan(c.Request.Context(), "middleware.rate_limiter")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		clientIP := c.ClientIP()
		span.SetAttributes(attribute.String("client_ip", clientIP))

		var allowed bool
		if config.RedisClient != nil {
			now := float64(time.Now().UnixNano()) / 1e9
			result, err := config.RedisClient.Client().Eval(ctx, rateLimitScript,
				[]string{config.KeyPrefix + clientIP},
				float64(config.RequestsPerSecond),
				float64(config.BurstSize),
				now,
			).Int64()
			if err != nil {
				allowed = true
			} else {
				allowed = result == 1
			}
		} else {
			allowed = localLimiter.Allow(clientIP)
		}

		span.SetAttributes(attribute.Bool("allowed", allowed))

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerSecond))

		if !allowed {
			span.SetStatus(codes.Error, "rate limit exceeded")
			c.Header("Retry-After", "1")
			response.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Rate limit exceeded. Please retry after 1 second(s).")
			c.Abort()
			return
		}

		span.SetStatus(codes.Ok, "")
		c.Next()
	}
}
