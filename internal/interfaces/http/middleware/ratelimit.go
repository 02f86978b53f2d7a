package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecom/backend/internal/interfaces/http/dto"
)

// RateLimiterConfig holds token bucket rate limiter configuration
type RateLimiterConfig struct {
	// Rate is the number of tokens refilled per second
	Rate float64
	// Burst is the bucket capacity
	Burst int
	// CleanupInterval controls how often idle client buckets are dropped
	CleanupInterval time.Duration
	// IdleTimeout is how long a client may be idle before its bucket is dropped
	IdleTimeout time.Duration
}

// DefaultRateLimiterConfig returns a configuration suited for a public
// storefront API: 20 requests per second with a burst of 40 per client IP.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:            20,
		Burst:           40,
		CleanupInterval: time.Minute,
		IdleTimeout:     5 * time.Minute,
	}
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter implements a per-client token bucket
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*bucket
	config  RateLimiterConfig
	stop    chan struct{}
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*bucket),
		config:  cfg,
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether the client identified by key may proceed, and the
// number of whole tokens remaining after the call.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]
	if !ok {
		b = &bucket{tokens: float64(rl.config.Burst)}
		rl.clients[key] = b
	} else {
		elapsed := now.Sub(b.lastSeen).Seconds()
		b.tokens += elapsed * rl.config.Rate
		if b.tokens > float64(rl.config.Burst) {
			b.tokens = float64(rl.config.Burst)
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false, 0
	}
	b.tokens--
	return true, int(b.tokens)
}

// Stop terminates the cleanup loop
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

func (rl *RateLimiter) cleanupLoop() {
	interval := rl.config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.config.IdleTimeout)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, b := range rl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// RateLimit limits requests per client IP using the given limiter
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining := rl.Allow(c.ClientIP())

		c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.config.Burst))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Writer.Header().Set("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimited, "too many requests"))
			return
		}

		c.Next()
	}
}
