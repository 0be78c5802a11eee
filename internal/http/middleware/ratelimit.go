// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file throttles callers with one token bucket per caller. Buckets are
// kept in an expiring LRU so callers idle for longer than the bucket TTL are
// forgotten and the table never grows past maxBuckets.
//
// Callers are keyed as:
//   - "demo:<ip>" for demo requests, which are anonymous by nature
//   - "user:<id>" when Identity stored an X-User-ID
//   - "ip:<addr>" otherwise
//
// The limiter is process-local. Replays flagged by IdempotencyValidator skip
// it so retries of a completed write never cost a token.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/tbourn/feedback-hub/internal/observability"
)

const (
	maxBuckets = 10_000
	bucketTTL  = 10 * time.Minute
)

// LimitPolicy is a token bucket shape: RPS tokens per second, up to Burst.
type LimitPolicy struct {
	RPS   float64
	Burst int
}

// RateLimiter hands out one bucket per caller key. Safe for concurrent use.
type RateLimiter struct {
	name    string
	policy  LimitPolicy
	mu      sync.Mutex
	buckets *expirable.LRU[string, *rate.Limiter]
}

// NewRateLimiter builds a limiter. name labels the rejections metric
// ("api", "functions"). A Burst below 1 is raised to 1.
func NewRateLimiter(name string, p LimitPolicy) *RateLimiter {
	if p.Burst < 1 {
		p.Burst = 1
	}
	return &RateLimiter{
		name:    name,
		policy:  p,
		buckets: expirable.NewLRU[string, *rate.Limiter](maxBuckets, nil, bucketTTL),
	}
}

// CallerKey returns the bucket key for the request.
func CallerKey(c *gin.Context) string {
	if IsDemo(c) {
		return "demo:" + c.ClientIP()
	}
	if uid := c.GetString(ctxKeyUserID); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.ClientIP()
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if lim, ok := rl.buckets.Get(key); ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(rl.policy.RPS), rl.policy.Burst)
	rl.buckets.Add(key, lim)
	return lim
}

// retryAfter is the whole number of seconds until one token refills.
func (rl *RateLimiter) retryAfter() string {
	if rl.policy.RPS <= 0 {
		return "60"
	}
	return strconv.Itoa(int(math.Max(1, math.Ceil(1/rl.policy.RPS))))
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay of a completed write.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the policy. Rejected requests get 429 with the API error
// envelope and a Retry-After header.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) || rl.bucket(CallerKey(c)).Allow() {
			c.Next()
			return
		}

		observability.RateLimited.WithLabelValues(rl.name).Inc()
		c.Header("Retry-After", rl.retryAfter())
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "rate_limited",
			"message":    "too many requests, slow down",
		})
	}
}
