// Package ratelimit provides per-client request throttling.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/sabormap/sabormap/pkg/server/router"
)

// RateLimiter decides whether a request for a given key may proceed.
// Implementations must be safe for concurrent use.
type RateLimiter interface {
	Allow(key string) bool
}

// TokenBucketLimiter implements per-key token bucket rate limiting.
// Each key (client IP) gets its own bucket with the configured rate and burst.
type TokenBucketLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewTokenBucketLimiter creates a limiter allowing requestsPerSecond on
// average with bursts up to burst.
func NewTokenBucketLimiter(requestsPerSecond, burst int) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
	}
}

// Allow reports whether a request for key is within its limits.
func (l *TokenBucketLimiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

func (l *TokenBucketLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	return limiter.(*rate.Limiter)
}

// RateLimit returns middleware that rejects over-limit clients with 429.
// Clients are keyed by IP (X-Forwarded-For aware).
func RateLimit(limiter RateLimiter) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if !limiter.Allow(clientKey(c.Request())) {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"message": "demasiadas peticiones",
				})
			}
			return next(c)
		}
	}
}

func clientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := strings.IndexByte(forwarded, ','); i >= 0 {
			return strings.TrimSpace(forwarded[:i])
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
