// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter provides fixed-window rate limiting backed by Redis, so
// the limit holds across service instances.
// It is safe for concurrent use.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// New creates a rate limiter.
// limit: maximum requests allowed per window
// window: the time window for counting requests
func New(rdb *redis.Client, prefix string, limit int64, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// Allow checks whether a request from the given key should be
// admitted. Fails open: if Redis is unreachable the request is
// allowed, because login availability beats strictness here.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.rdb == nil {
		return true
	}
	k := l.prefix + ":" + key
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		l.rdb.Expire(ctx, k, l.window)
	}
	return n <= l.limit
}

// Reset clears the counter for a key. Called after a successful
// login so earlier failures stop counting against the caller.
func (l *Limiter) Reset(ctx context.Context, key string) {
	if l == nil || l.rdb == nil {
		return
	}
	l.rdb.Del(ctx, l.prefix+":"+key)
}

// Cooldown suppresses repeats of the same event within a window.
type Cooldown struct {
	rdb    *redis.Client
	prefix string
	window time.Duration
}

// NewCooldown creates a cooldown gate.
func NewCooldown(rdb *redis.Client, prefix string, window time.Duration) *Cooldown {
	return &Cooldown{rdb: rdb, prefix: prefix, window: window}
}

// Acquire reports whether the event should fire. The first call for
// a key within the window wins; later calls are suppressed until the
// window lapses. Fails open when Redis is unreachable.
func (c *Cooldown) Acquire(ctx context.Context, key string) bool {
	if c == nil || c.rdb == nil {
		return true
	}
	ok, err := c.rdb.SetNX(ctx, c.prefix+":"+key, 1, c.window).Result()
	if err != nil {
		return true
	}
	return ok
}

// ClientKey derives a limiter key from the request's client address.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
