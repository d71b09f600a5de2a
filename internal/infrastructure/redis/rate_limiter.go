package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Counter operaciones de Redis que usa el limitador; *goredis.Client la cumple.
type Counter interface {
	Incr(ctx context.Context, key string) *goredis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *goredis.BoolCmd
}

// Decision resultado de una consulta al limitador.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// RateLimiter ventana fija por clave: INCR y, en la primera petición de la ventana, EXPIRE.
type RateLimiter struct {
	client Counter
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter limit peticiones por window. limit <= 0 deja pasar todo.
func NewRateLimiter(client Counter, prefix string, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}
}

// Allow cuenta una petición de key en la ventana vigente.
func (l *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.limit <= 0 {
		return Decision{Allowed: true, Remaining: -1}, nil
	}
	now := l.now()
	slot := now.UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)
	resetIn := time.Duration((slot+1)*int64(l.window) - now.UnixNano())

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire %s: %w", key, err)
		}
	}
	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: int(count) <= l.limit, Remaining: remaining, ResetIn: resetIn}, nil
}
