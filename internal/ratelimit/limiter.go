package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const emailCooldown = 2 * time.Minute

// Result describes the state of a fixed window after a hit.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests in Redis using fixed windows.
type Limiter struct {
	client *redis.Client
	prefix string
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client, prefix: "ratelimit"}
}

// Allow records one hit for key and reports whether it is within limit.
// The window starts with the first hit and expires after window.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("failed to increment counter: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return Result{}, fmt.Errorf("failed to set window expiry: %w", err)
		}
	}

	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read window ttl: %w", err)
	}
	if ttl < 0 {
		// Key lost its expiry (e.g. crash between INCR and EXPIRE); restart the window.
		if err := l.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return Result{}, fmt.Errorf("failed to set window expiry: %w", err)
		}
		ttl = window
	}

	res := Result{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: max(limit-int(count), 0),
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}

	return res, nil
}

// AcquireEmailCooldown starts the per-address cooldown. It returns false when
// a cooldown for the address is already running.
func (l *Limiter) AcquireEmailCooldown(ctx context.Context, email string) (bool, error) {
	key := fmt.Sprintf("%s:email_cooldown:%s", l.prefix, strings.ToLower(email))

	ok, err := l.client.SetNX(ctx, key, 1, emailCooldown).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set email cooldown: %w", err)
	}

	return ok, nil
}
