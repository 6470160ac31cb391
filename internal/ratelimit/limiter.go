// Package ratelimit implements a sliding-window limiter on Redis sorted sets.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the window, counts what is left and admits the request
// when under the limit. Members are made unique with a per-key counter.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_ms = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

local current = redis.call('ZCARD', key)

if current < limit then
	local counter = redis.call('INCR', key .. ':counter')
	redis.call('ZADD', key, now, now .. ':' .. counter)
	local expire_seconds = math.ceil(window_ms / 1000)
	redis.call('EXPIRE', key, expire_seconds)
	redis.call('EXPIRE', key .. ':counter', expire_seconds)
	return {1, limit - current - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local reset_at = 0
if oldest and #oldest >= 2 then
	reset_at = tonumber(oldest[2]) + window_ms
end
return {0, 0, reset_at}
`)

type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

type Limiter struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

func NewLimiter(client *redis.Client, keyPrefix string) *Limiter {
	return &Limiter{client: client, keyPrefix: keyPrefix, now: time.Now}
}

func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	now := l.now()
	windowStart := now.Add(-window)

	res, err := slidingWindow.Run(ctx, l.client, []string{l.keyPrefix + key},
		now.UnixMilli(), windowStart.UnixMilli(), limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return Result{}, fmt.Errorf("rate limit script: unexpected reply length %d", len(res))
	}

	resetAt := now.Add(window)
	if res[2] > 0 {
		resetAt = time.UnixMilli(res[2])
	}

	return Result{
		Allowed:   res[0] == 1,
		Remaining: int(res[1]),
		Limit:     limit,
		ResetAt:   resetAt,
	}, nil
}

func (l *Limiter) Reset(ctx context.Context, key string) error {
	redisKey := l.keyPrefix + key
	return l.client.Del(ctx, redisKey, redisKey+":counter").Err()
}
