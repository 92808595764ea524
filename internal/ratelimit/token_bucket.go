package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/spf13/cast"
)

// takeToken refills KEYS[1] at ARGV[1] tokens per second up to ARGV[2],
// then spends one token if a whole one is available. Time comes from the
// redis server, not the caller.
//
// Reply: {allowed, remaining, now_ms}. remaining is sent as a string since
// redis truncates Lua numbers to integers.
var takeToken = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl_ms = tonumber(ARGV[3])

local t = redis.call("TIME")
local now = t[1] * 1000 + math.floor(t[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local last = tonumber(state[2]) or now

local elapsed = math.max(0, now - last)
tokens = math.min(burst, tokens + elapsed * rate / 1000)

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("PEXPIRE", KEYS[1], ttl_ms)

return {allowed, tostring(tokens), now}
`)

var (
	errBucketNotConfigured = errors.New("ratelimit: bucket not configured")
	errBucketEmptyKey      = errors.New("ratelimit: bucket key is empty")
	errBucketRate          = errors.New("ratelimit: rate must be positive")
	errBucketBurst         = errors.New("ratelimit: burst must be positive")
	errBucketResponse      = errors.New("ratelimit: malformed bucket reply")
)

// TokenBucket is a redis-backed bucket shared by every replica.
type TokenBucket struct {
	client redis.Scripter
}

// Result describes one Allow decision. RetryAfter is zero when allowed.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client redis.Scripter) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client}
}

func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (*Result, error) {
	if err := t.validate(key, rate, burst); err != nil {
		return &Result{}, err
	}

	ttl := defaultBucketTTL(rate, burst)
	reply, err := takeToken.Run(ctx, t.client, []string{key}, rate, burst, ttl.Milliseconds()).Slice()
	if err != nil {
		return &Result{}, err
	}
	return parseBucketReply(reply, rate, burst)
}

func (t *TokenBucket) validate(key string, rate float64, burst int) error {
	switch {
	case t == nil || t.client == nil:
		return errBucketNotConfigured
	case key == "":
		return errBucketEmptyKey
	case rate <= 0:
		return errBucketRate
	case burst <= 0:
		return errBucketBurst
	}
	return nil
}

func parseBucketReply(reply []any, rate float64, burst int) (*Result, error) {
	if len(reply) < 3 {
		return &Result{}, errBucketResponse
	}
	allowed := cast.ToInt64(reply[0]) == 1
	remaining := cast.ToFloat64(reply[1])

	res := &Result{
		Allowed:   allowed,
		Limit:     burst,
		Remaining: int(math.Floor(remaining)),
	}
	if !allowed && rate > 0 && remaining < 1 {
		res.RetryAfter = time.Duration((1 - remaining) / rate * float64(time.Second))
	}
	return res, nil
}

// defaultBucketTTL keeps an idle bucket for twice its full refill time.
func defaultBucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	seconds := max(math.Ceil(float64(burst)/rate*2), 1)
	return time.Duration(seconds) * time.Second
}
