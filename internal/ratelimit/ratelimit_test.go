package ratelimit

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/clinicops/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, 8*time.Second, defaultBucketTTL(5, 20))
	assert.Equal(t, time.Second, defaultBucketTTL(1000, 1))
	assert.Equal(t, time.Second, defaultBucketTTL(0, 10))
}

func TestParseBucketReply(t *testing.T) {
	res, err := parseBucketReply([]interface{}{int64(1), "3.5", int64(1700000000000)}, 2, 10)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)
	assert.Equal(t, 10, res.Limit)
	assert.Zero(t, res.RetryAfter)

	res, err = parseBucketReply([]interface{}{int64(0), "0.5", int64(1700000000000)}, 2, 10)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 250*time.Millisecond, res.RetryAfter)

	_, err = parseBucketReply([]interface{}{int64(1)}, 2, 10)
	assert.ErrorIs(t, err, errBucketResponse)
}

func TestTokenBucketValidatesArguments(t *testing.T) {
	var nilBucket *TokenBucket
	_, err := nilBucket.Allow(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, errBucketNotConfigured)

	bucket := NewTokenBucket(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
	_, err = bucket.Allow(context.Background(), "", 1, 1)
	assert.ErrorIs(t, err, errBucketEmptyKey)
	_, err = bucket.Allow(context.Background(), "k", 0, 1)
	assert.ErrorIs(t, err, errBucketRate)
	_, err = bucket.Allow(context.Background(), "k", 1, 0)
	assert.ErrorIs(t, err, errBucketBurst)
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	limiter, err := NewInsightsLimiter(nil, config.Config{}, nil)
	require.NoError(t, err)
	require.Nil(t, limiter)

	assert.False(t, limiter.Enabled())
	res, err := limiter.AllowTenant(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	token, ok, err := limiter.TryLockUser(context.Background(), "1", "2", "overview")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, token)
	assert.NoError(t, limiter.ReleaseUser(context.Background(), "1", "2", "overview", token))
}

func TestNewInsightsLimiterValidatesConfig(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	_, err := newInsightsLimiter(client, config.RateLimitConfig{InsightsRate: 0, InsightsBurst: 5, LockTTLSeconds: 30})
	assert.Error(t, err)

	_, err = newInsightsLimiter(client, config.RateLimitConfig{InsightsRate: 1, InsightsBurst: 5})
	assert.Error(t, err)

	limiter, err := newInsightsLimiter(client, config.RateLimitConfig{InsightsRate: 1, InsightsBurst: 5, LockTTLSeconds: 30})
	require.NoError(t, err)
	assert.True(t, limiter.Enabled())
}

func TestKeysAreTenantScoped(t *testing.T) {
	assert.Equal(t, "insights:tenant:42", tenantKey(" 42 "))
	assert.Equal(t, "insights:lock:42:7:overview", lockKey("42", "7", "overview"))
}
