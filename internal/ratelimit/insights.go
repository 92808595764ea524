package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/clinicops/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyInsightsTenant = "insights:tenant:%s"
	keyInsightsLock   = "insights:lock:%s:%s:%s"
)

// InsightsLimiter throttles insights reads per tenant and keeps a user from
// running the same endpoint twice at once.
type InsightsLimiter struct {
	bucket *TokenBucket
	locker *Locker

	rate    float64
	burst   int
	lockTTL time.Duration
}

// NewInsightsLimiter returns nil when rate limiting is disabled.
func NewInsightsLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*InsightsLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	limiter, err := newInsightsLimiter(client, limitCfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}
	if log != nil {
		log.Info("insights rate limit enabled",
			zap.String("redis_addr", addr),
			zap.Float64("rate", limitCfg.InsightsRate),
			zap.Int("burst", limitCfg.InsightsBurst),
		)
	}
	return limiter, nil
}

func newInsightsLimiter(client redis.Cmdable, limitCfg config.RateLimitConfig) (*InsightsLimiter, error) {
	if limitCfg.InsightsRate <= 0 || limitCfg.InsightsBurst <= 0 {
		return nil, errors.New("insights rate limit must be positive")
	}
	lockTTL := time.Duration(limitCfg.LockTTLSeconds) * time.Second
	if lockTTL <= 0 {
		return nil, errors.New("insights lock ttl must be positive")
	}

	return &InsightsLimiter{
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    limitCfg.InsightsRate,
		burst:   limitCfg.InsightsBurst,
		lockTTL: lockTTL,
	}, nil
}

func (l *InsightsLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowTenant takes one token from the tenant's bucket.
func (l *InsightsLimiter) AllowTenant(ctx context.Context, tenantID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, tenantKey(tenantID), l.rate, l.burst)
}

// TryLockUser guards one in-flight computation per user and endpoint.
func (l *InsightsLimiter) TryLockUser(ctx context.Context, tenantID, userID, endpoint string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, lockKey(tenantID, userID, endpoint), l.lockTTL)
}

func (l *InsightsLimiter) ReleaseUser(ctx context.Context, tenantID, userID, endpoint, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, lockKey(tenantID, userID, endpoint), token)
}

func tenantKey(tenantID string) string {
	return fmt.Sprintf(keyInsightsTenant, strings.TrimSpace(tenantID))
}

func lockKey(tenantID, userID, endpoint string) string {
	return fmt.Sprintf(
		keyInsightsLock,
		strings.TrimSpace(tenantID),
		strings.TrimSpace(userID),
		strings.TrimSpace(endpoint),
	)
}
