package server

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/clinicops/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/clinicops/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	rateLimitReasonTenantRate = "tenant-rate"
	rateLimitReasonInFlight   = "in-flight"
)

// InsightsRateLimit applies the tenant bucket and the per-user in-flight
// guard. It is a pass-through when no limiter is configured.
func (s *Server) InsightsRateLimit(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || !s.limiter.Enabled() {
			c.Next()
			return
		}

		principal, ok := principalFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		tenantID := principal.TenantID.String()
		userID := principal.UserID.String()

		result, err := s.limiter.AllowTenant(ctx, tenantID)
		if err != nil {
			logger.FromContext(ctx).Warn("insights tenant rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !result.Allowed {
			denyRateLimit(c, endpoint, tenantID, rateLimitReasonTenantRate, result.RetryAfter, s.obsMetrics)
			return
		}

		token, locked, err := s.limiter.TryLockUser(ctx, tenantID, userID, endpoint)
		if err != nil {
			logger.FromContext(ctx).Warn("insights in-flight lock failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !locked {
			denyRateLimit(c, endpoint, tenantID, rateLimitReasonInFlight, time.Second, s.obsMetrics)
			return
		}
		defer func() {
			if err := s.limiter.ReleaseUser(context.WithoutCancel(ctx), tenantID, userID, endpoint, token); err != nil {
				logger.FromContext(ctx).Warn("insights in-flight unlock failed", zap.Error(err))
			}
		}()

		recordRateLimitAllowed(ctx, endpoint, tenantID, s.obsMetrics)
		c.Next()
	}
}

func denyRateLimit(c *gin.Context, endpoint, tenantID, reason string, retryAfter time.Duration, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("insights rate limit exceeded",
		zap.String("reason", reason),
		zap.String("endpoint", endpoint),
	)
	recordRateLimitDenied(ctx, endpoint, tenantID, reason, metrics)

	c.Header("Retry-After", retryAfterSeconds(retryAfter))
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

// retryAfterSeconds rounds up to whole seconds, minimum 1.
func retryAfterSeconds(d time.Duration) string {
	seconds := int64(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.FormatInt(seconds, 10)
}

func recordRateLimitAllowed(ctx context.Context, endpoint, tenantID string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitAllowed(ctx, strings.TrimSpace(tenantID), endpoint)
}

func recordRateLimitDenied(ctx context.Context, endpoint, tenantID, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, strings.TrimSpace(tenantID), endpoint, reason)
}
