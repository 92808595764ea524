package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/clinicops/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	headerRequestID = "X-Request-Id"
	ctxKeyRequestID = "request_id"
	unmatchedRoute  = "unknown"
)

// Routes scraped or polled by infrastructure log at debug.
var probeRoutes = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type MiddlewareConfig struct {
	Debug bool
	// ErrorClassifier maps the last handler error to (type, code) log fields.
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware assigns the request id and writes one access log line per
// request once the handler chain has finished.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		requestID := requestIDFor(c)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()

		fields := accessFields(c, route, status, time.Since(started))
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, errorFields(cfg, last.Err)...)
		}

		log := FromContext(c.Request.Context())
		if ce := log.Check(accessLevel(route, status), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func accessFields(c *gin.Context, route string, status int, elapsed time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("route", route),
		zap.Int("status", status),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
		zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
		zap.Int("bytes_out", max(c.Writer.Size(), 0)),
	}
	if selector := strings.TrimSpace(c.Query("storeId")); selector != "" {
		fields = append(fields, zap.String("store_scope", selector))
	}
	if sortKey := strings.TrimSpace(c.Query("sort")); sortKey != "" {
		fields = append(fields, zap.String("sort", sortKey))
	}
	return fields
}

func errorFields(cfg MiddlewareConfig, err error) []zap.Field {
	var errType, errCode string
	if cfg.ErrorClassifier != nil {
		errType, errCode = cfg.ErrorClassifier(err)
	}
	fields := []zap.Field{
		zap.String("error_type", errType),
		zap.String("error_code", errCode),
	}
	if cfg.Debug {
		fields = append(fields, zap.Stack("stack"))
	}
	return fields
}

func accessLevel(route string, status int) zapcore.Level {
	if _, ok := probeRoutes[route]; ok {
		return zapcore.DebugLevel
	}
	if status >= http.StatusInternalServerError {
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// requestIDFor reuses an inbound X-Request-Id, else mints one, and echoes it
// on the response.
func requestIDFor(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(headerRequestID))
	if id == "" {
		id = strings.TrimSpace(c.GetString(ctxKeyRequestID))
	}
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(ctxKeyRequestID, id)
	c.Header(headerRequestID, id)
	return id
}
