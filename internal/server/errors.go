package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/clinicops/internal/auth/domain"
	"github.com/smallbiznis/clinicops/internal/authorization"
	insightsdomain "github.com/smallbiznis/clinicops/internal/insights/domain"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not_found")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// errorClass is one row of the client-facing error table. The first class
// whose sentinels match wins.
type errorClass struct {
	status    int
	kind      string
	message   string
	sentinels []error
}

var errorClasses = []errorClass{
	{
		status: http.StatusUnauthorized, kind: "unauthorized", message: "unauthorized",
		sentinels: []error{
			ErrUnauthorized,
			insightsdomain.ErrUnauthenticated,
			authdomain.ErrInvalidSession,
			authdomain.ErrSessionExpired,
			authdomain.ErrSessionRevoked,
		},
	},
	{
		status: http.StatusForbidden, kind: "forbidden", message: "forbidden",
		sentinels: []error{
			ErrForbidden,
			insightsdomain.ErrForbidden,
			insightsdomain.ErrInvalidTenant,
			authorization.ErrForbidden,
		},
	},
	{
		status: http.StatusNotFound, kind: "not_found", message: "not found",
		sentinels: []error{ErrNotFound, insightsdomain.ErrStoreNotFound},
	},
	{
		status: http.StatusTooManyRequests, kind: "rate_limited", message: "too many requests",
		sentinels: []error{ErrRateLimited},
	},
	{
		status: http.StatusServiceUnavailable, kind: "service_unavailable", message: "service unavailable",
		sentinels: []error{ErrServiceUnavailable},
	},
}

// Query parameter errors carry the offending field; the sentinel text is
// the machine code.
var fieldErrors = map[error]string{
	insightsdomain.ErrInvalidStoreID: queryStoreID,
	insightsdomain.ErrInvalidSortKey: querySort,
}

// ErrorHandlingMiddleware renders the last handler error unless a response
// was already written.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		status, payload := mapError(last.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError never exposes the cause of a 500. Computation failures were
// logged by the service already.
func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, internalPayload()
	}

	for sentinel, field := range fieldErrors {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest, errorPayload{
				Type:    "validation_error",
				Message: "validation error",
				Errors: []ValidationError{{
					Field:   field,
					Code:    sentinel.Error(),
					Message: "invalid value",
				}},
			}
		}
	}

	for _, class := range errorClasses {
		for _, sentinel := range class.sentinels {
			if errors.Is(err, sentinel) {
				return class.status, errorPayload{Type: class.kind, Message: class.message}
			}
		}
	}
	return http.StatusInternalServerError, internalPayload()
}

func internalPayload() errorPayload {
	return errorPayload{Type: "internal_error", Message: "internal server error"}
}

// classifyErrorForLog reports the client-visible type, with the failing
// computation step as the code for 500s.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}

	var computeErr *insightsdomain.ComputationError
	if errors.As(err, &computeErr) && computeErr != nil {
		code = computeErr.Op
	}
	return payload.Type, code
}
