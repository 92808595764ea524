package server

import (
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/clinicops/internal/auth/domain"
	obscontext "github.com/smallbiznis/clinicops/internal/observability/context"
)

const contextPrincipalKey = "principal"

// AuthRequired resolves the session token into a principal and stores it on
// the gin context. Requests without a usable session stop with 401.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := obscontext.WithTenantID(c.Request.Context(), principal.TenantID.String())
		ctx = obscontext.WithActor(ctx, "user", principal.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextPrincipalKey, principal)
		c.Next()
	}
}

// RequirePermission gates a route on the principal's role.
func (s *Server) RequirePermission(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if s.authzSvc == nil {
			AbortWithError(c, ErrForbidden)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), principal, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func principalFromContext(c *gin.Context) (*authdomain.Principal, bool) {
	value, ok := c.Get(contextPrincipalKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*authdomain.Principal)
	if !ok || principal == nil {
		return nil, false
	}
	return principal, true
}
