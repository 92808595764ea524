package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type meResponse struct {
	UserID   string   `json:"userId"`
	TenantID string   `json:"tenantId"`
	Role     string   `json:"role"`
	StoreIDs []string `json:"storeIds"`
}

// GET /auth/me
func (s *Server) Me(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	storeIDs := make([]string, 0, len(principal.AssignedStoreIDs))
	for _, id := range principal.AssignedStoreIDs {
		storeIDs = append(storeIDs, id.String())
	}

	c.JSON(http.StatusOK, meResponse{
		UserID:   principal.UserID.String(),
		TenantID: principal.TenantID.String(),
		Role:     principal.Role.String(),
		StoreIDs: storeIDs,
	})
}

// POST /auth/logout
func (s *Server) Logout(c *gin.Context) {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}
