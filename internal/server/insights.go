package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	insightsdomain "github.com/smallbiznis/clinicops/internal/insights/domain"
	obsmetrics "github.com/smallbiznis/clinicops/internal/observability/metrics"
)

const (
	endpointOverview  = obsmetrics.EndpointOverview
	endpointDashboard = obsmetrics.EndpointDashboard
)

// GET /insights/overview?storeId=<id|all>&sort=<key>
func (s *Server) GetInsightsOverview(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	selector, err := storeSelectorQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.insightsSvc.Overview(c.Request.Context(), insightsdomain.OverviewRequest{
		Principal: principal,
		Store:     selector,
		Sort:      sortQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GET /dashboard/metrics?storeId=<id|all>
func (s *Server) GetDashboardMetrics(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	selector, err := storeSelectorQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.insightsSvc.DashboardMetrics(c.Request.Context(), insightsdomain.DashboardRequest{
		Principal: principal,
		Store:     selector,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
