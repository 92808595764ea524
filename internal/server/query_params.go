package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	insightsdomain "github.com/smallbiznis/clinicops/internal/insights/domain"
)

const (
	queryStoreID = "storeId"
	querySort    = "sort"
)

// storeSelectorQuery parses ?storeId=<id|all>. Absent means the principal's
// default store.
func storeSelectorQuery(c *gin.Context) (insightsdomain.StoreSelector, error) {
	return insightsdomain.ParseStoreSelector(c.Query(queryStoreID))
}

func sortQuery(c *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(c.Query(querySort)))
}
