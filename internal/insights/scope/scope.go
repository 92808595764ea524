// Package scope decides which stores a principal's request aggregates over.
package scope

import (
	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	authdomain "github.com/smallbiznis/clinicops/internal/auth/domain"
	"github.com/smallbiznis/clinicops/internal/insights/domain"
	tenantdomain "github.com/smallbiznis/clinicops/internal/tenant/domain"
)

// Resolve maps a principal and the requested selector onto the tenant's
// stores. tenantStores must be the principal's tenant stores in stable
// order.
//
// Chain-wide roles may request "all" or any tenant store; with no request
// they get their first assigned store, else the first tenant store. Other
// roles are confined to assigned stores and fall back to the first one.
func Resolve(principal *authdomain.Principal, requested domain.StoreSelector, tenantStores []tenantdomain.Store) (domain.Scope, error) {
	if principal == nil {
		return domain.Scope{}, domain.ErrUnauthenticated
	}
	if principal.TenantID == 0 {
		return domain.Scope{}, domain.ErrInvalidTenant
	}

	byID := lo.KeyBy(tenantStores, func(s tenantdomain.Store) snowflake.ID { return s.ID })
	assigned := lo.FilterMap(principal.AssignedStoreIDs, func(id snowflake.ID, _ int) (tenantdomain.Store, bool) {
		store, ok := byID[id]
		return store, ok
	})
	assigned = lo.UniqBy(assigned, func(s tenantdomain.Store) snowflake.ID { return s.ID })

	scope := domain.Scope{TenantID: principal.TenantID}

	if principal.Role.HasChainWideScope() {
		switch {
		case requested.All:
			scope.All = true
			scope.Stores = tenantStores
		case requested.StoreID != 0:
			store, ok := byID[requested.StoreID]
			if !ok {
				return domain.Scope{}, domain.ErrStoreNotFound
			}
			scope.Stores = []tenantdomain.Store{store}
		case len(assigned) > 0:
			scope.Stores = assigned[:1]
		case len(tenantStores) > 0:
			scope.Stores = tenantStores[:1]
		}
	} else {
		switch {
		case requested.StoreID != 0:
			store, ok := lo.Find(assigned, func(s tenantdomain.Store) bool { return s.ID == requested.StoreID })
			if !ok {
				return domain.Scope{}, domain.ErrForbidden
			}
			scope.Stores = []tenantdomain.Store{store}
		case len(assigned) > 0:
			scope.Stores = assigned[:1]
		}
	}

	if len(scope.Stores) == 0 {
		return domain.Scope{}, domain.ErrForbidden
	}
	return scope, nil
}
