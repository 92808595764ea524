package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrStoreNotFound  = errors.New("store_not_found")
	ErrStoreCodeTaken = errors.New("store_code_taken")
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTenant(ctx context.Context, tenant Tenant) error
	CreateStore(ctx context.Context, store Store) error
	AssignStore(ctx context.Context, assignment UserStore) error
	// ListStores returns the tenant's stores in creation order.
	ListStores(ctx context.Context, tenantID snowflake.ID) ([]Store, error)
	FindStore(ctx context.Context, tenantID, storeID snowflake.ID) (*Store, error)
	// ListAssignedStoreIDs returns store ids in assignment order.
	ListAssignedStoreIDs(ctx context.Context, userID snowflake.ID) ([]snowflake.ID, error)
}
