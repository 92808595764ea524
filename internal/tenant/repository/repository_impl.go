package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clinicops/internal/tenant/domain"
	"github.com/smallbiznis/clinicops/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateTenant(ctx context.Context, tenant domain.Tenant) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO tenants (id, name, slug, created_at)
		 VALUES (?, ?, ?, ?)`,
		tenant.ID,
		tenant.Name,
		tenant.Slug,
		tenant.CreatedAt,
	).Error
}

func (r *repository) CreateStore(ctx context.Context, store domain.Store) error {
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO stores (id, tenant_id, name, code, city, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		store.ID,
		store.TenantID,
		store.Name,
		store.Code,
		store.City,
		store.CreatedAt,
	).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrStoreCodeTaken
	}
	return err
}

func (r *repository) AssignStore(ctx context.Context, assignment domain.UserStore) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO user_stores (user_id, store_id, created_at)
		 VALUES (?, ?, ?)`,
		assignment.UserID,
		assignment.StoreID,
		assignment.CreatedAt,
	).Error
}

func (r *repository) ListStores(ctx context.Context, tenantID snowflake.ID) ([]domain.Store, error) {
	var items []domain.Store
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, name, code, city, created_at
		 FROM stores
		 WHERE tenant_id = ?
		 ORDER BY created_at ASC, id ASC`,
		tenantID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repository) FindStore(ctx context.Context, tenantID, storeID snowflake.ID) (*domain.Store, error) {
	var items []domain.Store
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, name, code, city, created_at
		 FROM stores
		 WHERE tenant_id = ? AND id = ?
		 LIMIT 1`,
		tenantID,
		storeID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrStoreNotFound
	}

	return &items[0], nil
}

func (r *repository) ListAssignedStoreIDs(ctx context.Context, userID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := r.db.WithContext(ctx).Raw(
		`SELECT store_id
		 FROM user_stores
		 WHERE user_id = ?
		 ORDER BY created_at ASC, store_id ASC`,
		userID,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
