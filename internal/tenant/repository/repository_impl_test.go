package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clinicops/internal/migration"
	"github.com/smallbiznis/clinicops/internal/tenant/domain"
	"github.com/smallbiznis/clinicops/internal/tenant/repository"
	"github.com/smallbiznis/clinicops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) domain.Repository {
	t.Helper()

	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))
	return repository.NewRepository(conn)
}

func TestListStoresOrdersByCreationAndScopesTenant(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tenantA := domain.Tenant{ID: snowflake.ID(1), Name: "Chain A", Slug: "chain-a", CreatedAt: base}
	tenantB := domain.Tenant{ID: snowflake.ID(2), Name: "Chain B", Slug: "chain-b", CreatedAt: base}
	require.NoError(t, repo.CreateTenant(ctx, tenantA))
	require.NoError(t, repo.CreateTenant(ctx, tenantB))

	require.NoError(t, repo.CreateStore(ctx, domain.Store{ID: 12, TenantID: 1, Name: "Second", Code: "second", City: "Pune", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, repo.CreateStore(ctx, domain.Store{ID: 11, TenantID: 1, Name: "First", Code: "first", City: "Delhi", CreatedAt: base}))
	require.NoError(t, repo.CreateStore(ctx, domain.Store{ID: 21, TenantID: 2, Name: "Other", Code: "other", CreatedAt: base}))

	stores, err := repo.ListStores(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, snowflake.ID(11), stores[0].ID)
	assert.Equal(t, "Delhi", stores[0].City)
	assert.Equal(t, snowflake.ID(12), stores[1].ID)

	empty, err := repo.ListStores(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindStoreRequiresTenantMembership(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateTenant(ctx, domain.Tenant{ID: 1, Name: "A", Slug: "a", CreatedAt: now}))
	require.NoError(t, repo.CreateTenant(ctx, domain.Tenant{ID: 2, Name: "B", Slug: "b", CreatedAt: now}))
	require.NoError(t, repo.CreateStore(ctx, domain.Store{ID: 11, TenantID: 1, Name: "Main", Code: "main", CreatedAt: now}))

	store, err := repo.FindStore(ctx, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, "Main", store.Name)

	_, err = repo.FindStore(ctx, 2, 11)
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}

func TestListAssignedStoreIDsKeepsAssignmentOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.AssignStore(ctx, domain.UserStore{UserID: 7, StoreID: 30, CreatedAt: now.Add(time.Minute)}))
	require.NoError(t, repo.AssignStore(ctx, domain.UserStore{UserID: 7, StoreID: 40, CreatedAt: now}))
	require.NoError(t, repo.AssignStore(ctx, domain.UserStore{UserID: 8, StoreID: 30, CreatedAt: now}))

	ids, err := repo.ListAssignedStoreIDs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{40, 30}, ids)
}

func TestCreateStoreRejectsDuplicateCodeWithinTenant(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateTenant(ctx, domain.Tenant{ID: 1, Name: "Chain A", Slug: "chain-a", CreatedAt: base}))
	require.NoError(t, repo.CreateTenant(ctx, domain.Tenant{ID: 2, Name: "Chain B", Slug: "chain-b", CreatedAt: base}))
	require.NoError(t, repo.CreateStore(ctx, domain.Store{ID: 11, TenantID: 1, Name: "Main", Code: "main", CreatedAt: base}))

	err := repo.CreateStore(ctx, domain.Store{ID: 12, TenantID: 1, Name: "Main Again", Code: "main", CreatedAt: base})
	assert.ErrorIs(t, err, domain.ErrStoreCodeTaken)

	require.NoError(t, repo.CreateStore(ctx, domain.Store{ID: 21, TenantID: 2, Name: "Main", Code: "main", CreatedAt: base}))
}
