package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/clinicops/internal/auth/domain"
	"github.com/smallbiznis/clinicops/internal/clock"
	"github.com/smallbiznis/clinicops/internal/insights/domain"
	invoicedomain "github.com/smallbiznis/clinicops/internal/invoice/domain"
	invoicerepository "github.com/smallbiznis/clinicops/internal/invoice/repository"
	"github.com/smallbiznis/clinicops/internal/migration"
	tenantdomain "github.com/smallbiznis/clinicops/internal/tenant/domain"
	tenantrepository "github.com/smallbiznis/clinicops/internal/tenant/repository"
	"github.com/smallbiznis/clinicops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// 2024-03-15 11:30 civil time
var fixtureNow = time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)

func at(month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(2024, month, day, hour, min, sec, 0, time.UTC)
}

func newIntegrationService(t *testing.T) domain.Service {
	t.Helper()

	ctx := context.Background()
	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	tenants := tenantrepository.NewRepository(conn)
	invoices := invoicerepository.NewRepository(conn)

	created := at(1, 1, 0, 0, 0)
	require.NoError(t, tenants.CreateTenant(ctx, tenantdomain.Tenant{ID: 1, Name: "Chain", Slug: "chain", CreatedAt: created}))
	require.NoError(t, tenants.CreateTenant(ctx, tenantdomain.Tenant{ID: 2, Name: "Other", Slug: "other", CreatedAt: created}))
	require.NoError(t, tenants.CreateStore(ctx, tenantdomain.Store{ID: 11, TenantID: 1, Name: "Koramangala", Code: "koramangala", City: "Bengaluru", CreatedAt: created}))
	require.NoError(t, tenants.CreateStore(ctx, tenantdomain.Store{ID: 12, TenantID: 1, Name: "Andheri", Code: "andheri", City: "Mumbai", CreatedAt: created.Add(time.Hour)}))
	require.NoError(t, tenants.CreateStore(ctx, tenantdomain.Store{ID: 21, TenantID: 2, Name: "Elsewhere", Code: "elsewhere", CreatedAt: created}))

	rows := []struct {
		id      snowflake.ID
		tenant  snowflake.ID
		store   snowflake.ID
		status  string
		totals  string
		created time.Time
	}{
		// today starts at 2024-03-14 18:30 UTC
		{id: 1, tenant: 1, store: 11, status: "Paid", totals: `{"total":1000}`, created: at(3, 14, 18, 30, 0)},
		{id: 2, tenant: 1, store: 11, status: "unpaid", totals: `{"total":"200"}`, created: at(3, 15, 5, 0, 0)},
		{id: 3, tenant: 1, store: 11, status: "paid", totals: `{"total":500}`, created: at(3, 14, 18, 29, 59)},
		{id: 4, tenant: 1, store: 11, status: "paid", totals: `{"total":300}`, created: at(3, 2, 10, 0, 0)},
		{id: 5, tenant: 1, store: 11, status: "paid", totals: `{"total":800}`, created: at(2, 10, 10, 0, 0)},
		{id: 6, tenant: 1, store: 12, status: "Partial", totals: `{"total":400}`, created: at(3, 15, 1, 0, 0)},
		{id: 7, tenant: 1, store: 12, status: "paid", totals: `{"total":2000}`, created: at(3, 5, 10, 0, 0)},
		{id: 8, tenant: 1, store: 12, status: "paid", totals: `{"total":"abc"}`, created: at(3, 15, 2, 0, 0)},
		{id: 9, tenant: 2, store: 21, status: "paid", totals: `{"total":9999}`, created: at(3, 15, 3, 0, 0)},
	}
	for _, r := range rows {
		require.NoError(t, invoices.Create(ctx, &invoicedomain.Invoice{
			ID:            r.id,
			TenantID:      r.tenant,
			StoreID:       r.store,
			Number:        r.id.String(),
			PaymentStatus: r.status,
			Totals:        datatypes.JSON(r.totals),
			CreatedAt:     r.created,
		}))
	}

	return NewService(Params{
		Invoices: invoices,
		Stores:   tenants,
		Clock:    clock.NewFakeClock(fixtureNow),
		Log:      zap.NewNop(),
	})
}

func TestOverviewChainWideAggregates(t *testing.T) {
	svc := newIntegrationService(t)

	resp, err := svc.Overview(context.Background(), domain.OverviewRequest{
		Principal: owner(),
		Store:     domain.StoreSelector{All: true},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ScopeView{ID: "all", Name: "All stores"}, resp.Scope)
	assert.Equal(t, at(3, 14, 18, 30, 0), resp.Ranges.Today.Start)
	assert.Equal(t, at(3, 13, 18, 30, 0), resp.Ranges.Yesterday.Start)
	assert.Equal(t, at(2, 29, 18, 30, 0), resp.Ranges.Month.Start)
	assert.Equal(t, at(1, 31, 18, 30, 0), resp.Ranges.LastMonth.Start)

	today := resp.Tenant.Today
	assert.Equal(t, domain.DecoratedMetric{Value: 4, Delta: 3, DeltaPct: 300}, today.InvoiceCount)
	assert.Equal(t, domain.DecoratedMetric{Value: 1600, Delta: 1100, DeltaPct: 220}, today.GrossRevenue)
	assert.Equal(t, domain.DecoratedMetric{Value: 1000, Delta: 500, DeltaPct: 100}, today.PaidRevenue)
	assert.Equal(t, domain.DecoratedMetric{Value: 1, Delta: 1, DeltaPct: 100}, today.UnpaidCount)
	assert.Equal(t, domain.DecoratedMetric{Value: 400, Delta: -100, DeltaPct: -20}, today.AvgInvoiceValue)

	month := resp.Tenant.Month
	assert.Equal(t, float64(7), month.InvoiceCount.Value)
	assert.Equal(t, domain.DecoratedMetric{Value: 4400, Delta: 3600, DeltaPct: 450}, month.GrossRevenue)
	assert.Equal(t, float64(3800), month.PaidRevenue.Value)

	require.Len(t, resp.Stores, 2)
	andheri, koramangala := resp.Stores[0], resp.Stores[1]
	assert.Equal(t, snowflake.ID(12), andheri.ID)
	assert.Equal(t, "Mumbai", andheri.City)
	assert.Equal(t, domain.DecoratedMetric{Value: 2400, Delta: 2400, DeltaPct: 100}, andheri.Month.GrossRevenue)
	assert.Equal(t, float64(400), andheri.Today.GrossRevenue.Value)

	assert.Equal(t, snowflake.ID(11), koramangala.ID)
	assert.Equal(t, domain.DecoratedMetric{Value: 2000, Delta: 1200, DeltaPct: 150}, koramangala.Month.GrossRevenue)
	assert.Equal(t, domain.DecoratedMetric{Value: 1200, Delta: 700, DeltaPct: 140}, koramangala.Today.GrossRevenue)
}

func TestOverviewInvoiceAtRangeEndBelongsToNextDay(t *testing.T) {
	svc := newIntegrationService(t)

	resp, err := svc.Overview(context.Background(), domain.OverviewRequest{
		Principal: owner(),
		Store:     domain.StoreSelector{StoreID: 11},
	})
	require.NoError(t, err)

	// invoice 1 sits exactly on yesterday's end: today has 1 and 2, yesterday only 3
	store := resp.Stores[0]
	assert.Equal(t, float64(2), store.Today.InvoiceCount.Value)
	assert.Equal(t, float64(1), store.Today.InvoiceCount.Value-store.Today.InvoiceCount.Delta)
	assert.Equal(t, float64(500), store.Today.GrossRevenue.Value-store.Today.GrossRevenue.Delta)
}

func TestOverviewSortByTodayGross(t *testing.T) {
	svc := newIntegrationService(t)

	resp, err := svc.Overview(context.Background(), domain.OverviewRequest{
		Principal: owner(),
		Store:     domain.StoreSelector{All: true},
		Sort:      "today_gross",
	})
	require.NoError(t, err)
	require.Len(t, resp.Stores, 2)
	assert.Equal(t, snowflake.ID(11), resp.Stores[0].ID)
	assert.Equal(t, snowflake.ID(12), resp.Stores[1].ID)
}

func TestOverviewManagerAllFallsBackToAssignedStore(t *testing.T) {
	svc := newIntegrationService(t)
	manager := &authdomain.Principal{UserID: 200, TenantID: 1, Role: authdomain.RoleManager, AssignedStoreIDs: []snowflake.ID{12}}

	resp, err := svc.Overview(context.Background(), domain.OverviewRequest{
		Principal: manager,
		Store:     domain.StoreSelector{All: true},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeView{ID: "12", Name: "Andheri"}, resp.Scope)
	require.Len(t, resp.Stores, 1)
	assert.Equal(t, float64(2400), resp.Tenant.Month.GrossRevenue.Value)

	_, err = svc.Overview(context.Background(), domain.OverviewRequest{
		Principal: manager,
		Store:     domain.StoreSelector{StoreID: 11},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOverviewOwnerUnknownStoreIsNotFound(t *testing.T) {
	svc := newIntegrationService(t)

	_, err := svc.Overview(context.Background(), domain.OverviewRequest{
		Principal: owner(),
		Store:     domain.StoreSelector{StoreID: 21},
	})
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}

func TestDashboardMetricsToday(t *testing.T) {
	svc := newIntegrationService(t)

	resp, err := svc.DashboardMetrics(context.Background(), domain.DashboardRequest{
		Principal: owner(),
		Store:     domain.StoreSelector{All: true},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ScopeView{ID: "all", Name: "All stores"}, resp.Store)
	assert.Equal(t, domain.TimeRange{Start: at(3, 14, 18, 30, 0), End: at(3, 15, 18, 30, 0)}, resp.Range)
	assert.Equal(t, domain.DashboardMetrics{
		InvoicesToday:       4,
		TodaySalesGross:     1600,
		TodaySalesPaid:      1000,
		UnpaidInvoicesToday: 1,
	}, resp.Metrics)
}

func TestDashboardMetricsOwnerDefaultsToFirstStore(t *testing.T) {
	svc := newIntegrationService(t)

	resp, err := svc.DashboardMetrics(context.Background(), domain.DashboardRequest{Principal: owner()})
	require.NoError(t, err)

	assert.Equal(t, domain.ScopeView{ID: "11", Name: "Koramangala"}, resp.Store)
	assert.EqualValues(t, 2, resp.Metrics.InvoicesToday)
	assert.Equal(t, float64(1200), resp.Metrics.TodaySalesGross)
}
