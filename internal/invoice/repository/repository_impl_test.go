package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clinicops/internal/invoice/domain"
	"github.com/smallbiznis/clinicops/internal/invoice/repository"
	"github.com/smallbiznis/clinicops/internal/migration"
	"github.com/smallbiznis/clinicops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestFindInvoicesHalfOpenRangeAndScope(t *testing.T) {
	ctx := context.Background()
	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))
	repo := repository.NewRepository(conn)

	start := time.Date(2024, 3, 14, 18, 30, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	seed := []domain.Invoice{
		{ID: 1, TenantID: 1, StoreID: 10, Number: "A-1", PaymentStatus: "PAID ", Totals: datatypes.JSON(`{"total":"100"}`), CreatedAt: start},
		{ID: 2, TenantID: 1, StoreID: 10, Number: "A-2", PaymentStatus: "unpaid", Totals: datatypes.JSON(`{"total":50}`), CreatedAt: end.Add(-time.Second)},
		{ID: 3, TenantID: 1, StoreID: 10, Number: "A-3", PaymentStatus: "paid", Totals: datatypes.JSON(`{"total":70}`), CreatedAt: end},
		{ID: 4, TenantID: 1, StoreID: 10, Number: "A-4", PaymentStatus: "paid", Totals: datatypes.JSON(`{"total":70}`), CreatedAt: start.Add(-time.Second)},
		{ID: 5, TenantID: 1, StoreID: 20, Number: "B-1", PaymentStatus: "paid", Totals: datatypes.JSON(`{"total":5}`), CreatedAt: start.Add(time.Hour)},
		{ID: 6, TenantID: 2, StoreID: 10, Number: "X-1", PaymentStatus: "paid", Totals: datatypes.JSON(`{"total":999}`), CreatedAt: start.Add(time.Hour)},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	rows, err := repo.FindInvoices(ctx, 1, []snowflake.ID{10}, start, end)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	statuses := map[domain.PaymentStatus]string{}
	for _, row := range rows {
		assert.Equal(t, snowflake.ID(10), row.StoreID)
		statuses[row.PaymentStatus] = row.Totals.Total.String()
	}
	assert.Equal(t, map[domain.PaymentStatus]string{
		domain.PaymentStatusPaid:   "100",
		domain.PaymentStatusUnpaid: "50",
	}, statuses)

	both, err := repo.FindInvoices(ctx, 1, []snowflake.ID{10, 20}, start, end)
	require.NoError(t, err)
	assert.Len(t, both, 3)
}

func TestFindInvoicesMatchesNonUTCTimestamps(t *testing.T) {
	ctx := context.Background()
	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))
	repo := repository.NewRepository(conn)

	ist := time.FixedZone("IST", 330*60)
	lateEvening := time.Date(2024, 3, 15, 23, 50, 0, 0, ist)
	require.NoError(t, repo.Create(ctx, &domain.Invoice{
		ID: 1, TenantID: 1, StoreID: 10, Number: "A-1", PaymentStatus: "paid",
		Totals: datatypes.JSON(`{"total":40}`), CreatedAt: lateEvening,
	}))

	start := time.Date(2024, 3, 14, 18, 30, 0, 0, time.UTC)
	rows, err := repo.FindInvoices(ctx, 1, []snowflake.ID{10}, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].CreatedAt.Equal(lateEvening))
	assert.Equal(t, time.UTC, rows[0].CreatedAt.Location())

	next, err := repo.FindInvoices(ctx, 1, []snowflake.ID{10}, start.Add(24*time.Hour), start.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestFindInvoicesEmptyStoreSetSkipsQuery(t *testing.T) {
	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	// no schema: a query would fail
	repo := repository.NewRepository(conn)

	rows, err := repo.FindInvoices(context.Background(), 1, nil, time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
