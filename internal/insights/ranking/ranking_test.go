package ranking

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clinicops/internal/insights/domain"
	"github.com/stretchr/testify/assert"
)

func insight(id snowflake.ID, monthGross, todayGross, monthPct, unpaid float64) domain.StoreInsight {
	return domain.StoreInsight{
		ID: id,
		Today: domain.DecoratedAggregate{
			GrossRevenue: domain.DecoratedMetric{Value: todayGross},
		},
		Month: domain.DecoratedAggregate{
			GrossRevenue: domain.DecoratedMetric{Value: monthGross, DeltaPct: monthPct},
			UnpaidCount:  domain.DecoratedMetric{Value: unpaid},
		},
	}
}

func order(stores []domain.StoreInsight) []snowflake.ID {
	out := make([]snowflake.ID, 0, len(stores))
	for _, s := range stores {
		out = append(out, s.ID)
	}
	return out
}

func TestSortByMonthGrossIsStableDescending(t *testing.T) {
	stores := []domain.StoreInsight{
		insight(1, 100, 0, 0, 0),
		insight(2, 300, 0, 0, 0),
		insight(3, 100, 0, 0, 0),
		insight(4, 200, 0, 0, 0),
		insight(5, 100, 0, 0, 0),
	}

	Sort(stores, domain.SortMonthGross)

	assert.Equal(t, []snowflake.ID{2, 4, 1, 3, 5}, order(stores))
}

func TestSortPlacesHigherMonthGrossFirst(t *testing.T) {
	stores := []domain.StoreInsight{
		insight(1, 999, 0, 0, 0),
		insight(2, 1000, 0, 0, 0),
	}

	Sort(stores, domain.SortMonthGross)

	assert.Equal(t, []snowflake.ID{2, 1}, order(stores))
}

func TestSortAlternativeKeys(t *testing.T) {
	base := []domain.StoreInsight{
		insight(1, 100, 50, -10, 2),
		insight(2, 300, 10, 25, 0),
		insight(3, 200, 90, 5, 7),
	}

	cases := []struct {
		key  domain.SortKey
		want []snowflake.ID
	}{
		{key: domain.SortMonthGross, want: []snowflake.ID{2, 3, 1}},
		{key: domain.SortTodayGross, want: []snowflake.ID{3, 1, 2}},
		{key: domain.SortMonthDeltaPct, want: []snowflake.ID{2, 3, 1}},
		{key: domain.SortUnpaid, want: []snowflake.ID{3, 1, 2}},
	}

	for _, tc := range cases {
		t.Run(string(tc.key), func(t *testing.T) {
			stores := append([]domain.StoreInsight(nil), base...)
			Sort(stores, tc.key)
			assert.Equal(t, tc.want, order(stores))
		})
	}
}

func TestSortEmpty(t *testing.T) {
	var stores []domain.StoreInsight
	Sort(stores, domain.SortMonthGross)
	assert.Empty(t, stores)
}
