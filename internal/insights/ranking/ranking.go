// Package ranking orders per-store insights for display.
package ranking

import (
	"sort"

	"github.com/smallbiznis/clinicops/internal/insights/domain"
)

func metricFor(key domain.SortKey) func(domain.StoreInsight) float64 {
	switch key {
	case domain.SortTodayGross:
		return func(s domain.StoreInsight) float64 { return s.Today.GrossRevenue.Value }
	case domain.SortMonthDeltaPct:
		return func(s domain.StoreInsight) float64 { return s.Month.GrossRevenue.DeltaPct }
	case domain.SortTodayDeltaPct:
		return func(s domain.StoreInsight) float64 { return s.Today.GrossRevenue.DeltaPct }
	case domain.SortUnpaid:
		return func(s domain.StoreInsight) float64 { return s.Month.UnpaidCount.Value }
	default:
		return func(s domain.StoreInsight) float64 { return s.Month.GrossRevenue.Value }
	}
}

// Sort orders stores descending by key in place. Ties keep their input
// order.
func Sort(stores []domain.StoreInsight, key domain.SortKey) {
	metric := metricFor(key)
	sort.SliceStable(stores, func(i, j int) bool {
		return metric(stores[i]) > metric(stores[j])
	})
}
