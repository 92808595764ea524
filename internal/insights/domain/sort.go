package domain

import "strings"

// SortKey selects the metric stores are ranked by, always descending.
type SortKey string

const (
	SortMonthGross    SortKey = "month_gross"
	SortTodayGross    SortKey = "today_gross"
	SortMonthDeltaPct SortKey = "month_delta_pct"
	SortTodayDeltaPct SortKey = "today_delta_pct"
	SortUnpaid        SortKey = "unpaid"
)

var sortKeys = map[SortKey]struct{}{
	SortMonthGross:    {},
	SortTodayGross:    {},
	SortMonthDeltaPct: {},
	SortTodayDeltaPct: {},
	SortUnpaid:        {},
}

func ParseSortKey(raw string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := sortKeys[key]; !ok {
		return "", ErrInvalidSortKey
	}
	return key, nil
}
