// Package domain contains the types shared by the insights pipeline.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	tenantdomain "github.com/smallbiznis/clinicops/internal/tenant/domain"
)

// StoreSelectorAll requests every store visible to the principal.
const StoreSelectorAll = "all"

// TimeRange is the half-open UTC interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Windows are the four comparison ranges of one request, all derived from a
// single clock reading.
type Windows struct {
	Today     TimeRange `json:"today"`
	Yesterday TimeRange `json:"yesterday"`
	Month     TimeRange `json:"month"`
	LastMonth TimeRange `json:"lastMonth"`
}

// StoreSelector is the parsed storeId query value. The zero value means
// nothing was requested.
type StoreSelector struct {
	All     bool
	StoreID snowflake.ID
}

func (s StoreSelector) IsEmpty() bool {
	return !s.All && s.StoreID == 0
}

// ParseStoreSelector accepts "", "all" (any case) or a store id.
func ParseStoreSelector(raw string) (StoreSelector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StoreSelector{}, nil
	}
	if strings.EqualFold(raw, StoreSelectorAll) {
		return StoreSelector{All: true}, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id <= 0 {
		return StoreSelector{}, ErrInvalidStoreID
	}
	return StoreSelector{StoreID: id}, nil
}

// Scope is the resolved set of stores a request aggregates over.
type Scope struct {
	TenantID snowflake.ID
	All      bool
	Stores   []tenantdomain.Store
}

func (s Scope) StoreIDs() []snowflake.ID {
	ids := make([]snowflake.ID, 0, len(s.Stores))
	for _, store := range s.Stores {
		ids = append(ids, store.ID)
	}
	return ids
}

func (s Scope) View() ScopeView {
	if s.All || len(s.Stores) != 1 {
		return ScopeView{ID: StoreSelectorAll, Name: "All stores"}
	}
	return ScopeView{ID: s.Stores[0].ID.String(), Name: s.Stores[0].Name}
}

type ScopeView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Aggregate holds the raw totals of one window.
type Aggregate struct {
	InvoiceCount    int64
	GrossRevenue    decimal.Decimal
	PaidRevenue     decimal.Decimal
	UnpaidCount     int64
	AvgInvoiceValue decimal.Decimal
}

// DecoratedMetric compares a current value against the previous window.
type DecoratedMetric struct {
	Value    float64 `json:"value"`
	Delta    float64 `json:"delta"`
	DeltaPct float64 `json:"deltaPct"`
}

type DecoratedAggregate struct {
	InvoiceCount    DecoratedMetric `json:"invoiceCount"`
	GrossRevenue    DecoratedMetric `json:"grossRevenue"`
	PaidRevenue     DecoratedMetric `json:"paidRevenue"`
	UnpaidCount     DecoratedMetric `json:"unpaidCount"`
	AvgInvoiceValue DecoratedMetric `json:"avgInvoiceValue"`
}

type StoreInsight struct {
	ID    snowflake.ID       `json:"id"`
	Name  string             `json:"name"`
	City  string             `json:"city"`
	Today DecoratedAggregate `json:"today"`
	Month DecoratedAggregate `json:"month"`
}

type TenantInsight struct {
	Today DecoratedAggregate `json:"today"`
	Month DecoratedAggregate `json:"month"`
}
