package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/clinicops/internal/auth/domain"
	invoicedomain "github.com/smallbiznis/clinicops/internal/invoice/domain"
	tenantdomain "github.com/smallbiznis/clinicops/internal/tenant/domain"
)

//go:generate mockgen -source=service.go -destination=../mocks/mock_domain.go -package=mocks

// InvoiceReader is the storage query used for every window.
type InvoiceReader interface {
	FindInvoices(ctx context.Context, tenantID snowflake.ID, storeIDs []snowflake.ID, start, end time.Time) ([]invoicedomain.Row, error)
}

// StoreReader lists a tenant's stores in a stable order.
type StoreReader interface {
	ListStores(ctx context.Context, tenantID snowflake.ID) ([]tenantdomain.Store, error)
}

type Service interface {
	Overview(ctx context.Context, req OverviewRequest) (*OverviewResponse, error)
	DashboardMetrics(ctx context.Context, req DashboardRequest) (*DashboardMetricsResponse, error)
}

type OverviewRequest struct {
	Principal *authdomain.Principal
	Store     StoreSelector
	// Sort is optional; the configured default applies when empty.
	Sort string
}

type OverviewResponse struct {
	Scope  ScopeView      `json:"scope"`
	Ranges Windows        `json:"ranges"`
	Tenant TenantInsight  `json:"tenant"`
	Stores []StoreInsight `json:"stores"`
}

type DashboardRequest struct {
	Principal *authdomain.Principal
	Store     StoreSelector
}

type DashboardMetrics struct {
	InvoicesToday       int64   `json:"invoicesToday"`
	TodaySalesGross     float64 `json:"todaySalesGross"`
	TodaySalesPaid      float64 `json:"todaySalesPaid"`
	UnpaidInvoicesToday int64   `json:"unpaidInvoicesToday"`
}

type DashboardMetricsResponse struct {
	Store   ScopeView        `json:"store"`
	Range   TimeRange        `json:"range"`
	Metrics DashboardMetrics `json:"metrics"`
}
