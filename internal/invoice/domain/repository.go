package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, invoice *Invoice) error
	// FindInvoices returns invoices created in [start, end) for the given
	// stores. An empty store list returns no rows without querying.
	FindInvoices(ctx context.Context, tenantID snowflake.ID, storeIDs []snowflake.ID, start, end time.Time) ([]Row, error)
}
