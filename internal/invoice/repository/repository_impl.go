package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clinicops/internal/invoice/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

type invoiceRow struct {
	StoreID       snowflake.ID
	PaymentStatus string
	Totals        datatypes.JSON
	CreatedAt     time.Time
}

func (r *repository) FindInvoices(ctx context.Context, tenantID snowflake.ID, storeIDs []snowflake.ID, start, end time.Time) ([]domain.Row, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}

	var records []invoiceRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT store_id, payment_status, totals, created_at
		 FROM invoices
		 WHERE tenant_id = ?
		   AND store_id IN ?
		   AND created_at >= ?
		   AND created_at < ?`,
		tenantID,
		storeIDs,
		start.UTC(),
		end.UTC(),
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}

	rows := make([]domain.Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, domain.Row{
			StoreID:       record.StoreID,
			PaymentStatus: domain.NormalizePaymentStatus(record.PaymentStatus),
			Totals:        domain.DecodeTotals(record.Totals),
			CreatedAt:     record.CreatedAt.UTC(),
		})
	}
	return rows, nil
}
