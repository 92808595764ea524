// Package domain contains persistence models for invoicing.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentStatus is stored as free text and compared after normalization.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
)

// NormalizePaymentStatus trims and lowercases a stored status.
func NormalizePaymentStatus(raw string) PaymentStatus {
	return PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// Invoice is a sale document issued by one store.
type Invoice struct {
	ID            snowflake.ID   `gorm:"primaryKey"`
	TenantID      snowflake.ID   `gorm:"not null;index:ix_invoices_tenant_store_created,priority:1"`
	StoreID       snowflake.ID   `gorm:"not null;index:ix_invoices_tenant_store_created,priority:2"`
	Number        string         `gorm:"type:text;not null"`
	PaymentStatus string         `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	Totals        datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index:ix_invoices_tenant_store_created,priority:3"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// BeforeSave stores created_at in UTC. Dialects that keep timestamps as text
// compare them lexically, so every row must share one zone.
func (i *Invoice) BeforeSave(*gorm.DB) error {
	i.CreatedAt = i.CreatedAt.UTC()
	return nil
}

// Row is the projection of an invoice consumed by aggregation.
type Row struct {
	StoreID       snowflake.ID
	PaymentStatus PaymentStatus
	Totals        Totals
	CreatedAt     time.Time
}
