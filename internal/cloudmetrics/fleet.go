package cloudmetrics

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// FleetSnapshot is the instance-wide size reported to the fleet registry.
type FleetSnapshot struct {
	Tenants         int64
	Stores          int64
	InvoicesLast24h int64
}

func loadFleet(ctx context.Context, db *gorm.DB, now time.Time) (FleetSnapshot, error) {
	var snapshot FleetSnapshot
	if db == nil {
		return snapshot, nil
	}
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM tenants`).Scan(&snapshot.Tenants).Error; err != nil {
		return snapshot, err
	}
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM stores`).Scan(&snapshot.Stores).Error; err != nil {
		return snapshot, err
	}
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM invoices WHERE created_at >= ?`,
		now.Add(-24*time.Hour),
	).Scan(&snapshot.InvoicesLast24h).Error; err != nil {
		return snapshot, err
	}
	return snapshot, nil
}
