package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	authdomain "github.com/smallbiznis/clinicops/internal/auth/domain"
	"github.com/smallbiznis/clinicops/internal/auth/session"
	"github.com/smallbiznis/clinicops/internal/clock"
	"github.com/smallbiznis/clinicops/internal/insights/timerange"
	invoicedomain "github.com/smallbiznis/clinicops/internal/invoice/domain"
	tenantdomain "github.com/smallbiznis/clinicops/internal/tenant/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	demoTenantName = "Demo Optics"
	demoOwnerEmail = "owner@demo-optics.local"
	demoOwnerName  = "Demo Owner"
	demoSessionTTL = 30 * 24 * time.Hour
)

var demoStores = []struct {
	Name string
	City string
}{
	{Name: "Indiranagar", City: "Bengaluru"},
	{Name: "Bandra West", City: "Mumbai"},
}

var demoInvoices = []struct {
	Status  string
	Total   string
	AgeDays int
}{
	{Status: "paid", Total: "2450.00", AgeDays: 0},
	{Status: "unpaid", Total: "1200.00", AgeDays: 0},
	{Status: "partial", Total: "3999.50", AgeDays: 1},
	{Status: "paid", Total: "850.00", AgeDays: 1},
	{Status: "paid", Total: "5200.00", AgeDays: 35},
}

// DemoResult describes the seeded demo tenant.
type DemoResult struct {
	TenantID   snowflake.ID
	StoreIDs   []snowflake.ID
	OwnerID    snowflake.ID
	OwnerToken string
}

// EnsureDemoTenant seeds a demo tenant with two stores, an owner, a few
// invoices and a fresh owner session. Existing rows are reused. Invoice ages
// are civil days as read from clk, so "today" rows land in today's window.
func EnsureDemoTenant(db *gorm.DB, clk clock.Clock) (DemoResult, error) {
	if db == nil {
		return DemoResult{}, errors.New("seed database handle is required")
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	now := clk.Now().UTC()

	node, err := snowflake.NewNode(1)
	if err != nil {
		return DemoResult{}, err
	}

	var result DemoResult
	ctx := context.Background()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, created, err := ensureTenantTx(ctx, tx, node, now)
		if err != nil {
			return err
		}
		result.TenantID = tenant.ID

		stores, err := ensureStoresTx(ctx, tx, node, tenant.ID, now)
		if err != nil {
			return err
		}
		for _, store := range stores {
			result.StoreIDs = append(result.StoreIDs, store.ID)
		}

		owner, err := ensureOwnerTx(ctx, tx, node, tenant.ID, stores, now)
		if err != nil {
			return err
		}
		result.OwnerID = owner.ID

		if created {
			if err := seedInvoicesTx(ctx, tx, node, tenant.ID, stores, timerange.NewResolver(clk), now); err != nil {
				return err
			}
		}

		token, err := issueSessionTx(ctx, tx, node, owner.ID, now)
		if err != nil {
			return err
		}
		result.OwnerToken = token
		return nil
	})
	return result, err
}

func ensureTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) (tenantdomain.Tenant, bool, error) {
	var tenant tenantdomain.Tenant
	err := tx.WithContext(ctx).Where("slug = ?", slug.Make(demoTenantName)).First(&tenant).Error
	if err == nil {
		return tenant, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return tenant, false, err
	}

	tenant = tenantdomain.Tenant{
		ID:        node.Generate(),
		Name:      demoTenantName,
		Slug:      slug.Make(demoTenantName),
		CreatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&tenant).Error; err != nil {
		return tenant, false, err
	}
	return tenant, true, nil
}

func ensureStoresTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, tenantID snowflake.ID, now time.Time) ([]tenantdomain.Store, error) {
	stores := make([]tenantdomain.Store, 0, len(demoStores))
	for i, demo := range demoStores {
		code := slug.Make(demo.Name)

		var store tenantdomain.Store
		err := tx.WithContext(ctx).Where("tenant_id = ? AND code = ?", tenantID, code).First(&store).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			// keep creation order stable for the default store
			store = tenantdomain.Store{
				ID:        node.Generate(),
				TenantID:  tenantID,
				Name:      demo.Name,
				Code:      code,
				City:      demo.City,
				CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
			}
			if err := tx.WithContext(ctx).Create(&store).Error; err != nil {
				return nil, err
			}
		}
		stores = append(stores, store)
	}
	return stores, nil
}

func ensureOwnerTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, tenantID snowflake.ID, stores []tenantdomain.Store, now time.Time) (authdomain.User, error) {
	var user authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", strings.ToLower(demoOwnerEmail)).First(&user).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, err
	}

	user = authdomain.User{
		ID:        node.Generate(),
		TenantID:  tenantID,
		Name:      demoOwnerName,
		Email:     strings.ToLower(demoOwnerEmail),
		Role:      string(authdomain.RoleOwner),
		CreatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return user, err
	}

	if len(stores) > 0 {
		assignment := tenantdomain.UserStore{
			UserID:    user.ID,
			StoreID:   stores[0].ID,
			CreatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&assignment).Error; err != nil {
			return user, err
		}
	}
	return user, nil
}

func seedInvoicesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, tenantID snowflake.ID, stores []tenantdomain.Store, ranges *timerange.Resolver, now time.Time) error {
	for i, store := range stores {
		for j, demo := range demoInvoices {
			invoice := invoicedomain.Invoice{
				ID:            node.Generate(),
				TenantID:      tenantID,
				StoreID:       store.ID,
				Number:        fmt.Sprintf("%s-%04d", strings.ToUpper(store.Code), j+1),
				PaymentStatus: demo.Status,
				Totals:        datatypes.JSON(fmt.Sprintf(`{"total":%s,"subTotal":%s,"discount":0,"paymentMode":"cash"}`, demo.Total, demo.Total)),
				CreatedAt:     civilDayInstant(ranges, now, demo.AgeDays, time.Duration(i+1)*time.Minute),
			}
			if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// civilDayInstant places a row ageDays civil days back at the same time of
// day as now, moved back by skew but never before that day starts.
func civilDayInstant(ranges *timerange.Resolver, now time.Time, ageDays int, skew time.Duration) time.Time {
	today := ranges.DayRange(0)
	day := ranges.DayRange(-ageDays)
	at := day.Start.Add(now.Sub(today.Start)).Add(-skew)
	if at.Before(day.Start) {
		return day.Start
	}
	return at
}

func issueSessionTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, userID snowflake.ID, now time.Time) (string, error) {
	token, err := session.NewToken()
	if err != nil {
		return "", err
	}

	record := authdomain.Session{
		ID:        node.Generate(),
		UserID:    userID,
		TokenHash: session.HashToken(token),
		ExpiresAt: now.Add(demoSessionTTL),
		CreatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		return "", err
	}
	return token, nil
}
