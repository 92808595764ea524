package migration

import (
	"github.com/smallbiznis/clinicops/internal/clock"
	"github.com/smallbiznis/clinicops/internal/config"
	"github.com/smallbiznis/clinicops/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, clk clock.Clock, log *zap.Logger) error {
		if err := Apply(conn); err != nil {
			return err
		}

		if cfg.IsProduction() || !cfg.Bootstrap.EnsureDemoTenant {
			return nil
		}
		result, err := seed.EnsureDemoTenant(conn, clk)
		if err != nil {
			return err
		}
		log.Info("demo tenant ready",
			zap.String("tenant_id", result.TenantID.String()),
			zap.Int("stores", len(result.StoreIDs)),
			zap.String("owner_session_token", result.OwnerToken),
		)
		return nil
	}),
)
