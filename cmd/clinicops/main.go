package main

import (
	"github.com/smallbiznis/clinicops/internal/clock"
	"github.com/smallbiznis/clinicops/internal/config"
	"github.com/smallbiznis/clinicops/internal/migration"
	"github.com/smallbiznis/clinicops/internal/observability"
	"github.com/smallbiznis/clinicops/internal/server"
	"github.com/smallbiznis/clinicops/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		migration.Module,

		server.Module,
	).Run()
}
