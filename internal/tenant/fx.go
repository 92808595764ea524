package tenant

import (
	"github.com/smallbiznis/clinicops/internal/tenant/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.repository",
	fx.Provide(repository.NewRepository),
)
