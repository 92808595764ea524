package insights

import (
	"github.com/smallbiznis/clinicops/internal/cache"
	"github.com/smallbiznis/clinicops/internal/insights/domain"
	"github.com/smallbiznis/clinicops/internal/insights/service"
	invoicedomain "github.com/smallbiznis/clinicops/internal/invoice/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("insights.service",
	cache.Module,
	fx.Provide(func(repo invoicedomain.Repository) domain.InvoiceReader { return repo }),
	fx.Provide(func(stores *cache.StoreCache) domain.StoreReader { return stores }),
	fx.Provide(service.NewService),
)
