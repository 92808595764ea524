package auth

import (
	"github.com/smallbiznis/clinicops/internal/auth/repository"
	"github.com/smallbiznis/clinicops/internal/auth/service"
	"github.com/smallbiznis/clinicops/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	session.Module,
)
