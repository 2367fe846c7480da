package organization

import (
	"github.com/Falloukarim/colis-sn-sub000/internal/organization/repository"
	"github.com/Falloukarim/colis-sn-sub000/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
