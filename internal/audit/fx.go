package audit

import (
	"github.com/Falloukarim/colis-sn-sub000/internal/audit/repository"
	"github.com/Falloukarim/colis-sn-sub000/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
