package publicorder

import (
	"github.com/Falloukarim/colis-sn-sub000/internal/publicorder/repository"
	"github.com/Falloukarim/colis-sn-sub000/internal/publicorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module(
	"publicorder",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
