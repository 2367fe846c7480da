package client

import (
	"github.com/Falloukarim/colis-sn-sub000/internal/client/repository"
	"github.com/Falloukarim/colis-sn-sub000/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
