package notification

import (
	"github.com/Falloukarim/colis-sn-sub000/internal/notification/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/notification/repository"
	"github.com/Falloukarim/colis-sn-sub000/internal/notification/sender"
	"github.com/Falloukarim/colis-sn-sub000/internal/notification/service"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(sender.New),
	fx.Provide(service.New),
	fx.Provide(readyNotifier),
)

func readyNotifier(svc domain.Service) orderdomain.ReadyNotifier {
	return svc
}
