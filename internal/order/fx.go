package order

import (
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	"github.com/Falloukarim/colis-sn-sub000/internal/order/repository"
	"github.com/Falloukarim/colis-sn-sub000/internal/order/service"
	"github.com/Falloukarim/colis-sn-sub000/internal/ordernumber"
	"github.com/Falloukarim/colis-sn-sub000/internal/pricing"
	"github.com/Falloukarim/colis-sn-sub000/internal/qrcode"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(ordernumber.New),
	fx.Provide(qrcode.NewIssuer),
	fx.Provide(newClassifier),
	fx.Provide(service.New),
)

func newClassifier(holder *config.ClassifierConfigHolder) *pricing.Classifier {
	return pricing.NewClassifier(holder)
}
