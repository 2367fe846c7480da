package pickup

import (
	"github.com/Falloukarim/colis-sn-sub000/internal/pickup/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/pickup/service"
	"github.com/Falloukarim/colis-sn-sub000/internal/ratelimit"
	"go.uber.org/fx"
)

var Module = fx.Module("pickup.service",
	fx.Provide(newLock),
	fx.Provide(service.New),
)

func newLock(lock *ratelimit.PickupLock) domain.Lock {
	return lock
}
