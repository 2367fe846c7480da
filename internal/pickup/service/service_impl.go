package service

import (
	"context"
	"time"

	auditdomain "github.com/Falloukarim/colis-sn-sub000/internal/audit/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/clock"
	"github.com/Falloukarim/colis-sn-sub000/internal/observability/metrics"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/Falloukarim/colis-sn-sub000/internal/pickup/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/qrcode"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     orderdomain.Repository
	Lock     domain.Lock         `optional:"true"`
	AuditSvc auditdomain.Service `optional:"true"`
	Clock    clock.Clock         `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      orderdomain.Repository
	lock      domain.Lock
	auditSvc  auditdomain.Service
	lifecycle *metrics.LifecycleMetrics
	clock     clock.Clock
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("pickup.service"),
		repo:      p.Repo,
		lock:      p.Lock,
		auditSvc:  p.AuditSvc,
		lifecycle: metrics.Lifecycle(),
		clock:     clk,
	}
}

func (s *Service) Validate(ctx context.Context, scanned string) (order *orderdomain.Order, err error) {
	started := time.Now()
	defer func() {
		s.lifecycle.ObservePickup(err, time.Since(started))
	}()

	actor, order, err := s.resolve(ctx, scanned)
	if err != nil {
		return nil, err
	}
	if order.Status != orderdomain.StatusDisponible {
		s.lifecycle.IncTransitionRejected(string(order.Status), string(orderdomain.StatusRemis))
		return nil, domain.NotAvailable(order.Status)
	}

	if s.lock != nil {
		release, ok, lockErr := s.lock.Acquire(ctx, order.ID.String())
		if lockErr != nil {
			s.log.Warn("pickup lock unavailable, relying on conditional write",
				zap.String("order_id", order.ID.String()),
				zap.Error(lockErr),
			)
		} else {
			if !ok {
				return nil, domain.ErrScanInProgress
			}
			defer release()
		}
	}

	now := s.clock.Now()
	rows, err := s.repo.TransitionStatus(ctx, s.db, orderdomain.StatusTransition{
		OrgID:     actor.OrgID,
		OrderID:   order.ID,
		From:      orderdomain.StatusDisponible,
		To:        orderdomain.StatusRemis,
		UpdatedAt: now,
		Pickup: &orderdomain.PickupStamp{
			DateRetrait: now,
			PickedUpBy:  actor.UserID,
			ScannedAt:   now,
		},
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		current, err := s.repo.FindByID(ctx, s.db, actor.OrgID, order.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, orderdomain.ErrNotFound
		}
		s.lifecycle.IncTransitionRejected(string(current.Status), string(orderdomain.StatusRemis))
		return nil, domain.NotAvailable(current.Status)
	}

	pickedUpBy := int64(actor.UserID)
	order.Status = orderdomain.StatusRemis
	order.DateRetrait = &now
	order.ScannedAt = &now
	order.PickedUpBy = &pickedUpBy
	order.UpdatedAt = now
	s.lifecycle.IncTransition(string(orderdomain.StatusDisponible), string(orderdomain.StatusRemis))

	s.log.Info("order handed over",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("picked_up_by", actor.UserID.String()),
	)
	s.audit(ctx, *order)
	return order, nil
}

func (s *Service) Preview(ctx context.Context, scanned string) (*orderdomain.Order, error) {
	_, order, err := s.resolve(ctx, scanned)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// resolve runs the checks shared by Validate and Preview: credential shape,
// existence, then tenant ownership.
func (s *Service) resolve(ctx context.Context, scanned string) (orgcontext.Actor, *orderdomain.Order, error) {
	actor, ok := orgcontext.ActorFromContext(ctx)
	if !ok || actor.OrgID == 0 {
		return orgcontext.Actor{}, nil, orderdomain.ErrUnauthorized
	}

	orderID, err := qrcode.ExtractOrderID(scanned)
	if err != nil {
		return actor, nil, err
	}

	order, err := s.repo.FindByIDAnyOrg(ctx, s.db, orderID)
	if err != nil {
		return actor, nil, err
	}
	if order == nil {
		return actor, nil, orderdomain.ErrNotFound
	}
	if order.OrgID != actor.OrgID {
		s.log.Warn("scan of another organization's order refused",
			zap.String("order_id", order.ID.String()),
			zap.String("actor_org_id", actor.OrgID.String()),
		)
		return actor, nil, domain.ErrForeignOrder
	}
	return actor, order, nil
}

func (s *Service) audit(ctx context.Context, order orderdomain.Order) {
	if s.auditSvc == nil {
		return
	}
	orgID := order.OrgID
	targetID := order.ID.String()
	err := s.auditSvc.AuditLog(ctx, &orgID, "", nil, auditdomain.ActionOrderPickup, "order", &targetID, map[string]any{
		"order_number": order.OrderNumber,
		"date_retrait": order.DateRetrait.Format(time.RFC3339),
	})
	if err != nil {
		s.log.Warn("failed to write audit log", zap.String("order_id", targetID), zap.Error(err))
	}
}
