package service

import (
	"context"
	"errors"
	"strings"
	"time"

	auditdomain "github.com/Falloukarim/colis-sn-sub000/internal/audit/domain"
	clientdomain "github.com/Falloukarim/colis-sn-sub000/internal/client/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/clock"
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	"github.com/Falloukarim/colis-sn-sub000/internal/notification/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/observability/metrics"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/Falloukarim/colis-sn-sub000/internal/pricing"
	"github.com/Falloukarim/colis-sn-sub000/internal/qrcode"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxErrorLength caps the sender error kept on a failed notification.
const maxErrorLength = 500

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	OrderRepo  orderdomain.Repository
	ClientRepo clientdomain.Repository
	Sender     domain.Sender
	Issuer     *qrcode.Issuer
	Classifier *pricing.Classifier `optional:"true"`
	AuditSvc   auditdomain.Service `optional:"true"`
	Metrics    *metrics.Metrics    `optional:"true"`
	Clock      clock.Clock         `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	orderRepo  orderdomain.Repository
	clientRepo clientdomain.Repository
	sender     domain.Sender
	issuer     *qrcode.Issuer
	classifier *pricing.Classifier
	auditSvc   auditdomain.Service
	metrics    *metrics.Metrics
	lifecycle  *metrics.LifecycleMetrics
	clock      clock.Clock
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	classifier := p.Classifier
	if classifier == nil {
		classifier = pricing.NewClassifier(config.NewStaticClassifierConfigHolder(config.DefaultClassifierConfig()))
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("notification.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		orderRepo:  p.OrderRepo,
		clientRepo: p.ClientRepo,
		sender:     p.Sender,
		issuer:     p.Issuer,
		classifier: classifier,
		auditSvc:   p.AuditSvc,
		metrics:    p.Metrics,
		lifecycle:  metrics.Lifecycle(),
		clock:      clk,
	}
}

func (s *Service) Notify(ctx context.Context, order orderdomain.Order, channel domain.Channel) (*domain.Result, error) {
	if domain.ParseChannel(string(channel)) == "" {
		return nil, domain.ErrInvalidChannel
	}
	client, failure := s.loadClient(ctx, order)
	return s.send(ctx, order, client, channel, failure)
}

func (s *Service) NotifyReady(ctx context.Context, order orderdomain.Order) error {
	client, failure := s.loadClient(ctx, order)

	channel := domain.ChannelSMS
	if client != nil && strings.TrimSpace(client.WhatsApp) != "" {
		channel = domain.ChannelWhatsApp
	}

	result, err := s.send(ctx, order, client, channel, failure)
	if err != nil {
		return err
	}
	if !result.Sent {
		s.log.Warn("ready notification not delivered",
			zap.String("order_id", order.ID.String()),
			zap.String("channel", string(channel)),
		)
	}
	return nil
}

// Dispatch sends a notification requested by staff for an order of the
// current organization. Email is only reachable from here.
func (s *Service) Dispatch(ctx context.Context, req domain.DispatchRequest) (*domain.Result, error) {
	order, err := s.orderForActor(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	channel := domain.ParseChannel(req.Channel)
	if channel == "" {
		return nil, domain.ErrInvalidChannel
	}
	return s.Notify(ctx, *order, channel)
}

func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]domain.Notification, error) {
	order, err := s.orderForActor(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByOrder(ctx, s.db, order.OrgID, order.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return items, nil
}

// send delivers and records one attempt. A non-empty failure skips delivery
// and records the attempt as failed with that reason.
func (s *Service) send(ctx context.Context, order orderdomain.Order, client *clientdomain.Client, channel domain.Channel, failure string) (*domain.Result, error) {
	firstName := ""
	if client != nil {
		firstName = client.FirstName()
	}
	kind := s.classifier.ResolveKind(order.Kind, order.Description)
	message := domain.ComposeMessage(order, kind, firstName, s.issuer.PublicURL(order.ID))
	destination := destinationFor(client, channel)

	start := time.Now()
	var (
		sent   bool
		reason = failure
	)
	switch {
	case reason != "":
	case destination == "":
		reason = domain.ReasonMissingDestination
	default:
		ok, err := s.sender.Send(ctx, channel, destination, message)
		switch {
		case err != nil:
			reason = failureReason(err)
			s.log.Warn("notification send failed",
				zap.String("order_id", order.ID.String()),
				zap.String("channel", string(channel)),
				zap.Error(err),
			)
		case !ok:
			reason = domain.ReasonRejected
		default:
			sent = true
		}
	}

	notification := domain.Notification{
		ID:          s.genID.Generate(),
		OrgID:       order.OrgID,
		OrderID:     order.ID,
		Channel:     channel,
		Destination: destination,
		Status:      domain.StatusSent,
		Message:     message,
		CreatedAt:   s.clock.Now(),
	}
	if !sent {
		notification.Status = domain.StatusFailed
		notification.Error = &reason
	}

	// The attempt is recorded even when the caller has gone away.
	recordCtx := context.WithoutCancel(ctx)
	if err := s.repo.Insert(recordCtx, s.db, &notification); err != nil {
		return nil, err
	}

	s.lifecycle.ObserveNotification(string(channel), string(notification.Status), time.Since(start))
	s.metrics.RecordNotification(recordCtx, string(channel), string(notification.Status))
	s.audit(recordCtx, notification)

	return &domain.Result{Sent: sent, Notification: notification}, nil
}

// loadClient returns the order's client, or a failure reason when it cannot
// be read. The lookup outlives the request: the order is already committed
// and its notification must be recorded either way.
func (s *Service) loadClient(ctx context.Context, order orderdomain.Order) (*clientdomain.Client, string) {
	client, err := s.clientRepo.FindByID(context.WithoutCancel(ctx), s.db, order.OrgID, order.ClientID)
	if err != nil {
		s.log.Warn("order client lookup failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return nil, domain.ReasonClientLookupFailed
	}
	if client == nil {
		s.log.Warn("order client missing",
			zap.String("order_id", order.ID.String()),
			zap.String("client_id", order.ClientID.String()),
		)
	}
	return client, ""
}

func (s *Service) orderForActor(ctx context.Context, rawID string) (*orderdomain.Order, error) {
	actor, ok := orgcontext.ActorFromContext(ctx)
	if !ok || actor.OrgID == 0 {
		return nil, orderdomain.ErrUnauthorized
	}
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil || id == uuid.Nil {
		return nil, orderdomain.ErrInvalidID
	}
	order, err := s.orderRepo.FindByID(ctx, s.db, actor.OrgID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrNotFound
	}
	return order, nil
}

func (s *Service) audit(ctx context.Context, n domain.Notification) {
	if s.auditSvc == nil {
		return
	}
	orgID := n.OrgID
	targetID := n.OrderID.String()
	metadata := map[string]any{
		"notification_id": n.ID.String(),
		"channel":         string(n.Channel),
		"status":          string(n.Status),
	}
	if n.Error != nil {
		metadata["error"] = *n.Error
	}
	if err := s.auditSvc.AuditLog(ctx, &orgID, "", nil, auditdomain.ActionNotificationSend, "order", &targetID, metadata); err != nil {
		s.log.Warn("failed to write audit log", zap.String("order_id", targetID), zap.Error(err))
	}
}

func destinationFor(client *clientdomain.Client, channel domain.Channel) string {
	if client == nil {
		return ""
	}
	switch channel {
	case domain.ChannelWhatsApp:
		return strings.TrimSpace(client.WhatsApp)
	case domain.ChannelEmail:
		return strings.TrimSpace(client.Email)
	default:
		return strings.TrimSpace(client.Phone)
	}
}

func failureReason(err error) string {
	if errors.Is(err, domain.ErrProviderNotConfigured) {
		return domain.ReasonProviderNotConfigured
	}
	msg := err.Error()
	if len(msg) > maxErrorLength {
		msg = msg[:maxErrorLength]
	}
	return msg
}
