package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	auditdomain "github.com/Falloukarim/colis-sn-sub000/internal/audit/domain"
	clientdomain "github.com/Falloukarim/colis-sn-sub000/internal/client/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/clock"
	"github.com/Falloukarim/colis-sn-sub000/internal/observability/metrics"
	"github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/ordernumber"
	orgdomain "github.com/Falloukarim/colis-sn-sub000/internal/organization/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/Falloukarim/colis-sn-sub000/internal/pricing"
	"github.com/Falloukarim/colis-sn-sub000/internal/qrcode"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxInsertAttempts bounds regeneration when the unique index rejects a
// number that passed the existence check.
const maxInsertAttempts = 5

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       domain.Repository
	ClientRepo clientdomain.Repository
	OrgSvc     orgdomain.Service
	AuditSvc   auditdomain.Service  `optional:"true"`
	Notifier   domain.ReadyNotifier `optional:"true"`
	Numbers    *ordernumber.Generator
	Issuer     *qrcode.Issuer
	Classifier *pricing.Classifier
	Metrics    *metrics.Metrics `optional:"true"`
	Clock      clock.Clock      `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       domain.Repository
	clientRepo clientdomain.Repository
	orgSvc     orgdomain.Service
	auditSvc   auditdomain.Service
	notifier   domain.ReadyNotifier
	numbers    *ordernumber.Generator
	issuer     *qrcode.Issuer
	classifier *pricing.Classifier
	metrics    *metrics.Metrics
	lifecycle  *metrics.LifecycleMetrics
	clock      clock.Clock
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("order.service"),
		repo:       p.Repo,
		clientRepo: p.ClientRepo,
		orgSvc:     p.OrgSvc,
		auditSvc:   p.AuditSvc,
		notifier:   p.Notifier,
		numbers:    p.Numbers,
		issuer:     p.Issuer,
		classifier: p.Classifier,
		metrics:    p.Metrics,
		lifecycle:  metrics.Lifecycle(),
		clock:      clk,
	}
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.orgSvc.EnsureActive(ctx, actor.OrgID); err != nil {
		return nil, err
	}

	var created *domain.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.createOne(ctx, tx, actor.OrgID, req, false)
		if err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCreate(ctx, *created)
	return created, nil
}

// CreateMultipleOrders creates every order or none. Numbers are assigned
// one after the other so each sees the previous ones as taken.
func (s *Service) CreateMultipleOrders(ctx context.Context, req domain.CreateMultipleOrdersRequest) ([]domain.Order, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.Orders) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if len(req.Orders) > domain.MaxBatchSize {
		return nil, domain.ErrBatchTooLarge
	}
	if err := s.orgSvc.EnsureActive(ctx, actor.OrgID); err != nil {
		return nil, err
	}

	created := make([]domain.Order, 0, len(req.Orders))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, item := range req.Orders {
			order, err := s.createOne(ctx, tx, actor.OrgID, item, true)
			if err != nil {
				return fmt.Errorf("order %d: %w", i+1, err)
			}
			created = append(created, *order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, order := range created {
		s.afterCreate(ctx, order)
	}
	return created, nil
}

func (s *Service) createOne(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, req domain.CreateOrderRequest, clientScheme bool) (*domain.Order, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, domain.ErrInvalidDescription
	}
	clientID, err := parseSnowflake(req.ClientID)
	if err != nil {
		return nil, domain.ErrInvalidClient
	}
	if req.Price == nil {
		return nil, domain.ErrMissingPrice
	}
	if err := validateFactors(req.Weight, req.Quantity, req.Price); err != nil {
		return nil, err
	}
	kind, err := s.resolveRequestedKind(req.Kind, description)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindByID(ctx, tx, orgID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}

	now := s.clock.Now()
	factors := pricing.Factors{Weight: req.Weight, Quantity: req.Quantity, UnitPrice: req.Price}
	order := &domain.Order{
		ID:                  uuid.New(),
		OrgID:               orgID,
		ClientID:            client.ID,
		Description:         description,
		Kind:                kind,
		Status:              domain.StatusEnCours,
		Poids:               domain.NullFrom(req.Weight),
		Quantite:            req.Quantity,
		PrixKg:              domain.NullFrom(req.Price),
		MontantTotal:        pricing.ComputeTotal(kind, factors),
		DateLivraisonPrevue: req.ExpectedDeliveryDate,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.insertWithNumber(ctx, tx, order, client, clientScheme); err != nil {
		return nil, err
	}

	credential, err := s.issuer.Issue(order.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.UpdateQRCode(ctx, tx, orgID, order.ID, credential.Payload, now); err != nil {
		return nil, err
	}
	order.QRCode = credential.Payload

	return order, nil
}

// insertWithNumber assigns a fresh number and inserts the order inside a
// savepoint, regenerating when the unique index reports a collision.
func (s *Service) insertWithNumber(ctx context.Context, tx *gorm.DB, order *domain.Order, client *clientdomain.Client, clientScheme bool) error {
	exists := func(ctx context.Context, number string) (bool, error) {
		return s.repo.OrderNumberExists(ctx, tx, number)
	}

	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		var (
			number string
			err    error
		)
		if clientScheme {
			number, err = s.numbers.GenerateForClient(ctx, client.Name, client.Phone, exists)
		} else {
			number, err = s.numbers.Generate(ctx, exists)
		}
		if err != nil {
			return err
		}
		order.OrderNumber = number

		err = tx.Transaction(func(sp *gorm.DB) error {
			return s.repo.Insert(ctx, sp, order)
		})
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
		s.lifecycle.IncNumberCollision()
		s.log.Warn("order number taken on insert, regenerating",
			zap.String("order_number", number),
			zap.Int("attempt", attempt),
		)
	}
	return ordernumber.ErrExhausted
}

func (s *Service) resolveRequestedKind(raw, description string) (pricing.Kind, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.classifier.Classify(description), nil
	}
	kind := pricing.ParseKind(raw)
	if !kind.Valid() {
		return "", domain.ErrInvalidKind
	}
	if heuristic, agree := s.classifier.Reconcile(kind, description); !agree {
		s.log.Warn("explicit kind disagrees with description",
			zap.String("kind", string(kind)),
			zap.String("heuristic", string(heuristic)),
			zap.String("description", description),
		)
	}
	return kind, nil
}

func (s *Service) afterCreate(ctx context.Context, order domain.Order) {
	s.metrics.RecordOrderCreated(ctx, order.OrgID.String(), string(order.Kind))
	s.audit(ctx, order, auditdomain.ActionOrderCreate, map[string]any{
		"order_number":  order.OrderNumber,
		"client_id":     order.ClientID.String(),
		"kind":          string(order.Kind),
		"montant_total": order.MontantTotal.String(),
	})
}

// UpdateStatus moves an order from en_cours to disponible. Handover to
// remis belongs to the pickup verifier.
func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (*domain.Order, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseOrderID(req.OrderID)
	if err != nil {
		return nil, err
	}
	target := domain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if !target.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	order, err := s.repo.FindByID(ctx, s.db, actor.OrgID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if target != domain.StatusDisponible || order.Status != domain.StatusEnCours {
		s.lifecycle.IncTransitionRejected(string(order.Status), string(target))
		return nil, domain.InvalidTransition(order.Status, target)
	}

	if err := validateFactors(req.Weight, req.Quantity, req.Price); err != nil {
		return nil, err
	}
	kind := s.classifier.ResolveKind(order.Kind, order.Description)
	factors := mergeFactors(order.Factors(), req.Weight, req.Quantity, req.Price)
	if err := requireReady(kind, factors); err != nil {
		return nil, err
	}

	from := order.Status
	pricingUpdate := toPricingUpdate(kind, factors)
	now := s.clock.Now()
	rows, err := s.repo.TransitionStatus(ctx, s.db, domain.StatusTransition{
		OrgID:     actor.OrgID,
		OrderID:   order.ID,
		From:      from,
		To:        target,
		UpdatedAt: now,
		Pricing:   &pricingUpdate,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.rejectStale(ctx, actor.OrgID, order.ID, target)
	}

	order.Status = target
	order.Poids = pricingUpdate.Poids
	order.Quantite = pricingUpdate.Quantite
	order.PrixKg = pricingUpdate.PrixKg
	order.MontantTotal = pricingUpdate.MontantTotal
	order.UpdatedAt = now
	s.lifecycle.IncTransition(string(from), string(target))

	if s.notifier != nil {
		if err := s.notifier.NotifyReady(ctx, *order); err != nil {
			s.log.Warn("ready notification failed",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.audit(ctx, *order, auditdomain.ActionOrderStatusUpdate, map[string]any{
		"from":          string(from),
		"to":            string(target),
		"montant_total": order.MontantTotal.String(),
	})
	return order, nil
}

// rejectStale reloads an order whose conditional write matched nothing and
// reports the state that won.
func (s *Service) rejectStale(ctx context.Context, orgID snowflake.ID, id uuid.UUID, target domain.Status) error {
	current, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNotFound
	}
	s.lifecycle.IncTransitionRejected(string(current.Status), string(target))
	return domain.InvalidTransition(current.Status, target)
}

func (s *Service) UpdateDetails(ctx context.Context, req domain.UpdateDetailsRequest) (*domain.Order, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseOrderID(req.OrderID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, s.db, actor.OrgID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.Status.Terminal() {
		return nil, domain.ErrOrderAlreadyRemis
	}

	description := order.Description
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, domain.ErrInvalidDescription
		}
	}
	if err := validateFactors(req.Weight, req.Quantity, req.Price); err != nil {
		return nil, err
	}
	kind := s.classifier.ResolveKind(order.Kind, description)
	factors := mergeFactors(order.Factors(), req.Weight, req.Quantity, req.Price)
	if order.Status == domain.StatusDisponible {
		if err := requireReady(kind, factors); err != nil {
			return nil, err
		}
	}
	deliveryDate := order.DateLivraisonPrevue
	if req.ExpectedDeliveryDate != nil {
		deliveryDate = req.ExpectedDeliveryDate
	}

	pricingUpdate := toPricingUpdate(kind, factors)
	now := s.clock.Now()
	rows, err := s.repo.UpdateDetails(ctx, s.db, domain.DetailsUpdate{
		OrgID:               actor.OrgID,
		OrderID:             order.ID,
		Expected:            order.Status,
		Description:         description,
		Pricing:             pricingUpdate,
		DateLivraisonPrevue: deliveryDate,
		UpdatedAt:           now,
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
			return nil, domain.ErrNotFound
		}
		if current.Status.Terminal() {
			return nil, domain.ErrOrderAlreadyRemis
		}
		return nil, domain.ErrConcurrentUpdate.WithState(string(current.Status))
	}

	order.Description = description
	order.Poids = pricingUpdate.Poids
	order.Quantite = pricingUpdate.Quantite
	order.PrixKg = pricingUpdate.PrixKg
	order.MontantTotal = pricingUpdate.MontantTotal
	order.DateLivraisonPrevue = deliveryDate
	order.UpdatedAt = now

	s.audit(ctx, *order, auditdomain.ActionOrderUpdate, map[string]any{
		"status":        string(order.Status),
		"montant_total": order.MontantTotal.String(),
	})
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	orderID, err := parseOrderID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindByID(ctx, s.db, orgID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, domain.ErrNotFound
	}
	order, err := s.repo.FindByNumber(ctx, s.db, orgID, number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, req domain.ListOrdersRequest) (domain.ListOrdersResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.ListOrdersResponse{}, domain.ErrUnauthorized
	}

	if req.PageToken != "" {
		if _, err := pagination.DecodeCursor(req.PageToken); err != nil {
			return domain.ListOrdersResponse{}, domain.ErrInvalidPageToken
		}
	}

	filter := domain.ListOrderFilter{
		Search: strings.ToLower(strings.TrimSpace(req.Search)),
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := domain.Status(strings.ToLower(raw))
		if !status.Valid() {
			return domain.ListOrdersResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.ClientID); raw != "" {
		clientID, err := parseSnowflake(raw)
		if err != nil {
			return domain.ListOrdersResponse{}, domain.ErrInvalidClient
		}
		filter.ClientID = clientID
	}

	pageSize := pagination.NormalizeSize(int(req.PageSize))
	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListOrdersResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(order *domain.Order) pagination.Cursor {
		return pagination.Cursor{
			ID:        order.ID.String(),
			CreatedAt: order.CreatedAt.Format(time.RFC3339Nano),
		}
	})

	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}
	return domain.ListOrdersResponse{PageInfo: pageInfo, Orders: orders}, nil
}

// ReissueQRCode renders the credential again and stores it. The payload is
// deterministic, so repeated calls leave the same value.
func (s *Service) ReissueQRCode(ctx context.Context, id string) (*domain.Order, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	orderID, err := parseOrderID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindByID(ctx, s.db, actor.OrgID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.Status.Terminal() {
		return nil, domain.ErrOrderAlreadyRemis
	}

	credential, err := s.issuer.Issue(order.ID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	rows, err := s.repo.UpdateQRCode(ctx, s.db, actor.OrgID, order.ID, credential.Payload, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrOrderAlreadyRemis
	}
	order.QRCode = credential.Payload
	order.UpdatedAt = now

	s.audit(ctx, *order, auditdomain.ActionOrderQRReissue, nil)
	return order, nil
}

func (s *Service) audit(ctx context.Context, order domain.Order, action string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	orgID := order.OrgID
	targetID := order.ID.String()
	if err := s.auditSvc.AuditLog(ctx, &orgID, "", nil, action, "order", &targetID, metadata); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("action", action),
			zap.String("order_id", targetID),
			zap.Error(err),
		)
	}
}

func requireActor(ctx context.Context) (orgcontext.Actor, error) {
	actor, ok := orgcontext.ActorFromContext(ctx)
	if !ok || actor.OrgID == 0 {
		return orgcontext.Actor{}, domain.ErrUnauthorized
	}
	return actor, nil
}

func parseOrderID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}

func parseSnowflake(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, domain.ErrInvalidClient
	}
	return id, nil
}

// validateFactors checks only the values the caller supplied.
func validateFactors(weight *decimal.Decimal, quantity *int64, price *decimal.Decimal) error {
	if price != nil && !price.IsPositive() {
		return domain.ErrInvalidPrice
	}
	if weight != nil && !weight.IsPositive() {
		return domain.ErrInvalidWeight
	}
	if quantity != nil && *quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// mergeFactors takes request values first and stored ones otherwise.
func mergeFactors(stored pricing.Factors, weight *decimal.Decimal, quantity *int64, price *decimal.Decimal) pricing.Factors {
	merged := stored
	if weight != nil {
		merged.Weight = weight
	}
	if quantity != nil {
		merged.Quantity = quantity
	}
	if price != nil {
		merged.UnitPrice = price
	}
	return merged
}

func requireReady(kind pricing.Kind, f pricing.Factors) error {
	if f.ReadyForPickup(kind) {
		return nil
	}
	if f.UnitPrice == nil || !f.UnitPrice.IsPositive() {
		return domain.ErrMissingPrice
	}
	if kind == pricing.KindService {
		return domain.ErrMissingQuantity
	}
	return domain.ErrMissingWeight
}

func toPricingUpdate(kind pricing.Kind, f pricing.Factors) domain.PricingUpdate {
	return domain.PricingUpdate{
		Poids:        domain.NullFrom(f.Weight),
		Quantite:     f.Quantity,
		PrixKg:       domain.NullFrom(f.UnitPrice),
		MontantTotal: pricing.ComputeTotal(kind, f),
	}
}
