package service

import (
	"context"
	"strings"

	"github.com/Falloukarim/colis-sn-sub000/internal/clock"
	"github.com/Falloukarim/colis-sn-sub000/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &service{
		db:    p.DB,
		log:   p.Log.Named("organization.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: clk,
	}
}

func (s *service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	orgID := s.genID.Generate()
	orgSlug, err := s.uniqueSlug(ctx, name, orgID)
	if err != nil {
		return nil, err
	}

	trialEnd := now.Add(domain.TrialPeriod)
	org := domain.Organization{
		ID:                  orgID,
		Name:                name,
		Slug:                orgSlug,
		SubscriptionStatus:  domain.SubscriptionActive,
		SubscriptionEndDate: &trialEnd,
		Metadata:            datatypes.JSONMap{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrganization(ctx, org); err != nil {
			return err
		}

		member := domain.OrganizationMember{
			ID:        s.genID.Generate(),
			OrgID:     orgID,
			UserID:    userID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		}
		return repo.AddMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("organization created",
		zap.String("org_id", orgID.String()),
		zap.String("owner_user_id", userID.String()),
	)

	return toResponse(org), nil
}

func (s *service) ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]domain.OrganizationListResponseItem, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	items, err := s.repo.ListOrganizationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.OrganizationListResponseItem, 0, len(items))
	for _, item := range items {
		resp = append(resp, domain.OrganizationListResponseItem{
			ID:        item.ID.String(),
			Name:      item.Name,
			Role:      item.Role,
			CreatedAt: item.CreatedAt,
		})
	}

	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.OrganizationResponse, error) {
	raw := strings.TrimSpace(id)
	if raw == "" {
		return nil, domain.ErrInvalidOrganization
	}
	orgID, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, domain.ErrInvalidOrganization
	}

	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrOrganizationNotFound
	}
	return toResponse(*org), nil
}

func (s *service) GetMembership(ctx context.Context, orgID, userID snowflake.ID) (*domain.OrganizationMember, error) {
	if orgID == 0 || userID == 0 {
		return nil, domain.ErrNotMember
	}
	member, err := s.repo.FindMember(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, domain.ErrNotMember
	}
	return member, nil
}

// EnsureActive fails with ErrSubscriptionInactive unless the organization
// holds an active, unexpired subscription.
func (s *service) EnsureActive(ctx context.Context, orgID snowflake.ID) error {
	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org == nil {
		return domain.ErrOrganizationNotFound
	}
	if !org.SubscriptionActiveAt(s.clock.Now()) {
		s.log.Info("subscription gate refused",
			zap.String("org_id", orgID.String()),
			zap.String("subscription_status", string(org.SubscriptionStatus)),
		)
		return domain.ErrSubscriptionInactive
	}
	return nil
}

func (s *service) UpdateSubscription(ctx context.Context, orgID snowflake.ID, req domain.UpdateSubscriptionRequest) error {
	if !req.Status.Valid() {
		return domain.ErrInvalidSubscription
	}
	rows, err := s.repo.UpdateSubscription(ctx, orgID, req.Status, req.EndDate, s.clock.Now())
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}

func (s *service) uniqueSlug(ctx context.Context, name string, orgID snowflake.ID) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "org"
	}
	exists, err := s.repo.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}
	return base + "-" + strings.ToLower(orgID.Base36()), nil
}

func toResponse(org domain.Organization) *domain.OrganizationResponse {
	return &domain.OrganizationResponse{
		ID:                  org.ID.String(),
		Name:                org.Name,
		Slug:                org.Slug,
		SubscriptionStatus:  string(org.SubscriptionStatus),
		SubscriptionEndDate: org.SubscriptionEndDate,
	}
}
