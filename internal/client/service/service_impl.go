package service

import (
	"context"
	"strings"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/client/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/clock"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
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

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: clk,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Client{}, domain.ErrInvalidOrganization
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyContact(&client, req.Name, req.Phone, req.WhatsApp, req.Email, req.Address); err != nil {
		return domain.Client{}, err
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}

	return client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListClientResponse{}, domain.ErrInvalidOrganization
	}

	if req.PageToken != "" {
		if _, err := pagination.DecodeCursor(req.PageToken); err != nil {
			return domain.ListClientResponse{}, domain.ErrInvalidPageToken
		}
	}

	filter := domain.ListClientFilter{
		Name:  strings.ToLower(strings.TrimSpace(req.Name)),
		Phone: strings.TrimSpace(req.Phone),
	}
	if filter.Phone != "" {
		if normalized, ok := domain.NormalizePhone(filter.Phone); ok {
			filter.Phone = strings.TrimPrefix(normalized, "+")
		}
	}

	pageSize := pagination.NormalizeSize(int(req.PageSize))
	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(client *domain.Client) pagination.Cursor {
		return pagination.Cursor{
			ID:        client.ID.String(),
			CreatedAt: client.CreatedAt.Format(time.RFC3339Nano),
		}
	})

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}

	return domain.ListClientResponse{PageInfo: pageInfo, Clients: clients}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetClientRequest) (domain.Client, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Client{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.Client, error) {
	current, err := s.GetByID(ctx, domain.GetClientRequest{ID: req.ID})
	if err != nil {
		return domain.Client{}, err
	}

	updated := current
	if err := applyContact(&updated,
		valueOr(req.Name, current.Name),
		valueOr(req.Phone, current.Phone),
		valueOr(req.WhatsApp, current.WhatsApp),
		valueOr(req.Email, current.Email),
		valueOr(req.Address, current.Address),
	); err != nil {
		return domain.Client{}, err
	}
	updated.UpdatedAt = s.clock.Now()

	rows, err := s.repo.Update(ctx, s.db, &updated)
	if err != nil {
		return domain.Client{}, err
	}
	if rows == 0 {
		return domain.Client{}, domain.ErrNotFound
	}
	return updated, nil
}

func applyContact(client *domain.Client, name, phone, whatsapp, email, address string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidName
	}

	normalizedPhone, ok := domain.NormalizePhone(phone)
	if !ok {
		return domain.ErrInvalidPhone
	}

	var normalizedWhatsApp string
	if strings.TrimSpace(whatsapp) != "" {
		normalizedWhatsApp, ok = domain.NormalizePhone(whatsapp)
		if !ok {
			return domain.ErrInvalidWhatsApp
		}
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && (!strings.Contains(email, "@") || strings.ContainsAny(email, " ,;")) {
		return domain.ErrInvalidEmail
	}

	client.Name = name
	client.Phone = normalizedPhone
	client.WhatsApp = normalizedWhatsApp
	client.Email = email
	client.Address = strings.TrimSpace(address)
	return nil
}

func valueOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
