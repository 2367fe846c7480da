package service

import (
	"context"
	"fmt"

	clientdomain "github.com/Falloukarim/colis-sn-sub000/internal/client/domain"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	publicorderdomain "github.com/Falloukarim/colis-sn-sub000/internal/publicorder/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/qrcode"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo publicorderdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo publicorderdomain.Repository
}

func New(p Params) publicorderdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("publicorder.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetOrderForPublicView(ctx context.Context, scanned string) (*publicorderdomain.PublicOrderView, error) {
	id, err := qrcode.ExtractOrderID(scanned)
	if err != nil {
		return nil, publicorderdomain.ErrOrderUnavailable
	}

	row, err := s.repo.FindOrder(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("load public order: %w", err)
	}
	if row == nil {
		return nil, publicorderdomain.ErrOrderUnavailable
	}

	status := orderdomain.Status(row.Status)
	view := &publicorderdomain.PublicOrderView{
		OrderNumber:     row.OrderNumber,
		Status:          row.Status,
		StatusLabel:     status.Label(),
		Organization:    row.OrgName,
		ClientFirstName: clientdomain.Client{Name: row.ClientName}.FirstName(),
	}
	if status == orderdomain.StatusRemis {
		view.DateRetrait = row.DateRetrait
	}
	return view, nil
}
