package repository

import (
	"context"

	publicorderdomain "github.com/Falloukarim/colis-sn-sub000/internal/publicorder/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() publicorderdomain.Repository {
	return &repo{}
}

func (r *repo) FindOrder(ctx context.Context, db *gorm.DB, id uuid.UUID) (*publicorderdomain.OrderRecord, error) {
	if db == nil || id == uuid.Nil {
		return nil, nil
	}

	query := `
		SELECT o.id, o.org_id, o.order_number, o.status, o.date_retrait,
			g.name AS org_name, c.name AS client_name
		FROM orders o
		JOIN organizations g ON g.id = o.org_id
		LEFT JOIN clients c ON c.id = o.client_id AND c.org_id = o.org_id
		WHERE o.id = ?
		LIMIT 1`

	var row publicorderdomain.OrderRecord
	if err := db.WithContext(ctx).Raw(query, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
