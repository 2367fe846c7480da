package repository

import (
	"context"

	"github.com/Falloukarim/colis-sn-sub000/internal/notification/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notifications (id, org_id, order_id, channel, destination, status, message, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.OrgID,
		n.OrderID,
		n.Channel,
		n.Destination,
		n.Status,
		n.Message,
		n.Error,
		n.CreatedAt,
	).Error
}

func (r *repo) ListByOrder(ctx context.Context, db *gorm.DB, orgID snowflake.ID, orderID uuid.UUID) ([]domain.Notification, error) {
	var items []domain.Notification
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, order_id, channel, destination, status, message, error, created_at
		 FROM notifications
		 WHERE org_id = ? AND order_id = ?
		 ORDER BY created_at ASC, id ASC`,
		orgID,
		orderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
