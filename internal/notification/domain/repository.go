package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	ListByOrder(ctx context.Context, db *gorm.DB, orgID snowflake.ID, orderID uuid.UUID) ([]Notification, error)
}
