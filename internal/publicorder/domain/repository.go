package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	FindOrder(ctx context.Context, db *gorm.DB, id uuid.UUID) (*OrderRecord, error)
}

// OrderRecord is the joined row behind the public verification page.
type OrderRecord struct {
	ID          uuid.UUID    `gorm:"column:id"`
	OrgID       snowflake.ID `gorm:"column:org_id"`
	OrgName     string       `gorm:"column:org_name"`
	OrderNumber string       `gorm:"column:order_number"`
	Status      string       `gorm:"column:status"`
	ClientName  string       `gorm:"column:client_name"`
	DateRetrait *time.Time   `gorm:"column:date_retrait"`
}
