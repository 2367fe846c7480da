package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type OrganizationListItem struct {
	ID        snowflake.ID
	Name      string
	Role      string
	CreatedAt time.Time
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrganization(ctx context.Context, org Organization) error
	AddMember(ctx context.Context, member OrganizationMember) error
	FindByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	FindMember(ctx context.Context, orgID, userID snowflake.ID) (*OrganizationMember, error)
	ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]OrganizationListItem, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	UpdateSubscription(ctx context.Context, id snowflake.ID, status SubscriptionStatus, endDate *time.Time, updatedAt time.Time) (int64, error)
}
