package domain

import (
	"context"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ListOrderFilter struct {
	Status   Status
	ClientID snowflake.ID
	Search   string
}

// StatusTransition is a conditional state change: it applies only while the
// stored status still equals From.
type StatusTransition struct {
	OrgID     snowflake.ID
	OrderID   uuid.UUID
	From      Status
	To        Status
	UpdatedAt time.Time

	// Pricing, when set, is written together with the new status.
	Pricing *PricingUpdate
	// Pickup, when set, stamps the handover fields.
	Pickup *PickupStamp
}

type PricingUpdate struct {
	Poids        decimal.NullDecimal
	Quantite     *int64
	PrixKg       decimal.NullDecimal
	MontantTotal decimal.Decimal
}

type PickupStamp struct {
	DateRetrait time.Time
	PickedUpBy  snowflake.ID
	ScannedAt   time.Time
}

// DetailsUpdate rewrites editable fields while the status is still Expected.
type DetailsUpdate struct {
	OrgID               snowflake.ID
	OrderID             uuid.UUID
	Expected            Status
	Description         string
	Pricing             PricingUpdate
	DateLivraisonPrevue *time.Time
	UpdatedAt           time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, orgID snowflake.ID, id uuid.UUID) (*Order, error)
	// FindByIDAnyOrg resolves an order across tenants. Callers must check
	// OrgID before acting on the result.
	FindByIDAnyOrg(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, number string) (*Order, error)
	OrderNumberExists(ctx context.Context, db *gorm.DB, number string) (bool, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListOrderFilter, page pagination.Pagination) ([]*Order, error)
	TransitionStatus(ctx context.Context, db *gorm.DB, t StatusTransition) (int64, error)
	UpdateDetails(ctx context.Context, db *gorm.DB, u DetailsUpdate) (int64, error)
	UpdateQRCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, id uuid.UUID, payload string, updatedAt time.Time) (int64, error)
}
