package domain

import (
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/pricing"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusEnCours    Status = "en_cours"
	StatusDisponible Status = "disponible"
	StatusRemis      Status = "remis"
)

func (s Status) Valid() bool {
	switch s {
	case StatusEnCours, StatusDisponible, StatusRemis:
		return true
	}
	return false
}

// Terminal reports whether no further change is allowed.
func (s Status) Terminal() bool { return s == StatusRemis }

// Label is the customer facing wording of the status.
func (s Status) Label() string {
	switch s {
	case StatusEnCours:
		return "En cours"
	case StatusDisponible:
		return "Disponible"
	case StatusRemis:
		return "Remis"
	default:
		return string(s)
	}
}

// Order is a parcel handled by an organization on behalf of a client.
// PrixKg holds the price per kilogram for products and the unit price for
// services.
type Order struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID               snowflake.ID        `gorm:"not null;index" json:"organization_id"`
	ClientID            snowflake.ID        `gorm:"not null;index" json:"client_id"`
	OrderNumber         string              `gorm:"type:text;not null;uniqueIndex:ux_orders_order_number" json:"order_number"`
	Description         string              `gorm:"type:text;not null" json:"description"`
	Kind                pricing.Kind        `gorm:"type:text;not null" json:"kind"`
	Status              Status              `gorm:"type:text;not null;index" json:"status"`
	Poids               decimal.NullDecimal `gorm:"type:numeric(12,3)" json:"poids"`
	Quantite            *int64              `json:"quantite"`
	PrixKg              decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"prix_kg"`
	MontantTotal        decimal.Decimal     `gorm:"type:numeric(16,2);not null" json:"montant_total"`
	QRCode              string              `gorm:"column:qr_code;type:text" json:"qr_code,omitempty"`
	DateLivraisonPrevue *time.Time          `json:"date_livraison_prevue,omitempty"`
	DateRetrait         *time.Time          `json:"date_retrait,omitempty"`
	PickedUpBy          *int64              `json:"picked_up_by,omitempty"`
	ScannedAt           *time.Time          `json:"scanned_at,omitempty"`
	CreatedAt           time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// Factors returns the pricing inputs stored on the order.
func (o Order) Factors() pricing.Factors {
	return pricing.Factors{
		Weight:    nullToPtr(o.Poids),
		Quantity:  o.Quantite,
		UnitPrice: nullToPtr(o.PrixKg),
	}
}

func nullToPtr(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}

// NullFrom converts an optional decimal into its nullable column form.
func NullFrom(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*v)
}
