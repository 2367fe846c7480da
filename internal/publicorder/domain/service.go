package domain

import (
	"context"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
)

type Service interface {
	// GetOrderForPublicView resolves a scanned credential into the minimal
	// status shown to anyone holding the QR code.
	GetOrderForPublicView(ctx context.Context, scanned string) (*PublicOrderView, error)
}

// PublicOrderView never carries amounts, contact data or the full client
// name.
type PublicOrderView struct {
	OrderNumber     string     `json:"order_number"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"status_label"`
	Organization    string     `json:"organization"`
	ClientFirstName string     `json:"client_first_name"`
	DateRetrait     *time.Time `json:"date_retrait,omitempty"`
}

var ErrOrderUnavailable = apperror.New(apperror.KindNotFound, "order_unavailable", "Commande introuvable")
