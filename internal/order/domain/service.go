package domain

import (
	"context"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	ClientID             string
	Description          string
	Kind                 string
	Weight               *decimal.Decimal
	Quantity             *int64
	Price                *decimal.Decimal
	ExpectedDeliveryDate *time.Time
}

type CreateMultipleOrdersRequest struct {
	Orders []CreateOrderRequest
}

type UpdateStatusRequest struct {
	OrderID  string
	Status   string
	Weight   *decimal.Decimal
	Quantity *int64
	Price    *decimal.Decimal
}

type UpdateDetailsRequest struct {
	OrderID              string
	Description          *string
	Weight               *decimal.Decimal
	Quantity             *int64
	Price                *decimal.Decimal
	ExpectedDeliveryDate *time.Time
}

type ListOrdersRequest struct {
	PageToken string
	PageSize  int32
	Status    string
	ClientID  string
	Search    string
}

type ListOrdersResponse struct {
	pagination.PageInfo
	Orders []Order `json:"orders"`
}

type Service interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	CreateMultipleOrders(ctx context.Context, req CreateMultipleOrdersRequest) ([]Order, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Order, error)
	UpdateDetails(ctx context.Context, req UpdateDetailsRequest) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)
	ListOrders(ctx context.Context, req ListOrdersRequest) (ListOrdersResponse, error)
	ReissueQRCode(ctx context.Context, id string) (*Order, error)
}

// ReadyNotifier is told about orders that just became available for pickup.
// Failures are recorded by the notifier and never undo the transition.
type ReadyNotifier interface {
	NotifyReady(ctx context.Context, order Order) error
}

// MaxBatchSize bounds CreateMultipleOrders.
const MaxBatchSize = 100

var (
	ErrUnauthorized       = apperror.ErrUnauthorized
	ErrNotFound           = apperror.New(apperror.KindNotFound, "order_not_found", "Commande introuvable")
	ErrClientNotFound     = apperror.New(apperror.KindNotFound, "client_not_found", "Client introuvable")
	ErrInvalidID          = apperror.Validation("id", "invalid_id", "Identifiant de commande invalide")
	ErrInvalidClient      = apperror.Validation("client_id", "invalid_client", "Le client est obligatoire")
	ErrInvalidDescription = apperror.Validation("description", "invalid_description", "La description est obligatoire")
	ErrInvalidKind        = apperror.Validation("kind", "invalid_kind", "Type de commande invalide (product ou service)")
	ErrMissingPrice       = apperror.Validation("prix_kg", "missing_price", "Le prix est obligatoire")
	ErrInvalidPrice       = apperror.Validation("prix_kg", "invalid_price", "Le prix doit être supérieur à zéro")
	ErrInvalidWeight      = apperror.Validation("poids", "invalid_weight", "Le poids doit être supérieur à zéro")
	ErrInvalidQuantity    = apperror.Validation("quantite", "invalid_quantity", "La quantité doit être supérieure à zéro")
	ErrMissingWeight      = apperror.Validation("poids", "missing_weight", "Le poids est obligatoire pour rendre la commande disponible")
	ErrMissingQuantity    = apperror.Validation("quantite", "missing_quantity", "La quantité est obligatoire pour rendre la commande disponible")
	ErrInvalidStatus      = apperror.Validation("status", "invalid_status", "Statut invalide")
	ErrEmptyBatch         = apperror.Validation("orders", "empty_batch", "Aucune commande à créer")
	ErrBatchTooLarge      = apperror.Validation("orders", "batch_too_large", "Trop de commandes dans un même lot")
	ErrInvalidPageToken   = apperror.Validation("page_token", "invalid_page_token", "Jeton de pagination invalide")
	ErrOrderAlreadyRemis  = apperror.InvalidState(string(StatusRemis), "Cette commande a déjà été remise et ne peut plus être modifiée")
	ErrConcurrentUpdate   = apperror.InvalidState("", "La commande a été modifiée entre-temps, veuillez réessayer")
)

// InvalidTransition reports a refused transition from current to target.
func InvalidTransition(current, target Status) error {
	msg := "Transition de statut non autorisée : " + current.Label() + " vers " + target.Label()
	if current == StatusRemis {
		msg = "Cette commande a déjà été remise"
	}
	return apperror.InvalidState(string(current), msg)
}
