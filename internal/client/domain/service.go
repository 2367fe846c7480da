package domain

import (
	"context"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db/pagination"
)

type ListClientRequest struct {
	PageToken string
	PageSize  int32
	Name      string
	Phone     string
}

type ListClientFilter struct {
	Name  string
	Phone string
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type CreateClientRequest struct {
	Name     string
	Phone    string
	WhatsApp string
	Email    string
	Address  string
}

type UpdateClientRequest struct {
	ID       string
	Name     *string
	Phone    *string
	WhatsApp *string
	Email    *string
	Address  *string
}

type GetClientRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateClientRequest) (Client, error)
	List(context.Context, ListClientRequest) (ListClientResponse, error)
	GetByID(context.Context, GetClientRequest) (Client, error)
	Update(context.Context, UpdateClientRequest) (Client, error)
}

var (
	ErrInvalidOrganization = apperror.New(apperror.KindUnauthorized, "invalid_organization", "Organisation introuvable pour cet utilisateur")
	ErrInvalidName         = apperror.Validation("name", "invalid_name", "Le nom du client est obligatoire")
	ErrInvalidPhone        = apperror.Validation("phone", "invalid_phone", "Numéro de téléphone invalide")
	ErrInvalidWhatsApp     = apperror.Validation("whatsapp", "invalid_whatsapp", "Numéro WhatsApp invalide")
	ErrInvalidEmail        = apperror.Validation("email", "invalid_email", "Adresse email invalide")
	ErrInvalidID           = apperror.Validation("id", "invalid_id", "Identifiant client invalide")
	ErrInvalidPageToken    = apperror.Validation("page_token", "invalid_page_token", "Jeton de pagination invalide")
	ErrNotFound            = apperror.New(apperror.KindNotFound, "client_not_found", "Client introuvable")
)
