package domain

import (
	"context"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/bwmarrin/snowflake"
)

const (
	RoleOwner = "OWNER"
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF" // counter agents: create, update and hand over orders
)

// TrialPeriod is granted to every organization created through the API.
const TrialPeriod = 30 * 24 * time.Hour

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(ctx context.Context, id string) (*OrganizationResponse, error)
	ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]OrganizationListResponseItem, error)
	GetMembership(ctx context.Context, orgID, userID snowflake.ID) (*OrganizationMember, error)
	EnsureActive(ctx context.Context, orgID snowflake.ID) error
	UpdateSubscription(ctx context.Context, orgID snowflake.ID, req UpdateSubscriptionRequest) error
}

type CreateOrganizationRequest struct {
	Name string
}

type UpdateSubscriptionRequest struct {
	Status  SubscriptionStatus
	EndDate *time.Time
}

type OrganizationResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Slug                string     `json:"slug"`
	SubscriptionStatus  string     `json:"subscription_status"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date,omitempty"`
}

type OrganizationListResponseItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrInvalidName          = apperror.Validation("name", "invalid_name", "Le nom de l'organisation est obligatoire")
	ErrInvalidUser          = apperror.New(apperror.KindUnauthorized, "invalid_user", "Utilisateur non authentifié")
	ErrInvalidOrganization  = apperror.Validation("organization_id", "invalid_organization", "Organisation invalide")
	ErrInvalidSubscription  = apperror.Validation("subscription_status", "invalid_subscription_status", "Statut d'abonnement invalide")
	ErrOrganizationNotFound = apperror.New(apperror.KindNotFound, "organization_not_found", "Organisation introuvable")
	ErrNotMember            = apperror.New(apperror.KindForbidden, "forbidden", "Vous n'êtes pas membre de cette organisation")
	ErrSubscriptionInactive = apperror.New(apperror.KindSubscriptionInactive, "subscription_inactive", "L'abonnement de votre organisation n'est pas actif")
)
