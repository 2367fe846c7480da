package domain

import (
	"context"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// Authenticate verifies a bearer token and resolves the actor. When
	// orgID is set it selects the organization, otherwise the one bound at
	// login is used. Membership is always re-read from the database.
	Authenticate(ctx context.Context, rawToken string, orgID string) (orgcontext.Actor, error)
}

type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	DisplayName      string `json:"display_name"`
	OrganizationName string `json:"organization_name"`
}

type RegisterResult struct {
	User           *User  `json:"user"`
	OrganizationID string `json:"organization_id,omitempty"`
}

type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	OrganizationID string `json:"organization_id"`
}

type LoginResult struct {
	Token          string    `json:"token"`
	ExpiresAt      time.Time `json:"expires_at"`
	User           *User     `json:"user"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Role           string    `json:"role,omitempty"`
}

var (
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid_credentials", "Email ou mot de passe incorrect")
	ErrInvalidToken       = apperror.New(apperror.KindUnauthorized, "invalid_token", "Session invalide, veuillez vous reconnecter")
	ErrTokenExpired       = apperror.New(apperror.KindUnauthorized, "token_expired", "Session expirée, veuillez vous reconnecter")
	ErrInvalidEmail       = apperror.Validation("email", "invalid_email", "Adresse email invalide")
	ErrWeakPassword       = apperror.Validation("password", "weak_password", "Le mot de passe doit contenir au moins 8 caractères")
	ErrUserExists         = apperror.New(apperror.KindConflict, "user_exists", "Un compte existe déjà avec cette adresse email")
	ErrUserNotFound       = apperror.New(apperror.KindNotFound, "user_not_found", "Utilisateur introuvable")
)
