package authorization

import (
	"context"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
)

type Service interface {
	Authorize(ctx context.Context, actor orgcontext.Actor, object string, action string) error
}

var (
	ErrInvalidActor        = apperror.New(apperror.KindUnauthorized, "invalid_actor", "Utilisateur non authentifié")
	ErrInvalidOrganization = apperror.Validation("organization_id", "invalid_organization", "Organisation invalide")
	ErrInvalidObject       = apperror.Validation("object", "invalid_object", "Ressource invalide")
	ErrInvalidAction       = apperror.Validation("action", "invalid_action", "Action invalide")
	ErrForbidden           = apperror.New(apperror.KindForbidden, "forbidden", "Action non autorisée pour votre rôle")
)
