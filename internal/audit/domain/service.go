package domain

import (
	"context"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

type ListAuditLogRequest struct {
	pagination.Pagination
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	AuditLog(ctx context.Context, orgID *snowflake.ID, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidOrganization = apperror.New(apperror.KindUnauthorized, "invalid_organization", "Organisation introuvable pour cet utilisateur")
	ErrInvalidPageToken    = apperror.Validation("page_token", "invalid_page_token", "Jeton de pagination invalide")
	ErrInvalidTimeRange    = apperror.Validation("start_at", "invalid_time_range", "Intervalle de dates invalide")
	ErrInvalidAction       = apperror.Validation("action", "invalid_action", "Action d'audit invalide")
)
