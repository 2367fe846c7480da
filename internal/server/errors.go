package server

import (
	"errors"
	"net/http"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	State   string `json:"state,omitempty"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = apperror.Validation("request", "invalid_request", "Requête invalide")
	ErrRateLimited    = apperror.New(apperror.KindRateLimited, "rate_limited", "Trop de requêtes, veuillez réessayer plus tard")
	ErrInternal       = apperror.New(apperror.KindInternal, "internal_error", "Erreur interne du serveur")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func newValidationError(field, code, message string) error {
	return apperror.Validation(field, code, message)
}

func mapError(err error) (int, errorPayload) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound, errorPayload{
			Type:    string(apperror.KindNotFound),
			Code:    "not_found",
			Message: apperror.ErrNotFound.Message,
		}
	}

	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind == apperror.KindInternal {
		return http.StatusInternalServerError, errorPayload{
			Type:    string(apperror.KindInternal),
			Code:    ErrInternal.Code,
			Message: ErrInternal.Message,
		}
	}

	code := appErr.Code
	if code == "" {
		code = string(appErr.Kind)
	}
	return statusForKind(appErr.Kind), errorPayload{
		Type:    string(appErr.Kind),
		Code:    code,
		Message: appErr.Message,
		Field:   appErr.Field,
		State:   appErr.State,
	}
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindInvalidState, apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindSubscriptionInactive:
		return http.StatusPaymentRequired
	case apperror.KindExternalService:
		return http.StatusBadGateway
	case apperror.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// classifyErrorForLog feeds the request logger. Unclassified errors keep
// their kind as internal_error so the log line and response agree.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	_, payload := mapError(err)
	return payload.Type, payload.Code
}
