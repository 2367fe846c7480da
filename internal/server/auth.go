package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/Falloukarim/colis-sn-sub000/internal/audit/domain"
	authdomain "github.com/Falloukarim/colis-sn-sub000/internal/auth/domain"
	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	DisplayName      string `json:"display_name"`
	OrganizationName string `json:"organization_name"`
}

type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	OrganizationID string `json:"organization_id"`
}

func (s *Server) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authsvc.Register(c.Request.Context(), authdomain.RegisterRequest{
		Email:            strings.TrimSpace(req.Email),
		Password:         req.Password,
		DisplayName:      strings.TrimSpace(req.DisplayName),
		OrganizationName: strings.TrimSpace(req.OrganizationName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.TrimSpace(req.Email)
	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:          email,
		Password:       req.Password,
		OrganizationID: strings.TrimSpace(req.OrganizationID),
	})
	if err != nil {
		if s.auditSvc != nil {
			_ = s.auditSvc.AuditLog(c.Request.Context(), nil, string(auditdomain.ActorTypeUser), nil, "user.login_failed", "user", nil, map[string]any{
				"email": email,
			})
		}
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil && result.User != nil {
		userID := result.User.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), nil, string(auditdomain.ActorTypeUser), &userID, "user.login", "user", &userID, map[string]any{
			"email":           email,
			"organization_id": result.OrganizationID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
