package server

import (
	"net/http"
	"strings"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	organizationdomain "github.com/Falloukarim/colis-sn-sub000/internal/organization/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/gin-gonic/gin"
)

type createOrganizationRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	actor, ok := orgcontext.ActorFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationSvc.Create(c.Request.Context(), actor.UserID, organizationdomain.CreateOrganizationRequest{
		Name: strings.TrimSpace(req.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.AuditLog(c.Request.Context(), nil, "", nil, "organization.create", "organization", &resp.ID, map[string]any{
			"name": resp.Name,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListOrganizations(c *gin.Context) {
	actor, ok := orgcontext.ActorFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, apperror.ErrUnauthorized)
		return
	}

	items, err := s.organizationSvc.ListOrganizationsByUser(c.Request.Context(), actor.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetCurrentOrganization(c *gin.Context) {
	actor, _ := orgcontext.ActorFromContext(c.Request.Context())

	resp, err := s.organizationSvc.GetByID(c.Request.Context(), actor.OrgID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"organization": resp,
		"role":         actor.Role,
	}})
}
