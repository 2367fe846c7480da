package server

import (
	"strings"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/gin-gonic/gin"
)

func (s *Server) authorizeOrgAction(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authorizeOrgActionWithContext(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorizeOrgActionWithContext(c *gin.Context, object string, action string) error {
	actor, ok := orgcontext.ActorFromContext(c.Request.Context())
	if !ok {
		return apperror.ErrUnauthorized
	}
	if actor.OrgID == 0 {
		return apperror.ErrForbidden
	}
	if s.authzSvc == nil {
		return apperror.ErrForbidden
	}
	return s.authzSvc.Authorize(c.Request.Context(), actor, strings.TrimSpace(object), strings.TrimSpace(action))
}
