package server

import (
	"strings"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/Falloukarim/colis-sn-sub000/internal/orgcontext"
	"github.com/gin-gonic/gin"
)

const (
	HeaderOrg           = "X-Organization-ID"
	headerAuthorization = "Authorization"
	bearerPrefix        = "bearer "
)

// AuthRequired resolves the bearer token into an actor. The organization
// header only selects among the caller's memberships.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader(headerAuthorization))
		if token == "" {
			AbortWithError(c, apperror.ErrUnauthorized)
			return
		}

		actor, err := s.authsvc.Authenticate(c.Request.Context(), token, strings.TrimSpace(c.GetHeader(HeaderOrg)))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Request = c.Request.WithContext(orgcontext.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// OrgRequired rejects actors that have no organization yet, such as users
// fresh out of registration.
func (s *Server) OrgRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := orgcontext.ActorFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, apperror.ErrUnauthorized)
			return
		}
		if actor.OrgID == 0 {
			AbortWithError(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
