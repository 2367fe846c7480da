package server

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const publicLookupEndpoint = "public_lookup"

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/qr/public")

	public.GET("/:id", s.PublicLookupRateLimit(), s.GetPublicOrder)
}

// PublicLookupRateLimit throttles the QR verification page per client IP.
// A redis failure lets the request through.
func (s *Server) PublicLookupRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.publicLookupLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		result, err := s.publicLookupLimiter.AllowIP(ctx, c.ClientIP())
		if err != nil {
			s.log.Warn("public lookup rate limit unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			s.obsMetrics.RecordRateLimitDenied(ctx, publicLookupEndpoint, "ip")
			if result.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds()))))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, publicLookupEndpoint)
		c.Next()
	}
}

func (s *Server) GetPublicOrder(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := s.publicOrderSvc.GetOrderForPublicView(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		status, _ := mapError(err)
		s.obsMetrics.RecordPublicLookup(ctx, strconv.Itoa(status))
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordPublicLookup(ctx, strconv.Itoa(http.StatusOK))
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"data": view})
}
