package server

import (
	"net/http"
	"strings"

	notificationdomain "github.com/Falloukarim/colis-sn-sub000/internal/notification/domain"
	"github.com/gin-gonic/gin"
)

type dispatchNotificationRequest struct {
	Channel string `json:"channel"`
}

// DispatchNotification resends the order message on a chosen channel. A
// refused delivery is still a 200: the attempt is recorded and returned.
func (s *Server) DispatchNotification(c *gin.Context) {
	var req dispatchNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.notificationSvc.Dispatch(c.Request.Context(), notificationdomain.DispatchRequest{
		OrderID: strings.TrimSpace(c.Param("id")),
		Channel: strings.TrimSpace(req.Channel),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ListOrderNotifications(c *gin.Context) {
	items, err := s.notificationSvc.ListByOrder(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
