package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type scanRequest struct {
	QRCode string `json:"qr_code"`
}

// ScanOrder hands a parcel over to its client. The scanned value may be the
// bare order id or the public URL printed in the QR code.
func (s *Server) ScanOrder(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.pickupSvc.Validate(c.Request.Context(), strings.TrimSpace(req.QRCode))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("order_number", order.OrderNumber)
	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) PreviewScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.pickupSvc.Preview(c.Request.Context(), strings.TrimSpace(req.QRCode))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}
