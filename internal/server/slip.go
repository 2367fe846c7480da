package server

import (
	"net/http"
	"strings"

	clientdomain "github.com/Falloukarim/colis-sn-sub000/internal/client/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/format"
	notificationdomain "github.com/Falloukarim/colis-sn-sub000/internal/notification/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/providers/pdf"
	"github.com/Falloukarim/colis-sn-sub000/internal/qrcode"
	"github.com/gin-gonic/gin"
)

// RenderOrderSlip returns the printable pickup slip of an order as a PDF.
func (s *Server) RenderOrderSlip(c *gin.Context) {
	ctx := c.Request.Context()

	order, err := s.orderSvc.GetOrder(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	client, err := s.clientSvc.GetByID(ctx, clientdomain.GetClientRequest{ID: order.ClientID.String()})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	org, err := s.organizationSvc.GetByID(ctx, order.OrgID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	publicURL := s.issuer.PublicURL(order.ID)
	png, err := qrcode.Render(publicURL, qrcode.DefaultSize)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	slip, err := s.pdfProvider.GenerateSlip(ctx, pdf.SlipData{
		OrgName:     org.Name,
		OrderNumber: order.OrderNumber,
		CreatedAt:   format.Date(&order.CreatedAt),
		Status:      order.Status.Label(),
		ClientName:  client.Name,
		ClientPhone: client.Phone,
		Description: order.Description,
		PricingLine: notificationdomain.PricingLine(*order, s.classifier.ResolveKind(order.Kind, order.Description)),
		Total:       format.FCFA(order.MontantTotal),
		PublicURL:   publicURL,
		QRCode:      png,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+order.OrderNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", slip)
}
