package server

import (
	"net/http"
	"strings"
	"time"

	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	"github.com/Falloukarim/colis-sn-sub000/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createOrderRequest struct {
	ClientID            string           `json:"client_id"`
	Description         string           `json:"description"`
	Kind                string           `json:"kind"`
	Poids               *decimal.Decimal `json:"poids"`
	Quantite            *int64           `json:"quantite"`
	PrixKg              *decimal.Decimal `json:"prix_kg"`
	DateLivraisonPrevue string           `json:"date_livraison_prevue"`
}

type createOrdersBatchRequest struct {
	Orders []createOrderRequest `json:"orders"`
}

type updateOrderRequest struct {
	Description         *string          `json:"description"`
	Poids               *decimal.Decimal `json:"poids"`
	Quantite            *int64           `json:"quantite"`
	PrixKg              *decimal.Decimal `json:"prix_kg"`
	DateLivraisonPrevue string           `json:"date_livraison_prevue"`
}

type updateOrderStatusRequest struct {
	Status   string           `json:"status"`
	Poids    *decimal.Decimal `json:"poids"`
	Quantite *int64           `json:"quantite"`
	PrixKg   *decimal.Decimal `json:"prix_kg"`
}

func (r createOrderRequest) toDomain() (orderdomain.CreateOrderRequest, error) {
	expected, err := parseDeliveryDate(r.DateLivraisonPrevue)
	if err != nil {
		return orderdomain.CreateOrderRequest{}, err
	}
	return orderdomain.CreateOrderRequest{
		ClientID:             strings.TrimSpace(r.ClientID),
		Description:          strings.TrimSpace(r.Description),
		Kind:                 strings.TrimSpace(r.Kind),
		Weight:               r.Poids,
		Quantity:             r.Quantite,
		Price:                r.PrixKg,
		ExpectedDeliveryDate: expected,
	}, nil
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	domainReq, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.CreateOrder(c.Request.Context(), domainReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("order_number", order.OrderNumber)
	c.JSON(http.StatusCreated, gin.H{"data": order})
}

func (s *Server) CreateOrdersBatch(c *gin.Context) {
	var req createOrdersBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]orderdomain.CreateOrderRequest, 0, len(req.Orders))
	for _, item := range req.Orders {
		domainReq, err := item.toDomain()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		items = append(items, domainReq)
	}

	orders, err := s.orderSvc.CreateMultipleOrders(c.Request.Context(), orderdomain.CreateMultipleOrdersRequest{Orders: items})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": orders})
}

func (s *Server) ListOrders(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status   string `form:"status"`
		ClientID string `form:"client_id"`
		Search   string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.ListOrders(c.Request.Context(), orderdomain.ListOrdersRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		Status:    strings.TrimSpace(query.Status),
		ClientID:  strings.TrimSpace(query.ClientID),
		Search:    strings.TrimSpace(query.Search),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Orders, "page_info": resp.PageInfo})
}

func (s *Server) GetOrderByID(c *gin.Context) {
	order, err := s.orderSvc.GetOrder(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) GetOrderByNumber(c *gin.Context) {
	order, err := s.orderSvc.GetOrderByNumber(c.Request.Context(), strings.TrimSpace(c.Param("number")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	expected, err := parseDeliveryDate(req.DateLivraisonPrevue)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.UpdateDetails(c.Request.Context(), orderdomain.UpdateDetailsRequest{
		OrderID:              strings.TrimSpace(c.Param("id")),
		Description:          req.Description,
		Weight:               req.Poids,
		Quantity:             req.Quantite,
		Price:                req.PrixKg,
		ExpectedDeliveryDate: expected,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.orderSvc.UpdateStatus(c.Request.Context(), orderdomain.UpdateStatusRequest{
		OrderID:  strings.TrimSpace(c.Param("id")),
		Status:   strings.TrimSpace(req.Status),
		Weight:   req.Poids,
		Quantity: req.Quantite,
		Price:    req.PrixKg,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("order_number", order.OrderNumber)
	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) ReissueOrderQRCode(c *gin.Context) {
	order, err := s.orderSvc.ReissueQRCode(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"order_id":   order.ID,
		"qr_code":    order.QRCode,
		"public_url": s.issuer.PublicURL(order.ID),
	}})
}

func parseDeliveryDate(value string) (*time.Time, error) {
	parsed, err := parseOptionalTime(value, false)
	if err != nil {
		return nil, newValidationError("date_livraison_prevue", "invalid_date_livraison_prevue", "Date de livraison prévue invalide")
	}
	return parsed, nil
}
