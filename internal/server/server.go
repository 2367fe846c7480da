package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/audit"
	auditdomain "github.com/Falloukarim/colis-sn-sub000/internal/audit/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/auth"
	authdomain "github.com/Falloukarim/colis-sn-sub000/internal/auth/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/authorization"
	"github.com/Falloukarim/colis-sn-sub000/internal/client"
	clientdomain "github.com/Falloukarim/colis-sn-sub000/internal/client/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/config"
	"github.com/Falloukarim/colis-sn-sub000/internal/notification"
	notificationdomain "github.com/Falloukarim/colis-sn-sub000/internal/notification/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/observability"
	obsmiddleware "github.com/Falloukarim/colis-sn-sub000/internal/observability/logger"
	obsmetrics "github.com/Falloukarim/colis-sn-sub000/internal/observability/metrics"
	obstracing "github.com/Falloukarim/colis-sn-sub000/internal/observability/tracing"
	"github.com/Falloukarim/colis-sn-sub000/internal/order"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/organization"
	organizationdomain "github.com/Falloukarim/colis-sn-sub000/internal/organization/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/pickup"
	pickupdomain "github.com/Falloukarim/colis-sn-sub000/internal/pickup/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/pricing"
	"github.com/Falloukarim/colis-sn-sub000/internal/providers"
	"github.com/Falloukarim/colis-sn-sub000/internal/providers/pdf"
	"github.com/Falloukarim/colis-sn-sub000/internal/publicorder"
	publicorderdomain "github.com/Falloukarim/colis-sn-sub000/internal/publicorder/domain"
	"github.com/Falloukarim/colis-sn-sub000/internal/qrcode"
	"github.com/Falloukarim/colis-sn-sub000/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	auth.Module,
	organization.Module,
	client.Module,
	order.Module,
	pickup.Module,
	notification.Module,
	publicorder.Module,
	providers.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine              *gin.Engine
	cfg                 config.Config
	log                 *zap.Logger
	authsvc             authdomain.Service
	authzSvc            authorization.Service
	auditSvc            auditdomain.Service
	organizationSvc     organizationdomain.Service
	clientSvc           clientdomain.Service
	orderSvc            orderdomain.Service
	pickupSvc           pickupdomain.Service
	notificationSvc     notificationdomain.Service
	publicOrderSvc      publicorderdomain.Service
	pdfProvider         pdf.Provider
	issuer              *qrcode.Issuer
	classifier          *pricing.Classifier
	publicLookupLimiter *ratelimit.PublicLookupLimiter
	obsMetrics          *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin                 *gin.Engine
	Cfg                 config.Config
	Log                 *zap.Logger
	Authsvc             authdomain.Service
	AuthzSvc            authorization.Service
	AuditSvc            auditdomain.Service `optional:"true"`
	OrganizationSvc     organizationdomain.Service
	ClientSvc           clientdomain.Service
	OrderSvc            orderdomain.Service
	PickupSvc           pickupdomain.Service
	NotificationSvc     notificationdomain.Service
	PublicOrderSvc      publicorderdomain.Service
	PDFProvider         pdf.Provider
	Issuer              *qrcode.Issuer
	Classifier          *pricing.Classifier            `optional:"true"`
	PublicLookupLimiter *ratelimit.PublicLookupLimiter `optional:"true"`
	ObsMetrics          *obsmetrics.Metrics            `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	svc := &Server{
		engine:              p.Gin,
		cfg:                 p.Cfg,
		log:                 log.Named("http.server"),
		authsvc:             p.Authsvc,
		authzSvc:            p.AuthzSvc,
		auditSvc:            p.AuditSvc,
		organizationSvc:     p.OrganizationSvc,
		clientSvc:           p.ClientSvc,
		orderSvc:            p.OrderSvc,
		pickupSvc:           p.PickupSvc,
		notificationSvc:     p.NotificationSvc,
		publicOrderSvc:      p.PublicOrderSvc,
		pdfProvider:         p.PDFProvider,
		issuer:              p.Issuer,
		classifier:          p.Classifier,
		publicLookupLimiter: p.PublicLookupLimiter,
		obsMetrics:          p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerPublicRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	// -------- Organizations --------
	api.POST("/organizations", s.CreateOrganization)
	api.GET("/organizations", s.ListOrganizations)

	scoped := api.Group("", s.OrgRequired())

	scoped.GET("/organizations/current", s.authorizeOrgAction(authorization.ObjectOrganization, authorization.ActionOrganizationView), s.GetCurrentOrganization)

	// -------- Clients --------
	scoped.POST("/clients", s.authorizeOrgAction(authorization.ObjectClient, authorization.ActionClientCreate), s.CreateClient)
	scoped.GET("/clients", s.authorizeOrgAction(authorization.ObjectClient, authorization.ActionClientView), s.ListClients)
	scoped.GET("/clients/:id", s.authorizeOrgAction(authorization.ObjectClient, authorization.ActionClientView), s.GetClientByID)
	scoped.PATCH("/clients/:id", s.authorizeOrgAction(authorization.ObjectClient, authorization.ActionClientUpdate), s.UpdateClient)

	// -------- Orders --------
	scoped.POST("/orders", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderCreate), s.CreateOrder)
	scoped.POST("/orders/batch", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderCreate), s.CreateOrdersBatch)
	scoped.GET("/orders", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderView), s.ListOrders)
	scoped.GET("/orders/number/:number", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderView), s.GetOrderByNumber)
	scoped.GET("/orders/:id", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderView), s.GetOrderByID)
	scoped.PATCH("/orders/:id", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderUpdate), s.UpdateOrder)
	scoped.POST("/orders/:id/status", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderStatus), s.UpdateOrderStatus)
	scoped.POST("/orders/:id/qrcode", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderQRReissue), s.ReissueOrderQRCode)
	scoped.GET("/orders/:id/slip", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderView), s.RenderOrderSlip)

	// -------- Notifications --------
	scoped.POST("/orders/:id/notifications", s.authorizeOrgAction(authorization.ObjectNotification, authorization.ActionNotificationSend), s.DispatchNotification)
	scoped.GET("/orders/:id/notifications", s.authorizeOrgAction(authorization.ObjectNotification, authorization.ActionNotificationView), s.ListOrderNotifications)

	// -------- Pickup --------
	scoped.POST("/scan", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderPickup), s.ScanOrder)
	scoped.POST("/scan/preview", s.authorizeOrgAction(authorization.ObjectOrder, authorization.ActionOrderPickup), s.PreviewScan)

	scoped.GET("/audit-logs", s.authorizeOrgAction(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
