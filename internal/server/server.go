package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/mabdulrehman08/propmanager/internal/audit/domain"
	"github.com/mabdulrehman08/propmanager/internal/config"
	dashboarddomain "github.com/mabdulrehman08/propmanager/internal/dashboard/domain"
	historydomain "github.com/mabdulrehman08/propmanager/internal/history/domain"
	invoicedomain "github.com/mabdulrehman08/propmanager/internal/invoice/domain"
	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
	paymentdomain "github.com/mabdulrehman08/propmanager/internal/payment/domain"
	settlementdomain "github.com/mabdulrehman08/propmanager/internal/settlement/domain"
)

type Params struct {
	fx.In

	Cfg           config.Config
	Log           *zap.Logger
	DB            *gorm.DB
	GenID         *snowflake.Node
	Store         ledgerdomain.Store
	InvoiceSvc    invoicedomain.Service
	PaymentSvc    paymentdomain.Service
	HistorySvc    historydomain.Service
	SettlementSvc settlementdomain.Service
	DashboardSvc  dashboarddomain.Service
	AuditSvc      auditdomain.Service
}

type Server struct {
	cfg           config.Config
	log           *zap.Logger
	db            *gorm.DB
	genID         *snowflake.Node
	store         ledgerdomain.Store
	invoiceSvc    invoicedomain.Service
	paymentSvc    paymentdomain.Service
	historySvc    historydomain.Service
	settlementSvc settlementdomain.Service
	dashboardSvc  dashboarddomain.Service
	auditSvc      auditdomain.Service
}

// NewEngine builds the gin engine with logging and recovery middleware.
func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log.Named("http")))
	engine.Use(AuditContext())
	return engine
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		db:            p.DB,
		genID:         p.GenID,
		store:         p.Store,
		invoiceSvc:    p.InvoiceSvc,
		paymentSvc:    p.PaymentSvc,
		historySvc:    p.HistorySvc,
		settlementSvc: p.SettlementSvc,
		dashboardSvc:  p.DashboardSvc,
		auditSvc:      p.AuditSvc,
	}
}

// RegisterRoutes mounts the engine operations, the data-access routes and the
// operational endpoints.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")

	api.POST("/invoices/generate", s.GenerateInvoices)
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoice)
	api.POST("/invoices/:id/pay", s.PayInvoice)

	api.POST("/payments", s.RecordPayment)
	api.GET("/payments", s.ListPayments)
	api.GET("/payments/:id", s.GetPayment)

	api.POST("/units/:id/reconstruct-history", s.ReconstructHistory)

	api.POST("/properties", s.CreateProperty)
	api.GET("/properties", s.ListProperties)
	api.GET("/properties/:id", s.GetProperty)
	api.POST("/properties/:id/units", s.CreateUnit)
	api.GET("/properties/:id/units", s.ListUnits)
	api.POST("/properties/:id/owners", s.CreatePropertyUser)
	api.GET("/properties/:id/owners", s.ListPropertyUsers)
	api.POST("/properties/:id/settlements/calculate", s.CalculateSettlements)
	api.GET("/properties/:id/settlements", s.ListPropertySettlements)
	api.GET("/users/:id/settlements", s.ListUserSettlements)

	api.POST("/units/:id/tenants", s.CreateTenant)
	api.GET("/units/:id/tenants", s.ListUnitTenants)

	api.GET("/dashboard/summary", s.MonthSummary)
	api.GET("/audit-logs", s.ListAuditLogs)
}

func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP starts the HTTP listener tied to the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine, s *Server) {
	s.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)
