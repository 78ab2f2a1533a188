package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentspace/agentspace/internal/agency"
	agencydomain "github.com/agentspace/agentspace/internal/agency/domain"
	"github.com/agentspace/agentspace/internal/agent"
	agentdomain "github.com/agentspace/agentspace/internal/agent/domain"
	"github.com/agentspace/agentspace/internal/analytics"
	analyticsdomain "github.com/agentspace/agentspace/internal/analytics/domain"
	"github.com/agentspace/agentspace/internal/carrier"
	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	"github.com/agentspace/agentspace/internal/commission"
	commissiondomain "github.com/agentspace/agentspace/internal/commission/domain"
	"github.com/agentspace/agentspace/internal/config"
	"github.com/agentspace/agentspace/internal/deal"
	dealdomain "github.com/agentspace/agentspace/internal/deal/domain"
	"github.com/agentspace/agentspace/internal/debt"
	debtdomain "github.com/agentspace/agentspace/internal/debt/domain"
	"github.com/agentspace/agentspace/internal/hierarchy"
	hierarchydomain "github.com/agentspace/agentspace/internal/hierarchy/domain"
	"github.com/agentspace/agentspace/internal/ledger"
	"github.com/agentspace/agentspace/internal/lock"
	"github.com/agentspace/agentspace/internal/observability"
	obsmiddleware "github.com/agentspace/agentspace/internal/observability/logger"
	obsmetrics "github.com/agentspace/agentspace/internal/observability/metrics"
	obstracing "github.com/agentspace/agentspace/internal/observability/tracing"
	"github.com/agentspace/agentspace/internal/payout"
	payoutdomain "github.com/agentspace/agentspace/internal/payout/domain"
	"github.com/agentspace/agentspace/internal/position"
	positiondomain "github.com/agentspace/agentspace/internal/position/domain"
	"github.com/agentspace/agentspace/internal/product"
	productdomain "github.com/agentspace/agentspace/internal/product/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	lock.Module,
	agency.Module,
	position.Module,
	carrier.Module,
	product.Module,
	commission.Module,
	hierarchy.Module,
	agent.Module,
	ledger.Module,
	deal.Module,
	payout.Module,
	debt.Module,
	analytics.Module,
	fx.Invoke(NewServer),
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
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
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

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	agencySvc     agencydomain.Service
	agentRepo     agentdomain.Repository
	agentSvc      agentdomain.Service
	positionSvc   positiondomain.Service
	carrierSvc    carrierdomain.Service
	productSvc    productdomain.Service
	commissionSvc commissiondomain.Service
	hierarchySvc  hierarchydomain.Service
	dealSvc       dealdomain.Service
	payoutSvc     payoutdomain.Service
	debtSvc       debtdomain.Service
	analyticsSvc  analyticsdomain.Service
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	AgencySvc     agencydomain.Service
	AgentRepo     agentdomain.Repository
	AgentSvc      agentdomain.Service
	PositionSvc   positiondomain.Service
	CarrierSvc    carrierdomain.Service
	ProductSvc    productdomain.Service
	CommissionSvc commissiondomain.Service
	HierarchySvc  hierarchydomain.Service
	DealSvc       dealdomain.Service
	PayoutSvc     payoutdomain.Service
	DebtSvc       debtdomain.Service
	AnalyticsSvc  analyticsdomain.Service
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		agencySvc:     p.AgencySvc,
		agentRepo:     p.AgentRepo,
		agentSvc:      p.AgentSvc,
		positionSvc:   p.PositionSvc,
		carrierSvc:    p.CarrierSvc,
		productSvc:    p.ProductSvc,
		commissionSvc: p.CommissionSvc,
		hierarchySvc:  p.HierarchySvc,
		dealSvc:       p.DealSvc,
		payoutSvc:     p.PayoutSvc,
		debtSvc:       p.DebtSvc,
		analyticsSvc:  p.AnalyticsSvc,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1")

	agencies := api.Group("/agencies")
	agencies.POST("", s.CreateAgency)
	agencies.GET("/:id", s.GetAgency)
	agencies.PATCH("/:id", s.UpdateAgency)

	authed := api.Group("")
	authed.Use(s.RequireAgent())

	agents := authed.Group("/agents")
	agents.POST("", s.CreateAgent)
	agents.GET("", s.ListAgents)
	agents.GET("/:id", s.GetAgent)
	agents.PATCH("/:id", s.UpdateAgent)
	agents.PUT("/:id/upline", s.ReassignUpline)
	agents.GET("/:id/downline", s.GetDownline)
	agents.GET("/:id/upline-chain", s.GetUplineChain)
	agents.GET("/:id/position-check", s.CheckUplinePositions)
	agents.GET("/:id/debt", s.GetDebt)
	agents.GET("/:id/payout-summary", s.GetAgentPayoutSummary)
	agents.GET("/:id/production-distribution", s.GetProductionDistribution)

	positions := authed.Group("/positions")
	positions.POST("", s.CreatePosition)
	positions.GET("", s.ListPositions)
	positions.GET("/:id", s.GetPosition)
	positions.PATCH("/:id", s.UpdatePosition)

	carriers := authed.Group("/carriers")
	carriers.POST("", s.CreateCarrier)
	carriers.GET("", s.ListCarriers)
	carriers.GET("/:id", s.GetCarrier)
	carriers.PUT("/:id/status-mappings", s.UpsertStatusMapping)
	carriers.GET("/:id/status-mappings", s.ListStatusMappings)

	products := authed.Group("/products")
	products.POST("", s.CreateProduct)
	products.GET("", s.ListProducts)
	products.GET("/:id", s.GetProduct)

	rates := authed.Group("/commission-rates")
	rates.PUT("", s.UpsertCommissionRate)
	rates.GET("", s.ListCommissionRates)

	deals := authed.Group("/deals")
	deals.POST("", s.CreateDeal)
	deals.GET("", s.ListDeals)
	deals.GET("/:id", s.GetDeal)
	deals.PATCH("/:id", s.UpdateDeal)
	deals.PUT("/:id/status", s.UpdateDealStatus)
	deals.DELETE("/:id", s.DeleteDeal)
	deals.GET("/:id/expected-payout", s.GetExpectedPayout)

	payouts := authed.Group("/payouts")
	payouts.GET("/carriers", s.GetCarrierPayoutSummaries)

	authed.GET("/analytics", s.GetAnalytics)
	authed.GET("/leaderboard", s.GetLeaderboard)
}
