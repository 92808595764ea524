package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/clinicops/internal/auth"
	authdomain "github.com/smallbiznis/clinicops/internal/auth/domain"
	"github.com/smallbiznis/clinicops/internal/auth/session"
	"github.com/smallbiznis/clinicops/internal/authorization"
	"github.com/smallbiznis/clinicops/internal/cloudmetrics"
	"github.com/smallbiznis/clinicops/internal/config"
	"github.com/smallbiznis/clinicops/internal/insights"
	insightsdomain "github.com/smallbiznis/clinicops/internal/insights/domain"
	"github.com/smallbiznis/clinicops/internal/invoice"
	"github.com/smallbiznis/clinicops/internal/observability"
	obsmiddleware "github.com/smallbiznis/clinicops/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/clinicops/internal/observability/metrics"
	obstracing "github.com/smallbiznis/clinicops/internal/observability/tracing"
	"github.com/smallbiznis/clinicops/internal/ratelimit"
	"github.com/smallbiznis/clinicops/internal/tenant"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var Module = fx.Module("http.server",
	tenant.Module,
	auth.Module,
	authorization.Module,
	invoice.Module,
	insights.Module,
	ratelimit.Module,
	cloudmetrics.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
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

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger, shutdowner fx.Shutdowner) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	authsvc     authdomain.Service
	sessions    *session.Manager
	authzSvc    authorization.Service
	insightsSvc insightsdomain.Service
	obsMetrics  *obsmetrics.Metrics
	limiter     *ratelimit.InsightsLimiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	Authsvc     authdomain.Service
	Sessions    *session.Manager
	AuthzSvc    authorization.Service
	InsightsSvc insightsdomain.Service
	ObsMetrics  *obsmetrics.Metrics        `optional:"true"`
	Limiter     *ratelimit.InsightsLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         log.Named("http.server"),
		authsvc:     p.Authsvc,
		sessions:    p.Sessions,
		authzSvc:    p.AuthzSvc,
		insightsSvc: p.InsightsSvc,
		obsMetrics:  p.ObsMetrics,
		limiter:     p.Limiter,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterRoutes() {
	authed := s.engine.Group("/", s.AuthRequired())

	authed.GET("/auth/me", s.Me)
	authed.POST("/auth/logout", s.Logout)

	authed.GET("/insights/overview",
		s.RequirePermission(authorization.ObjectInsights, authorization.ActionInsightsView),
		s.InsightsRateLimit(endpointOverview),
		s.GetInsightsOverview,
	)
	authed.GET("/dashboard/metrics",
		s.RequirePermission(authorization.ObjectDashboard, authorization.ActionDashboardView),
		s.InsightsRateLimit(endpointDashboard),
		s.GetDashboardMetrics,
	)

	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
