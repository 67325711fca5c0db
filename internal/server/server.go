package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	analyticsdomain "github.com/smallbiznis/churnlytics/internal/analytics/domain"
	"github.com/smallbiznis/churnlytics/internal/clock"
	"github.com/smallbiznis/churnlytics/internal/config"
	exportdomain "github.com/smallbiznis/churnlytics/internal/export/domain"
	importerdomain "github.com/smallbiznis/churnlytics/internal/importer/domain"
	"github.com/smallbiznis/churnlytics/internal/observability"
	obsmiddleware "github.com/smallbiznis/churnlytics/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/churnlytics/internal/observability/metrics"
	obstracing "github.com/smallbiznis/churnlytics/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
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

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine      *gin.Engine
	cfg         config.Config
	clock       clock.Clock
	log         *zap.Logger
	analytics   analyticsdomain.Service
	importerSvc importerdomain.Service
	exportSvc   exportdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Clock       clock.Clock
	Log         *zap.Logger
	Analytics   analyticsdomain.Service
	ImporterSvc importerdomain.Service
	ExportSvc   exportdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		clock:       p.Clock,
		log:         p.Log.Named("http.server"),
		analytics:   p.Analytics,
		importerSvc: p.ImporterSvc,
		exportSvc:   p.ExportSvc,
	}

	svc.RegisterAPIRoutes()

	return svc
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.Health)

	api.GET("/overview", s.Overview)
	api.GET("/churn-analysis", s.ChurnAnalysis)
	api.GET("/at-risk-members", s.AtRiskMembers)
	api.GET("/engagement", s.Engagement)
	api.GET("/revenue", s.Revenue)
	api.GET("/sales-funnel", s.SalesFunnel)
	api.GET("/location-comparison", s.LocationComparison)

	imports := api.Group("/import")
	{
		imports.POST("/preview", s.PreviewImport)
		imports.POST("/members", s.ImportMembers)
		imports.POST("/checkins", s.ImportCheckins)
		imports.GET("/history", s.ImportHistory)
	}

	exports := api.Group("/export")
	{
		exports.GET("/overview", s.ExportReport(exportdomain.KindOverview))
		exports.GET("/at-risk", s.ExportReport(exportdomain.KindAtRisk))
		exports.GET("/churn-analysis", s.ExportReport(exportdomain.KindChurnAnalysis))
		exports.GET("/revenue", s.ExportReport(exportdomain.KindRevenue))
		exports.GET("/overview/pdf", s.ExportOverviewPDF)
	}

	api.GET("/template/:name", s.DownloadTemplate)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": s.clock.Now().Format(time.RFC3339),
	})
}
