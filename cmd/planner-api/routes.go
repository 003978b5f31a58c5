package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/cep-formacion/planner-api/internal/handler"
	"github.com/cep-formacion/planner-api/internal/middleware"
	"github.com/cep-formacion/planner-api/internal/service"
	"github.com/cep-formacion/planner-api/pkg/config"
	"github.com/cep-formacion/planner-api/pkg/logger"
	corsmiddleware "github.com/cep-formacion/planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cep-formacion/planner-api/pkg/middleware/requestid"
)

type routerDeps struct {
	planner      *handler.PlannerHandler
	metrics      *handler.MetricsHandler
	metricsSvc   *service.MetricsService
	metricsOn    bool
	metricsRoute string
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	metricsRoute := deps.metricsRoute
	if metricsRoute == "" {
		metricsRoute = "/metrics"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", metricsRoute))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if deps.metricsOn {
		r.Use(middleware.Metrics(deps.metricsSvc))
		r.GET(metricsRoute, deps.metrics.Prometheus)
	}

	r.GET("/health", deps.metrics.Health)
	r.GET("/ready", deps.metrics.Ready)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	p := api.Group("/planner")
	p.GET("/sites", deps.planner.Sites)
	p.GET("/rooms", deps.planner.Rooms)
	p.GET("/week", deps.planner.Week)
	p.GET("/stats", deps.planner.Stats)
	p.GET("/export", deps.planner.Export)
	p.POST("/conflicts/check", deps.planner.CheckConflict)
	p.POST("/reload", deps.planner.Reload)

	p.GET("/relocation", deps.planner.CurrentRelocation)
	p.POST("/relocation", deps.planner.StartRelocation)
	p.DELETE("/relocation", deps.planner.CancelRelocation)
	p.PUT("/relocation/hover", deps.planner.Hover)
	p.DELETE("/relocation/hover", deps.planner.Leave)
	p.POST("/relocation/drop", deps.planner.Drop)

	return r
}
