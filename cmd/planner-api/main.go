package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/cep-formacion/planner-api/api/swagger"
	"github.com/cep-formacion/planner-api/internal/handler"
	"github.com/cep-formacion/planner-api/internal/models"
	"github.com/cep-formacion/planner-api/internal/planner"
	"github.com/cep-formacion/planner-api/internal/repository"
	"github.com/cep-formacion/planner-api/internal/seed"
	"github.com/cep-formacion/planner-api/internal/service"
	"github.com/cep-formacion/planner-api/pkg/cache"
	"github.com/cep-formacion/planner-api/pkg/config"
	"github.com/cep-formacion/planner-api/pkg/database"
	"github.com/cep-formacion/planner-api/pkg/logger"
)

// @title CEP Room Planner API
// @version 1.0.0
// @description Weekly room occupancy grid with conflict detection and drag-and-drop relocation.
// @BasePath /
// @schemes http

const cacheKeyPrefix = "planner:"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	axisCfg, err := axisConfig(cfg.Planner)
	if err != nil {
		logr.Sugar().Fatalw("invalid planner grid", "error", err)
	}
	axis, err := planner.NewAxis(axisCfg)
	if err != nil {
		logr.Sugar().Fatalw("invalid planner grid", "error", err)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()
	dependencies := map[string]handler.Pinger{}

	var (
		db         *sqlx.DB
		entryRepo  *repository.ScheduleEntryRepository
		source     seed.Source
		sourceName string
	)
	if cfg.Persistence.Enabled {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close()
		entryRepo = repository.NewScheduleEntryRepository(db)
		source = seed.NewDatabaseSource(repository.NewRoomRepository(db), entryRepo)
		sourceName = "postgres"
		dependencies["postgres"] = handler.PingFunc(db.PingContext)
	} else {
		source = seed.FileSource{Path: cfg.Planner.SeedFile}
		sourceName = "file:" + cfg.Planner.SeedFile
	}

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	switch {
	case errors.Is(err, cache.ErrDisabled):
		logr.Info("week cache disabled")
	case err != nil:
		logr.Warn("redis unavailable, serving without cache", zap.Error(err))
	default:
		redisRepo := repository.NewCacheRepository(redisClient, cacheKeyPrefix, logr)
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
		dependencies["redis"] = redisRepo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Planner.CacheTTL, logr, cacheRepo != nil)

	persister := service.NewPlacementPersister(entryRepo, metrics, service.PlacementPersisterConfig{
		Enabled:    cfg.Persistence.Enabled,
		Workers:    cfg.Persistence.WorkerConcurrency,
		MaxRetries: cfg.Persistence.WorkerRetries,
		RetryDelay: cfg.Persistence.RetryDelay,
	}, logr)

	plannerSvc := service.NewPlannerService(
		repository.NewScheduleStore(nil),
		repository.NewRoomDirectory(nil),
		axis,
		cacheSvc,
		persister,
		source,
		metrics,
		validate,
		logr,
		service.PlannerConfig{
			DefaultSite: cfg.Planner.DefaultSite,
			Locale:      cfg.Planner.Locale,
			CacheTTL:    cfg.Planner.CacheTTL,
			SourceName:  sourceName,
		},
	)
	if _, err := plannerSvc.Reload(ctx); err != nil {
		logr.Sugar().Fatalw("failed to load reference feed", "source", sourceName, "error", err)
	}
	exportSvc := service.NewExportService(plannerSvc, service.ExportConfig{Locale: cfg.Planner.Locale}, logr, nil, nil)

	persister.Start(ctx)

	r := newRouter(cfg, logr, routerDeps{
		planner:      handler.NewPlannerHandler(plannerSvc, exportSvc),
		metrics:      handler.NewMetricsHandler(metrics, dependencies),
		metricsSvc:   metrics,
		metricsOn:    cfg.Metrics.Enabled,
		metricsRoute: cfg.Metrics.Path,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env, "source", sourceName)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		logr.Sugar().Errorw("server failed", "error", err)
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("could not stop server gracefully", "error", err)
		_ = server.Close()
	}
	persister.Stop()
	logr.Info("server stopped")
}

func axisConfig(cfg config.PlannerConfig) (planner.AxisConfig, error) {
	axisCfg := planner.DefaultAxisConfig()
	if cfg.DayStart != "" {
		start, err := models.ParseClock(cfg.DayStart)
		if err != nil {
			return axisCfg, fmt.Errorf("PLANNER_DAY_START: %w", err)
		}
		axisCfg.DayStart = start
	}
	if cfg.DayEnd != "" {
		end, err := models.ParseClock(cfg.DayEnd)
		if err != nil {
			return axisCfg, fmt.Errorf("PLANNER_DAY_END: %w", err)
		}
		axisCfg.DayEnd = end
	}
	if cfg.PixelsPerHour > 0 {
		axisCfg.PixelsPerHour = cfg.PixelsPerHour
	}
	if cfg.SnapMinutes > 0 {
		axisCfg.SnapMinutes = cfg.SnapMinutes
	}
	if cfg.ColumnWidth > 0 {
		axisCfg.ColumnWidth = cfg.ColumnWidth
	}
	if cfg.GutterWidth > 0 {
		axisCfg.GutterWidth = cfg.GutterWidth
	}
	return axisCfg, nil
}
