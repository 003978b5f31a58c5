package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cep-formacion/planner-api/internal/handler"
	"github.com/cep-formacion/planner-api/internal/models"
	"github.com/cep-formacion/planner-api/internal/planner"
	"github.com/cep-formacion/planner-api/internal/repository"
	"github.com/cep-formacion/planner-api/internal/seed"
	"github.com/cep-formacion/planner-api/internal/service"
	"github.com/cep-formacion/planner-api/pkg/config"
)

func TestAxisConfig(t *testing.T) {
	cfg, err := axisConfig(config.PlannerConfig{DayStart: "07:30", DayEnd: "21:00", PixelsPerHour: 60, SnapMinutes: 15})
	require.NoError(t, err)
	assert.Equal(t, models.NewClock(7, 30), cfg.DayStart)
	assert.Equal(t, models.NewClock(21, 0), cfg.DayEnd)
	assert.Equal(t, 60.0, cfg.PixelsPerHour)
	assert.Equal(t, 15, cfg.SnapMinutes)
	assert.Equal(t, planner.DefaultAxisConfig().ColumnWidth, cfg.ColumnWidth)

	_, err = axisConfig(config.PlannerConfig{DayStart: "late"})
	assert.Error(t, err)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	axis, err := planner.NewAxis(planner.DefaultAxisConfig())
	require.NoError(t, err)

	metrics := service.NewMetricsService()
	svc := service.NewPlannerService(
		repository.NewScheduleStore(nil),
		repository.NewRoomDirectory(nil),
		axis,
		service.NewCacheService(nil, metrics, 0, nil, false),
		nil,
		seed.FileSource{Path: filepath.Join("..", "..", "seed", "planner.yaml")},
		metrics,
		nil,
		zap.NewNop(),
		service.PlannerConfig{DefaultSite: "CEP Norte", Locale: "es", SourceName: "file"},
	)
	_, err = svc.Reload(context.Background())
	require.NoError(t, err)

	cfg := &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api/v1"}
	return newRouter(cfg, zap.NewNop(), routerDeps{
		planner:    handler.NewPlannerHandler(svc, service.NewExportService(svc, service.ExportConfig{Locale: "es"}, nil, nil, nil)),
		metrics:    handler.NewMetricsHandler(metrics, nil),
		metricsSvc: metrics,
		metricsOn:  true,
	})
}

func TestRouterServesPlanner(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/planner/sites", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var sites struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sites))
	assert.Equal(t, []string{"CEP Norte", "CEP Santa Cruz", "CEP Sur"}, sites.Data)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/planner/week", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"site":"CEP Norte"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/planner/export?format=csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;"))

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouterRelocationRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/planner/relocation", nil))
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/planner/relocation", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":false`)
}
