package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cep-formacion/planner-api/internal/dto"
	"github.com/cep-formacion/planner-api/internal/models"
	"github.com/cep-formacion/planner-api/internal/service"
	appErrors "github.com/cep-formacion/planner-api/pkg/errors"
	"github.com/cep-formacion/planner-api/pkg/response"
)

type plannerService interface {
	Sites() []string
	Rooms(site string) ([]models.Room, error)
	Week(ctx context.Context, query dto.WeekQuery) (*models.WeekView, error)
	Stats(site string) (*models.PlannerStats, error)
	CheckConflict(req dto.ConflictCheckRequest) (*models.ConflictCheck, error)
	CurrentRelocation() (models.RelocationAttempt, bool)
	StartRelocation(req dto.StartRelocationRequest) (*models.RelocationAttempt, error)
	Hover(req dto.HoverRequest) (*models.HoverFeedback, error)
	Leave() (*models.RelocationAttempt, error)
	Drop(ctx context.Context, req dto.DropRequest) (*models.DropResult, error)
	CancelRelocation() (*models.DropResult, error)
	Reload(ctx context.Context) (*dto.ReloadSummary, error)
}

type timetableExporter interface {
	Export(ctx context.Context, query dto.ExportQuery) (*service.ExportResult, error)
}

// PlannerHandler exposes the room planner endpoints.
type PlannerHandler struct {
	service  plannerService
	exporter timetableExporter
}

// NewPlannerHandler builds a new handler.
func NewPlannerHandler(service plannerService, exporter timetableExporter) *PlannerHandler {
	return &PlannerHandler{service: service, exporter: exporter}
}

// Sites godoc
// @Summary List sites
// @Tags Planner
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /planner/sites [get]
func (h *PlannerHandler) Sites(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Sites())
}

// Rooms godoc
// @Summary List rooms of a site
// @Tags Planner
// @Produce json
// @Param site query string false "Site, defaults to the configured site"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/rooms [get]
func (h *PlannerHandler) Rooms(c *gin.Context) {
	rooms, err := h.service.Rooms(c.Query("site"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms)
}

// Week godoc
// @Summary Weekly planner grid
// @Tags Planner
// @Produce json
// @Param site query string false "Site"
// @Param offset query int false "Weeks away from the current week"
// @Param day query string false "Single day filter (MONDAY..SATURDAY)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/week [get]
func (h *PlannerHandler) Week(c *gin.Context) {
	offset, ok := queryOffset(c)
	if !ok {
		return
	}
	view, err := h.service.Week(c.Request.Context(), dto.WeekQuery{
		Site:   c.Query("site"),
		Offset: offset,
		Day:    c.Query("day"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Stats godoc
// @Summary Planner statistics for a site
// @Tags Planner
// @Produce json
// @Param site query string false "Site"
// @Success 200 {object} response.Envelope
// @Router /planner/stats [get]
func (h *PlannerHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Query("site"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// CheckConflict godoc
// @Summary Check a placement against the schedule
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.ConflictCheckRequest true "Candidate placement"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/conflicts/check [post]
func (h *PlannerHandler) CheckConflict(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict check payload"))
		return
	}
	result, err := h.service.CheckConflict(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// CurrentRelocation godoc
// @Summary Active relocation
// @Tags Relocation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /planner/relocation [get]
func (h *PlannerHandler) CurrentRelocation(c *gin.Context) {
	attempt, active := h.service.CurrentRelocation()
	if !active {
		response.JSON(c, http.StatusOK, nil, map[string]interface{}{"active": false, "state": attempt.State})
		return
	}
	response.JSON(c, http.StatusOK, attempt, map[string]interface{}{"active": true})
}

// StartRelocation godoc
// @Summary Pick up a session
// @Tags Relocation
// @Accept json
// @Produce json
// @Param payload body dto.StartRelocationRequest true "Session to move"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /planner/relocation [post]
func (h *PlannerHandler) StartRelocation(c *gin.Context) {
	var req dto.StartRelocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid relocation payload"))
		return
	}
	attempt, err := h.service.StartRelocation(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attempt)
}

// Hover godoc
// @Summary Evaluate the hovered cell
// @Tags Relocation
// @Accept json
// @Produce json
// @Param payload body dto.HoverRequest true "Hovered cell"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /planner/relocation/hover [put]
func (h *PlannerHandler) Hover(c *gin.Context) {
	var req dto.HoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid hover payload"))
		return
	}
	feedback, err := h.service.Hover(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feedback)
}

// Leave godoc
// @Summary Clear the hovered cell
// @Tags Relocation
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /planner/relocation/hover [delete]
func (h *PlannerHandler) Leave(c *gin.Context) {
	attempt, err := h.service.Leave()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attempt)
}

// Drop godoc
// @Summary Release the session
// @Description An empty body drops on the last hovered cell. Rejected drops return 200 with committed=false.
// @Tags Relocation
// @Accept json
// @Produce json
// @Param payload body dto.DropRequest false "Drop target"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /planner/relocation/drop [post]
func (h *PlannerHandler) Drop(c *gin.Context) {
	var req dto.DropRequest
	// An empty body, chunked or not, drops on the last hovered cell.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid drop payload"))
		return
	}
	result, err := h.service.Drop(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// CancelRelocation godoc
// @Summary Abandon the active relocation
// @Tags Relocation
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /planner/relocation [delete]
func (h *PlannerHandler) CancelRelocation(c *gin.Context) {
	result, err := h.service.CancelRelocation()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Download the weekly timetable
// @Tags Planner
// @Produce text/csv
// @Produce application/pdf
// @Param site query string false "Site"
// @Param offset query int false "Weeks away from the current week"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /planner/export [get]
func (h *PlannerHandler) Export(c *gin.Context) {
	offset, ok := queryOffset(c)
	if !ok {
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), dto.ExportQuery{
		Site:   c.Query("site"),
		Offset: offset,
		Format: c.Query("format"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}

// Reload godoc
// @Summary Reload rooms and schedule from the reference feed
// @Tags Planner
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /planner/reload [post]
func (h *PlannerHandler) Reload(c *gin.Context) {
	summary, err := h.service.Reload(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

func queryOffset(c *gin.Context) (int, bool) {
	raw := c.Query("offset")
	if raw == "" {
		return 0, true
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "offset must be an integer"))
		return 0, false
	}
	return offset, true
}
