package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cep-formacion/planner-api/internal/dto"
	"github.com/cep-formacion/planner-api/internal/models"
	"github.com/cep-formacion/planner-api/internal/planner"
	"github.com/cep-formacion/planner-api/internal/seed"
	appErrors "github.com/cep-formacion/planner-api/pkg/errors"
)

const weekCachePattern = "week:*"

type scheduleStore interface {
	planner.Store
	List(filter models.EntryFilter) []models.ScheduleEntry
	Load(entries []models.ScheduleEntry)
}

type roomDirectory interface {
	planner.RoomLookup
	BySite(siteID string) []models.Room
	Sites() []string
	Load(rooms []models.Room)
}

type placementEnqueuer interface {
	Enqueue(change models.PlacementChange) error
}

type weekCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// PlannerConfig carries planner presentation settings.
type PlannerConfig struct {
	DefaultSite string
	Locale      string
	CacheTTL    time.Duration
	SourceName  string
}

// PlannerService exposes the weekly room planner and the relocation flow.
type PlannerService struct {
	store     scheduleStore
	rooms     roomDirectory
	axis      *planner.Axis
	detector  *planner.Detector
	relocator *planner.Relocator
	cache     weekCache
	persister placementEnqueuer
	source    seed.Source
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PlannerConfig
	now       func() time.Time

	// generation is bumped on every schedule change and is part of the week cache
	// key, so a view built before a change can never be read after it.
	generation atomic.Uint64
}

// NewPlannerService wires the planner over an already seeded store and room directory.
func NewPlannerService(
	store scheduleStore,
	rooms roomDirectory,
	axis *planner.Axis,
	cache weekCache,
	persister placementEnqueuer,
	source seed.Source,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PlannerConfig,
) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if axis == nil {
		axis, _ = planner.NewAxis(planner.DefaultAxisConfig())
	}
	if cfg.Locale == "" {
		cfg.Locale = planner.LocaleES
	}
	return &PlannerService{
		store:     store,
		rooms:     rooms,
		axis:      axis,
		detector:  planner.NewDetector(store),
		relocator: planner.NewRelocator(store, rooms, axis),
		cache:     cache,
		persister: persister,
		source:    source,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Sites lists the sites that own at least one room.
func (s *PlannerService) Sites() []string {
	return s.rooms.Sites()
}

// Rooms lists the rooms of a site in feed order.
func (s *PlannerService) Rooms(site string) ([]models.Room, error) {
	siteID, err := s.resolveSite(site)
	if err != nil {
		return nil, err
	}
	return s.rooms.BySite(siteID), nil
}

// Week builds the grid for one site and week, optionally narrowed to a single day.
func (s *PlannerService) Week(ctx context.Context, query dto.WeekQuery) (*models.WeekView, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	siteID, err := s.resolveSite(query.Site)
	if err != nil {
		return nil, err
	}
	var day *models.Weekday
	if strings.TrimSpace(query.Day) != "" {
		parsed, err := models.ParseWeekday(query.Day)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day")
		}
		day = &parsed
	}

	window := planner.ResolveWindow(query.Offset, s.now(), s.cfg.Locale)
	cacheKey := weekCacheKey(s.generation.Load(), siteID, window.Start, day)
	if s.cache != nil {
		var cached models.WeekView
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			s.logger.Warn("week cache lookup failed", zap.String("key", cacheKey), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	rooms := s.rooms.BySite(siteID)
	entries := s.entriesFor(rooms, day)

	columns := make([]models.RoomColumn, len(rooms))
	index := make(map[string]int, len(rooms))
	for i, room := range rooms {
		index[room.ID] = i
		columns[i] = models.RoomColumn{Room: room, Index: i, Left: s.axis.ColumnLeft(i)}
	}
	blocks := make([]models.PositionedBlock, 0, len(entries))
	for _, entry := range entries {
		i := index[entry.RoomID]
		columns[i].Sessions++
		blocks = append(blocks, s.axis.Place(entry, i))
	}

	view := &models.WeekView{
		Site:       siteID,
		Window:     window,
		Day:        day,
		HourLabels: s.axis.HourLabels(),
		GridHeight: s.axis.Height(),
		Rooms:      columns,
		Blocks:     blocks,
		Stats:      buildStats(siteID, rooms, entries),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, view, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("week cache store failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return view, nil
}

// Stats summarises the whole week of a site.
func (s *PlannerService) Stats(site string) (*models.PlannerStats, error) {
	siteID, err := s.resolveSite(site)
	if err != nil {
		return nil, err
	}
	rooms := s.rooms.BySite(siteID)
	stats := buildStats(siteID, rooms, s.entriesFor(rooms, nil))
	return &stats, nil
}

// CheckConflict answers whether an arbitrary placement would collide with the schedule.
// Placements outside the planner day are rejected before any overlap check.
func (s *PlannerService) CheckConflict(req dto.ConflictCheckRequest) (*models.ConflictCheck, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	day, err := models.ParseWeekday(req.Day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day")
	}
	start, err := models.ParseClock(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start_time")
	}
	if _, ok := s.rooms.FindRoom(req.RoomID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
	}

	if !s.axis.Contains(start, req.DurationMinutes) {
		return &models.ConflictCheck{Reason: planner.ReasonOutOfRange}, nil
	}
	result := &models.ConflictCheck{InRange: true}
	if s.detector.HasOverlap(req.RoomID, day, start, req.DurationMinutes, req.ExcludeEntryID) {
		result.HasOverlap = true
		result.Reason = planner.ReasonOccupied
	}
	return result, nil
}

// CurrentRelocation returns the active drag, if any.
func (s *PlannerService) CurrentRelocation() (models.RelocationAttempt, bool) {
	return s.relocator.Current()
}

// StartRelocation picks up a session.
func (s *PlannerService) StartRelocation(req dto.StartRelocationRequest) (*models.RelocationAttempt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	attempt, err := s.relocator.PickUp(req.EntryID)
	if err != nil {
		return nil, s.relocationError(err, "failed to start relocation")
	}
	s.logger.Info("relocation started",
		zap.String("attempt_id", attempt.ID),
		zap.String("entry_id", attempt.EntryID),
		zap.String("room_id", attempt.Original.RoomID),
		zap.String("start_time", attempt.Original.StartTime.String()),
	)
	return &attempt, nil
}

// Hover evaluates the cell under the pointer.
func (s *PlannerService) Hover(req dto.HoverRequest) (*models.HoverFeedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	start, err := s.resolveStart(req.StartTime, req.Offset)
	if err != nil {
		return nil, err
	}
	feedback, err := s.relocator.Hover(req.RoomID, start)
	if err != nil {
		return nil, s.relocationError(err, "failed to evaluate hover")
	}
	s.metrics.RecordHover(feedback.IsValid)
	return &feedback, nil
}

// Leave clears the hovered cell.
func (s *PlannerService) Leave() (*models.RelocationAttempt, error) {
	attempt, err := s.relocator.Leave()
	if err != nil {
		return nil, s.relocationError(err, "failed to leave cell")
	}
	return &attempt, nil
}

// Drop releases the dragged session. An empty request drops on the last hovered cell.
func (s *PlannerService) Drop(ctx context.Context, req dto.DropRequest) (*models.DropResult, error) {
	var cell *planner.Cell
	if req.RoomID != "" {
		start, err := s.resolveStart(req.StartTime, req.Offset)
		if err != nil {
			return nil, err
		}
		cell = &planner.Cell{RoomID: req.RoomID, StartTime: start}
	}

	result, err := s.relocator.Drop(cell)
	if err != nil {
		if errors.Is(err, planner.ErrStaleEntity) {
			s.metrics.RecordRelocation("stale")
			s.logger.Warn("relocation aborted", zap.Error(err))
		}
		return nil, s.relocationError(err, "failed to drop session")
	}

	if !result.Committed {
		s.metrics.RecordRelocation("rejected")
		s.logger.Info("relocation rejected",
			zap.String("attempt_id", result.Attempt.ID),
			zap.String("entry_id", result.Attempt.EntryID),
			zap.String("reason", result.Reason),
		)
		return &result, nil
	}

	s.metrics.RecordRelocation("committed")
	s.afterCommit(ctx, result)
	return &result, nil
}

// CancelRelocation abandons the active drag.
func (s *PlannerService) CancelRelocation() (*models.DropResult, error) {
	result, err := s.relocator.Cancel()
	if err != nil {
		return nil, s.relocationError(err, "failed to cancel relocation")
	}
	s.metrics.RecordRelocation("cancelled")
	return &result, nil
}

// Reload replaces rooms and schedule with a fresh copy of the reference feed.
// An active drag is cancelled first; its drop would otherwise hit a stale entity.
func (s *PlannerService) Reload(ctx context.Context) (*dto.ReloadSummary, error) {
	if s.source == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "no reference feed configured")
	}
	dataset, err := s.source.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to load reference feed")
	}
	cancelled, err := s.relocator.Reset(func() {
		s.rooms.Load(dataset.Rooms)
		s.store.Load(dataset.Entries)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset relocation")
	}
	if cancelled {
		s.metrics.RecordRelocation("cancelled")
	}
	s.invalidateWeeks(ctx)

	conflicts := countConflicts(dataset.Entries)
	s.metrics.SetScheduleConflicts(conflicts)
	s.logger.Info("reference feed loaded",
		zap.String("source", s.cfg.SourceName),
		zap.Int("rooms", len(dataset.Rooms)),
		zap.Int("entries", len(dataset.Entries)),
		zap.Int("conflicts", conflicts),
	)
	return &dto.ReloadSummary{
		Rooms:     len(dataset.Rooms),
		Entries:   len(dataset.Entries),
		Conflicts: conflicts,
		Source:    s.cfg.SourceName,
	}, nil
}

func (s *PlannerService) afterCommit(ctx context.Context, result models.DropResult) {
	entry := result.Entry
	s.logger.Info("relocation committed",
		zap.String("attempt_id", result.Attempt.ID),
		zap.String("entry_id", entry.ID),
		zap.String("from_room", result.Attempt.Original.RoomID),
		zap.String("to_room", entry.RoomID),
		zap.String("from_time", result.Attempt.Original.StartTime.String()),
		zap.String("to_time", entry.StartTime.String()),
		zap.Int("version", entry.Version),
	)
	s.invalidateWeeks(ctx)
	s.metrics.SetScheduleConflicts(countConflicts(s.store.List(models.EntryFilter{})))

	if s.persister == nil {
		return
	}
	change := models.PlacementChange{
		EntryID:         entry.ID,
		AttemptID:       result.Attempt.ID,
		Previous:        result.Attempt.Original,
		Current:         models.PlacementOf(*entry),
		DurationMinutes: entry.DurationMinutes,
		Version:         entry.Version,
		CommittedAt:     s.now().UTC(),
	}
	if err := s.persister.Enqueue(change); err != nil {
		s.logger.Error("placement not queued", zap.String("entry_id", entry.ID), zap.Error(err))
	}
}

func (s *PlannerService) invalidateWeeks(ctx context.Context) {
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, weekCachePattern); err != nil {
		s.logger.Warn("week cache invalidation failed", zap.Error(err))
	}
}

func (s *PlannerService) resolveSite(site string) (string, error) {
	site = strings.TrimSpace(site)
	sites := s.rooms.Sites()
	if site == "" {
		site = s.cfg.DefaultSite
	}
	if site == "" {
		if len(sites) == 0 {
			return "", appErrors.Clone(appErrors.ErrNotFound, "no sites available")
		}
		return sites[0], nil
	}
	for _, known := range sites {
		if known == site {
			return site, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrNotFound, "site not found")
}

func (s *PlannerService) resolveStart(raw string, offset *float64) (models.Clock, error) {
	if strings.TrimSpace(raw) != "" {
		start, err := models.ParseClock(raw)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start_time")
		}
		return start, nil
	}
	if offset == nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "start_time or offset is required")
	}
	// Offsets off the grid still resolve; the relocation flow flags them as out of range.
	start, _ := s.axis.TimeAt(*offset)
	return start, nil
}

func (s *PlannerService) entriesFor(rooms []models.Room, day *models.Weekday) []models.ScheduleEntry {
	if len(rooms) == 0 {
		return nil
	}
	ids := make([]string, len(rooms))
	for i, room := range rooms {
		ids[i] = room.ID
	}
	return s.store.List(models.EntryFilter{RoomIDs: ids, Day: day})
}

func (s *PlannerService) relocationError(err error, fallback string) error {
	switch {
	case errors.Is(err, planner.ErrRelocationInProgress):
		return appErrors.Clone(appErrors.ErrRelocationInProgress, "")
	case errors.Is(err, planner.ErrNoActiveRelocation):
		return appErrors.Clone(appErrors.ErrNoActiveRelocation, "")
	case errors.Is(err, planner.ErrStaleEntity):
		return appErrors.Wrap(err, appErrors.ErrStaleEntity.Code, appErrors.ErrStaleEntity.Status, appErrors.ErrStaleEntity.Message)
	case errors.Is(err, models.ErrEntryNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fallback)
}

func buildStats(siteID string, rooms []models.Room, entries []models.ScheduleEntry) models.PlannerStats {
	counts := make(map[string]int, len(rooms))
	conflicts := 0
	for _, entry := range entries {
		counts[entry.RoomID]++
		if entry.HasConflict {
			conflicts++
		}
	}
	perRoom := make([]models.RoomOccupancy, 0, len(rooms))
	for _, room := range rooms {
		perRoom = append(perRoom, models.RoomOccupancy{
			RoomID:   room.ID,
			Name:     room.Name,
			Code:     room.Code,
			Capacity: room.Capacity,
			Sessions: counts[room.ID],
		})
	}
	sort.SliceStable(perRoom, func(i, j int) bool { return perRoom[i].Sessions > perRoom[j].Sessions })
	return models.PlannerStats{
		Site:          siteID,
		TotalSessions: len(entries),
		Conflicts:     conflicts,
		Rooms:         len(rooms),
		PerRoom:       perRoom,
	}
}

func countConflicts(entries []models.ScheduleEntry) int {
	n := 0
	for _, entry := range entries {
		if entry.HasConflict {
			n++
		}
	}
	return n
}

func weekCacheKey(generation uint64, siteID string, weekStart time.Time, day *models.Weekday) string {
	dayKey := "all"
	if day != nil {
		dayKey = strings.ToLower(string(*day))
	}
	return fmt.Sprintf("week:g%d:%s:%s:%s", generation, siteID, weekStart.Format("2006-01-02"), dayKey)
}
