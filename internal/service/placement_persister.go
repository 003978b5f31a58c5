package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cep-formacion/planner-api/internal/models"
	"github.com/cep-formacion/planner-api/internal/repository"
	"github.com/cep-formacion/planner-api/pkg/jobs"
)

const placementJobType = "schedule.relocate"

type placementRepository interface {
	SavePlacement(ctx context.Context, change models.PlacementChange) error
}

// PlacementPersisterConfig tunes the background worker pool.
type PlacementPersisterConfig struct {
	Enabled    bool
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// PlacementPersister hands committed relocations to the external store in the background.
// The in-memory schedule stays authoritative whether or not persistence is enabled.
type PlacementPersister struct {
	repo    placementRepository
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	enabled bool
}

// NewPlacementPersister builds the persister and its queue. Call Start before enqueueing.
func NewPlacementPersister(repo placementRepository, metrics *MetricsService, cfg PlacementPersisterConfig, logger *zap.Logger) *PlacementPersister {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &PlacementPersister{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		enabled: cfg.Enabled && repo != nil,
	}
	p.queue = jobs.NewQueue("placement-persister", p.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnFailure:  p.onFailure,
	})
	return p
}

// Enabled reports whether commits are forwarded to the external store.
func (p *PlacementPersister) Enabled() bool {
	return p != nil && p.enabled
}

// Start launches the workers.
func (p *PlacementPersister) Start(ctx context.Context) {
	if !p.Enabled() {
		return
	}
	p.queue.Start(ctx)
}

// Stop stops the workers after giving buffered saves and saves waiting for a retry one last attempt.
func (p *PlacementPersister) Stop() {
	if !p.Enabled() {
		return
	}
	p.queue.Stop()
}

// Enqueue schedules a durable save of a committed relocation.
func (p *PlacementPersister) Enqueue(change models.PlacementChange) error {
	if !p.Enabled() {
		p.metrics.RecordPersistence("skipped")
		return nil
	}
	job := jobs.Job{ID: change.AttemptID, Type: placementJobType, Payload: change}
	if err := p.queue.Enqueue(job); err != nil {
		p.metrics.RecordPersistence("rejected")
		return fmt.Errorf("enqueue placement %s: %w", change.EntryID, err)
	}
	return nil
}

func (p *PlacementPersister) handle(ctx context.Context, job jobs.Job) error {
	change, ok := job.Payload.(models.PlacementChange)
	if !ok {
		p.logger.Sugar().Errorw("unexpected placement payload", "job_id", job.ID, "type", fmt.Sprintf("%T", job.Payload))
		return nil
	}

	start := time.Now()
	err := p.repo.SavePlacement(ctx, change)
	p.metrics.ObserveDBQuery("save_placement", time.Since(start))
	if err != nil {
		if errors.Is(err, repository.ErrPlacementSuperseded) {
			p.metrics.RecordPersistence("superseded")
			p.logger.Sugar().Infow("placement superseded", "entry_id", change.EntryID, "version", change.Version)
			return nil
		}
		return err
	}

	p.metrics.RecordPersistence("saved")
	p.logger.Sugar().Infow("placement saved",
		"entry_id", change.EntryID,
		"room_id", change.Current.RoomID,
		"start_time", change.Current.StartTime.String(),
		"version", change.Version,
		"attempt", job.Attempt,
	)
	return nil
}

func (p *PlacementPersister) onFailure(job jobs.Job, err error) {
	p.metrics.RecordPersistence("failed")
	p.logger.Sugar().Errorw("placement not saved", "job_id", job.ID, "attempts", job.Attempt, "error", err)
}
