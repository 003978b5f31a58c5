package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cep-formacion/planner-api/internal/models"
)

// ErrPlacementSuperseded is returned when the stored row already carries the same or a newer version.
var ErrPlacementSuperseded = errors.New("placement superseded by a newer version")

// ScheduleEntryRepository reads the schedule seed and durably saves committed relocations.
type ScheduleEntryRepository struct {
	db *sqlx.DB
}

// NewScheduleEntryRepository constructs the repository.
func NewScheduleEntryRepository(db *sqlx.DB) *ScheduleEntryRepository {
	return &ScheduleEntryRepository{db: db}
}

// List returns every weekly schedule entry.
func (r *ScheduleEntryRepository) List(ctx context.Context) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, COALESCE(convocation_id, '') AS convocation_id, COALESCE(course_code, '') AS course_code,
course_label, teacher_label, room_id, day, start_time, duration_minutes, COALESCE(status, 'PLANNED') AS status,
COALESCE(color_tag, '') AS color_tag, has_conflict, version
FROM schedule_entries ORDER BY day ASC, start_time ASC, id ASC`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}

// SavePlacement writes a committed relocation and its audit record in one transaction.
func (r *ScheduleEntryRepository) SavePlacement(ctx context.Context, change models.PlacementChange) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin placement tx: %w", err)
	}

	const update = `UPDATE schedule_entries
SET room_id = $1, start_time = $2, end_time = $3, has_conflict = FALSE, version = $4, updated_at = $5
WHERE id = $6 AND version < $4`
	end := change.Current.StartTime.Add(change.DurationMinutes)
	res, err := tx.ExecContext(ctx, update,
		change.Current.RoomID,
		change.Current.StartTime,
		end,
		change.Version,
		time.Now().UTC(),
		change.EntryID,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update schedule entry placement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("read placement rows affected: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("save placement for %s at version %d: %w", change.EntryID, change.Version, ErrPlacementSuperseded)
	}

	oldValues, err := json.Marshal(change.Previous)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("marshal previous placement: %w", err)
	}
	newValues, err := json.Marshal(change.Current)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("marshal current placement: %w", err)
	}
	resourceID := change.EntryID
	log := &models.AuditLog{
		Action:     models.AuditActionScheduleRelocate,
		Resource:   models.AuditResourceScheduleEntry,
		ResourceID: &resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
		CreatedAt:  change.CommittedAt,
	}
	if err := insertAuditLog(ctx, tx, log); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit placement tx: %w", err)
	}
	return nil
}

func insertAuditLog(ctx context.Context, exec sqlx.ExtContext, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, action, resource, resource_id, old_values, new_values, created_at) VALUES (:id, :action, :resource, :resource_id, :old_values, :new_values, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
