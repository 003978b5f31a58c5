package seed

import (
	"context"
	"fmt"

	"github.com/cep-formacion/planner-api/internal/models"
	"github.com/cep-formacion/planner-api/internal/planner"
)

type roomLister interface {
	List(ctx context.Context) ([]models.Room, error)
}

type entryLister interface {
	List(ctx context.Context) ([]models.ScheduleEntry, error)
}

// DatabaseSource reads the feed from the rooms and schedule_entries tables.
type DatabaseSource struct {
	rooms   roomLister
	entries entryLister
}

// NewDatabaseSource builds a Source over the Postgres repositories.
func NewDatabaseSource(rooms roomLister, entries entryLister) *DatabaseSource {
	return &DatabaseSource{rooms: rooms, entries: entries}
}

// Load implements Source.
func (s *DatabaseSource) Load(ctx context.Context) (Dataset, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return Dataset{}, fmt.Errorf("load rooms: %w", err)
	}
	entries, err := s.entries.List(ctx)
	if err != nil {
		return Dataset{}, fmt.Errorf("load schedule entries: %w", err)
	}
	return Dataset{Rooms: rooms, Entries: planner.FlagConflicts(entries)}, nil
}
