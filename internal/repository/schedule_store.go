package repository

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cep-formacion/planner-api/internal/models"
)

// ScheduleStore is the in-memory source of truth for schedule entries. Every read returns
// copies, so callers can never mutate stored entries behind the store's back.
type ScheduleStore struct {
	mu      sync.RWMutex
	entries map[string]*models.ScheduleEntry
}

// NewScheduleStore builds a store seeded with the given entries.
func NewScheduleStore(entries []models.ScheduleEntry) *ScheduleStore {
	s := &ScheduleStore{entries: make(map[string]*models.ScheduleEntry, len(entries))}
	s.Load(entries)
	return s
}

// Load replaces the whole content of the store with the inbound feed.
func (s *ScheduleStore) Load(entries []models.ScheduleEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*models.ScheduleEntry, len(entries))
	for _, entry := range entries {
		e := entry
		s.entries[e.ID] = &e
	}
}

// Remove deletes an entry on behalf of the inbound feed. The planner never calls it.
func (s *ScheduleStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// FindByID returns a copy of the entry with the given id.
func (s *ScheduleStore) FindByID(id string) (models.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entry, ok := s.entries[id]; ok {
		return *entry, nil
	}
	return models.ScheduleEntry{}, models.ErrEntryNotFound
}

// FindByRoomAndDay returns every entry in a room on a weekday, in no particular order.
func (s *ScheduleStore) FindByRoomAndDay(roomID string, day models.Weekday) []models.ScheduleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.ScheduleEntry, 0)
	for _, entry := range s.entries {
		if entry.RoomID == roomID && entry.Day == day {
			result = append(result, *entry)
		}
	}
	return result
}

// List returns entries matching the filter ordered by day, start time and id.
func (s *ScheduleStore) List(filter models.EntryFilter) []models.ScheduleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rooms map[string]struct{}
	if filter.RoomIDs != nil {
		rooms = make(map[string]struct{}, len(filter.RoomIDs))
		for _, id := range filter.RoomIDs {
			rooms[id] = struct{}{}
		}
	}

	result := make([]models.ScheduleEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		if rooms != nil {
			if _, ok := rooms[entry.RoomID]; !ok {
				continue
			}
		}
		if filter.Day != nil && entry.Day != *filter.Day {
			continue
		}
		result = append(result, *entry)
	}
	sortEntries(result)
	return result
}

// Snapshot returns every entry, ordered.
func (s *ScheduleStore) Snapshot() []models.ScheduleEntry {
	return s.List(models.EntryFilter{})
}

// Replace applies a partial update and bumps the entry version. A patch carrying
// ExpectedVersion fails with ErrVersionMismatch when the entry has moved on.
func (s *ScheduleStore) Replace(id string, patch models.ScheduleEntryPatch) (*models.ScheduleEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("replace entry %s: %w", id, models.ErrEntryNotFound)
	}
	if patch.ExpectedVersion != nil && *patch.ExpectedVersion != current.Version {
		return nil, fmt.Errorf("replace entry %s at version %d, stored %d: %w", id, *patch.ExpectedVersion, current.Version, models.ErrVersionMismatch)
	}

	next := *current
	if patch.RoomID != nil {
		next.RoomID = *patch.RoomID
	}
	if patch.Day != nil {
		if !patch.Day.Valid() {
			return nil, fmt.Errorf("replace entry %s: invalid day %q", id, *patch.Day)
		}
		next.Day = *patch.Day
	}
	if patch.StartTime != nil {
		next.StartTime = *patch.StartTime
	}
	if patch.DurationMinutes != nil {
		if *patch.DurationMinutes <= 0 {
			return nil, fmt.Errorf("replace entry %s: duration must be positive", id)
		}
		next.DurationMinutes = *patch.DurationMinutes
	}
	if patch.HasConflict != nil {
		next.HasConflict = *patch.HasConflict
	}
	if patch.ColorTag != nil {
		next.ColorTag = *patch.ColorTag
	}
	next.Version = current.Version + 1

	s.entries[id] = &next
	updated := next
	return &updated, nil
}

func sortEntries(entries []models.ScheduleEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Day != b.Day {
			return a.Day.Index() < b.Day.Index()
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}
