// Package seed loads the room and weekly schedule reference feed the planner starts from.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cep-formacion/planner-api/internal/models"
	"github.com/cep-formacion/planner-api/internal/planner"
)

// Dataset is one snapshot of the reference feed.
type Dataset struct {
	Rooms   []models.Room
	Entries []models.ScheduleEntry
}

// Source produces a Dataset on demand.
type Source interface {
	Load(ctx context.Context) (Dataset, error)
}

type fileDocument struct {
	Rooms   []roomRecord  `yaml:"rooms"`
	Entries []entryRecord `yaml:"entries"`
}

type roomRecord struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Code      string   `yaml:"code"`
	Site      string   `yaml:"site"`
	Capacity  int      `yaml:"capacity"`
	Kind      string   `yaml:"kind"`
	Equipment []string `yaml:"equipment"`
}

type entryRecord struct {
	ID            string `yaml:"id"`
	ConvocationID string `yaml:"convocation_id"`
	CourseCode    string `yaml:"course_code"`
	Course        string `yaml:"course"`
	Teacher       string `yaml:"teacher"`
	Room          string `yaml:"room"`
	Day           string `yaml:"day"`
	Start         string `yaml:"start"`
	End           string `yaml:"end"`
	Duration      int    `yaml:"duration_minutes"`
	Status        string `yaml:"status"`
	Color         string `yaml:"color"`
}

var roomKinds = map[string]models.RoomKind{
	"theory":      models.RoomKindTheory,
	"teoria":      models.RoomKindTheory,
	"lab":         models.RoomKindLab,
	"laboratorio": models.RoomKindLab,
	"workshop":    models.RoomKindWorkshop,
	"taller":      models.RoomKindWorkshop,
	"seminar":     models.RoomKindSeminar,
	"seminario":   models.RoomKindSeminar,
}

var entryStatuses = map[string]models.EntryStatus{
	"planned":     models.EntryStatusPlanned,
	"planificada": models.EntryStatusPlanned,
	"open":        models.EntryStatusOpen,
	"abierta":     models.EntryStatusOpen,
	"in_progress": models.EntryStatusInProgress,
	"en_curso":    models.EntryStatusInProgress,
	"completed":   models.EntryStatusCompleted,
	"completada":  models.EntryStatusCompleted,
	"cancelled":   models.EntryStatusCancelled,
	"cancelada":   models.EntryStatusCancelled,
}

// FileSource reads the feed from a YAML document on disk.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(_ context.Context) (Dataset, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read seed file %s: %w", s.Path, err)
	}
	return Parse(raw)
}

// Parse decodes a YAML seed document. Conflict flags are recomputed from the data.
func Parse(raw []byte) (Dataset, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Dataset{}, fmt.Errorf("decode seed yaml: %w", err)
	}

	rooms := make([]models.Room, 0, len(doc.Rooms))
	roomIDs := make(map[string]struct{}, len(doc.Rooms))
	for i, rec := range doc.Rooms {
		if rec.ID == "" {
			return Dataset{}, fmt.Errorf("room #%d: missing id", i+1)
		}
		if _, dup := roomIDs[rec.ID]; dup {
			return Dataset{}, fmt.Errorf("room %s: duplicate id", rec.ID)
		}
		roomIDs[rec.ID] = struct{}{}
		site := strings.TrimSpace(rec.Site)
		if site == "" {
			return Dataset{}, fmt.Errorf("room %s: missing site", rec.ID)
		}
		kind, ok := roomKinds[strings.ToLower(rec.Kind)]
		if !ok {
			kind = models.RoomKindTheory
		}
		rooms = append(rooms, models.Room{
			ID:        rec.ID,
			Name:      rec.Name,
			Code:      rec.Code,
			SiteID:    site,
			Capacity:  rec.Capacity,
			Kind:      kind,
			Equipment: rec.Equipment,
		})
	}

	entries := make([]models.ScheduleEntry, 0, len(doc.Entries))
	entryIDs := make(map[string]struct{}, len(doc.Entries))
	for i, rec := range doc.Entries {
		entry, err := rec.toModel()
		if err != nil {
			return Dataset{}, fmt.Errorf("entry #%d: %w", i+1, err)
		}
		if _, dup := entryIDs[entry.ID]; dup {
			return Dataset{}, fmt.Errorf("entry %s: duplicate id", entry.ID)
		}
		entryIDs[entry.ID] = struct{}{}
		entries = append(entries, entry)
	}

	return Dataset{Rooms: rooms, Entries: planner.FlagConflicts(entries)}, nil
}

func (rec entryRecord) toModel() (models.ScheduleEntry, error) {
	if rec.ID == "" {
		return models.ScheduleEntry{}, fmt.Errorf("missing id")
	}
	day, err := models.ParseWeekday(rec.Day)
	if err != nil {
		return models.ScheduleEntry{}, fmt.Errorf("entry %s: %w", rec.ID, err)
	}
	start, err := models.ParseClock(rec.Start)
	if err != nil {
		return models.ScheduleEntry{}, fmt.Errorf("entry %s start: %w", rec.ID, err)
	}
	duration := rec.Duration
	if duration == 0 && rec.End != "" {
		end, err := models.ParseClock(rec.End)
		if err != nil {
			return models.ScheduleEntry{}, fmt.Errorf("entry %s end: %w", rec.ID, err)
		}
		duration = end.Minutes() - start.Minutes()
	}
	if duration <= 0 {
		return models.ScheduleEntry{}, fmt.Errorf("entry %s: duration must be positive", rec.ID)
	}
	status, ok := entryStatuses[strings.ToLower(rec.Status)]
	if !ok {
		status = models.EntryStatusPlanned
	}
	return models.ScheduleEntry{
		ID:              rec.ID,
		ConvocationID:   rec.ConvocationID,
		CourseCode:      rec.CourseCode,
		CourseLabel:     rec.Course,
		TeacherLabel:    rec.Teacher,
		RoomID:          rec.Room,
		Day:             day,
		StartTime:       start,
		DurationMinutes: duration,
		Status:          status,
		ColorTag:        rec.Color,
	}, nil
}
