package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// RoomKind classifies what a room is equipped for.
type RoomKind string

const (
	RoomKindTheory   RoomKind = "THEORY"
	RoomKindLab      RoomKind = "LAB"
	RoomKindWorkshop RoomKind = "WORKSHOP"
	RoomKindSeminar  RoomKind = "SEMINAR"
)

// Room is read-only reference data owned by the room directory.
type Room struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Code      string         `db:"code" json:"code"`
	SiteID    string         `db:"site_id" json:"site_id"`
	Capacity  int            `db:"capacity" json:"capacity"`
	Kind      RoomKind       `db:"kind" json:"kind"`
	Equipment pq.StringArray `db:"equipment" json:"equipment"`
}

// EntryStatus mirrors the lifecycle of the course convocation a session belongs to.
type EntryStatus string

const (
	EntryStatusPlanned    EntryStatus = "PLANNED"
	EntryStatusOpen       EntryStatus = "OPEN"
	EntryStatusInProgress EntryStatus = "IN_PROGRESS"
	EntryStatusCompleted  EntryStatus = "COMPLETED"
	EntryStatusCancelled  EntryStatus = "CANCELLED"
)

// ScheduleEntry is one weekly occupation of a room by a course session.
type ScheduleEntry struct {
	ID              string      `db:"id" json:"id"`
	ConvocationID   string      `db:"convocation_id" json:"convocation_id,omitempty"`
	CourseCode      string      `db:"course_code" json:"course_code,omitempty"`
	CourseLabel     string      `db:"course_label" json:"course_label"`
	TeacherLabel    string      `db:"teacher_label" json:"teacher_label"`
	RoomID          string      `db:"room_id" json:"room_id"`
	Day             Weekday     `db:"day" json:"day"`
	StartTime       Clock       `db:"start_time" json:"start_time"`
	DurationMinutes int         `db:"duration_minutes" json:"duration_minutes"`
	Status          EntryStatus `db:"status" json:"status,omitempty"`
	ColorTag        string      `db:"color_tag" json:"color_tag,omitempty"`
	HasConflict     bool        `db:"has_conflict" json:"has_conflict"`
	Version         int         `db:"version" json:"version"`
}

// EndTime derives the end of the session from its start and duration.
func (e ScheduleEntry) EndTime() Clock {
	return e.StartTime.Add(e.DurationMinutes)
}

// MarshalJSON adds the derived end_time to the wire representation.
func (e ScheduleEntry) MarshalJSON() ([]byte, error) {
	type entryAlias ScheduleEntry
	return json.Marshal(struct {
		entryAlias
		EndTime Clock `json:"end_time"`
	}{entryAlias: entryAlias(e), EndTime: e.EndTime()})
}

// ScheduleEntryPatch is a partial update applied by the schedule store.
type ScheduleEntryPatch struct {
	RoomID          *string
	Day             *Weekday
	StartTime       *Clock
	DurationMinutes *int
	HasConflict     *bool
	ColorTag        *string
	// ExpectedVersion rejects the patch when the stored entry moved on.
	ExpectedVersion *int
}

// EntryFilter narrows schedule listings.
type EntryFilter struct {
	RoomIDs []string
	Day     *Weekday
}

// Placement pins a session to a room, day and start time.
type Placement struct {
	RoomID    string  `json:"room_id"`
	Day       Weekday `json:"day"`
	StartTime Clock   `json:"start_time"`
}

// PlacementOf returns the current placement of an entry.
func PlacementOf(e ScheduleEntry) Placement {
	return Placement{RoomID: e.RoomID, Day: e.Day, StartTime: e.StartTime}
}

// PlacementChange is the outcome of a committed relocation handed to the durable store.
type PlacementChange struct {
	EntryID         string    `json:"entry_id"`
	AttemptID       string    `json:"attempt_id"`
	Previous        Placement `json:"previous"`
	Current         Placement `json:"current"`
	DurationMinutes int       `json:"duration_minutes"`
	Version         int       `json:"version"`
	CommittedAt     time.Time `json:"committed_at"`
}

// DayColumn is one operating day inside a display window.
type DayColumn struct {
	Day  Weekday   `json:"day"`
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// DisplayWindow is the Monday to Saturday span selected by a week offset.
type DisplayWindow struct {
	WeekOffset int         `json:"week_offset"`
	Start      time.Time   `json:"start"`
	End        time.Time   `json:"end"`
	Label      string      `json:"label"`
	Days       []DayColumn `json:"days"`
}

// RoomOccupancy summarises how many sessions a room hosts in the week.
type RoomOccupancy struct {
	RoomID   string `json:"room_id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Capacity int    `json:"capacity"`
	Sessions int    `json:"sessions"`
}

// PlannerStats feeds the planner sidebar.
type PlannerStats struct {
	Site          string          `json:"site"`
	TotalSessions int             `json:"total_sessions"`
	Conflicts     int             `json:"conflicts"`
	Rooms         int             `json:"rooms"`
	PerRoom       []RoomOccupancy `json:"per_room"`
}

// RoomColumn positions a room on the horizontal axis of the grid.
type RoomColumn struct {
	Room     Room    `json:"room"`
	Index    int     `json:"index"`
	Left     float64 `json:"left"`
	Sessions int     `json:"sessions"`
}

// PositionedBlock is a schedule entry with its grid geometry.
type PositionedBlock struct {
	Entry  ScheduleEntry `json:"entry"`
	Top    float64       `json:"top"`
	Height float64       `json:"height"`
	Left   float64       `json:"left"`
	Width  float64       `json:"width"`
}

// WeekView is everything the grid needs to draw one site for one week.
type WeekView struct {
	Site       string            `json:"site"`
	Window     DisplayWindow     `json:"window"`
	Day        *Weekday          `json:"day,omitempty"`
	HourLabels []string          `json:"hour_labels"`
	GridHeight float64           `json:"grid_height"`
	Rooms      []RoomColumn      `json:"rooms"`
	Blocks     []PositionedBlock `json:"blocks"`
	Stats      PlannerStats      `json:"stats"`
}

// ConflictCheck is the outcome of a standalone overlap query.
type ConflictCheck struct {
	HasOverlap bool   `json:"has_overlap"`
	InRange    bool   `json:"in_range"`
	Reason     string `json:"reason,omitempty"`
}
