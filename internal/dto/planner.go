package dto

// WeekQuery selects the site, week and optional day of the planner grid.
type WeekQuery struct {
	Site   string `form:"site"`
	Offset int    `form:"offset" validate:"gte=-520,lte=520"`
	Day    string `form:"day"`
}

// ConflictCheckRequest asks whether an arbitrary placement overlaps the schedule.
type ConflictCheckRequest struct {
	RoomID          string `json:"room_id" validate:"required"`
	Day             string `json:"day" validate:"required"`
	StartTime       string `json:"start_time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0,lte=1440"`
	ExcludeEntryID  string `json:"exclude_entry_id"`
}

// StartRelocationRequest picks up a session.
type StartRelocationRequest struct {
	EntryID string `json:"entry_id" validate:"required"`
}

// HoverRequest moves the dragged session over a cell. The start can be given as a
// time of day or as a vertical pixel offset into the grid.
type HoverRequest struct {
	RoomID    string   `json:"room_id" validate:"required"`
	StartTime string   `json:"start_time" validate:"required_without=Offset"`
	Offset    *float64 `json:"offset" validate:"required_without=StartTime"`
}

// DropRequest releases the dragged session. An empty body drops on the last hovered cell.
type DropRequest struct {
	RoomID    string   `json:"room_id"`
	StartTime string   `json:"start_time"`
	Offset    *float64 `json:"offset"`
}

// ExportQuery selects the printable timetable format.
type ExportQuery struct {
	Site   string `form:"site"`
	Offset int    `form:"offset" validate:"gte=-520,lte=520"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ReloadSummary reports the outcome of a reference feed reload.
type ReloadSummary struct {
	Rooms     int    `json:"rooms"`
	Entries   int    `json:"entries"`
	Conflicts int    `json:"conflicts"`
	Source    string `json:"source"`
}
