package models

import "time"

// RelocationState is a node of the relocation state machine.
type RelocationState string

const (
	RelocationIdle      RelocationState = "IDLE"
	RelocationDragging  RelocationState = "DRAGGING"
	RelocationHovering  RelocationState = "HOVERING"
	RelocationCommitted RelocationState = "COMMITTED"
	RelocationCancelled RelocationState = "CANCELLED"
)

// HoverFeedback is the triple exposed to the rendering layer for the hovered cell.
type HoverFeedback struct {
	CandidateRoomID    string `json:"candidate_room_id"`
	CandidateStartTime Clock  `json:"candidate_start_time"`
	IsValid            bool   `json:"is_valid"`
	Reason             string `json:"reason,omitempty"`
}

// RelocationAttempt exists only while a session is being dragged.
type RelocationAttempt struct {
	ID              string          `json:"id"`
	EntryID         string          `json:"entry_id"`
	Original        Placement       `json:"original"`
	DurationMinutes int             `json:"duration_minutes"`
	Version         int             `json:"version"`
	Candidate       *HoverFeedback  `json:"candidate,omitempty"`
	State           RelocationState `json:"state"`
	Reason          string          `json:"reason,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
}

// DropResult reports how a drag ended. Invalid drops are results, not errors.
type DropResult struct {
	Committed bool              `json:"committed"`
	State     RelocationState   `json:"state"`
	Reason    string            `json:"reason,omitempty"`
	Attempt   RelocationAttempt `json:"attempt"`
	Entry     *ScheduleEntry    `json:"entry,omitempty"`
}
