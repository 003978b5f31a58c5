package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionScheduleRelocate = "SCHEDULE_RELOCATE"
)

// AuditResourceScheduleEntry names the resource column for schedule entry audits.
const AuditResourceScheduleEntry = "schedule_entry"

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
