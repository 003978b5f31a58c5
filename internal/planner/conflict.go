package planner

import "github.com/cep-formacion/planner-api/internal/models"

// EntryReader is the read side of the schedule store the detector depends on.
type EntryReader interface {
	FindByRoomAndDay(roomID string, day models.Weekday) []models.ScheduleEntry
}

// Overlaps applies the half-open interval test. Touching boundaries do not overlap and
// zero-length intervals never overlap anything.
func Overlaps(aStart models.Clock, aDuration int, bStart models.Clock, bDuration int) bool {
	if aDuration <= 0 || bDuration <= 0 {
		return false
	}
	return aStart < bStart.Add(bDuration) && bStart < aStart.Add(aDuration)
}

// Detector answers overlap queries against the current schedule.
type Detector struct {
	entries EntryReader
}

// NewDetector builds a detector over the given reader.
func NewDetector(entries EntryReader) *Detector {
	return &Detector{entries: entries}
}

// HasOverlap reports whether the candidate placement collides with any session in the
// same room and day other than excludeID. It does not say which session collides.
func (d *Detector) HasOverlap(roomID string, day models.Weekday, start models.Clock, durationMinutes int, excludeID string) bool {
	if durationMinutes <= 0 {
		return false
	}
	for _, entry := range d.entries.FindByRoomAndDay(roomID, day) {
		if entry.ID == excludeID {
			continue
		}
		if Overlaps(start, durationMinutes, entry.StartTime, entry.DurationMinutes) {
			return true
		}
	}
	return false
}

type roomDay struct {
	roomID string
	day    models.Weekday
}

// FlagConflicts returns a copy of entries with HasConflict recomputed pairwise per room and day.
func FlagConflicts(entries []models.ScheduleEntry) []models.ScheduleEntry {
	flagged := make([]models.ScheduleEntry, len(entries))
	copy(flagged, entries)

	groups := make(map[roomDay][]int)
	for i := range flagged {
		flagged[i].HasConflict = false
		key := roomDay{roomID: flagged[i].RoomID, day: flagged[i].Day}
		groups[key] = append(groups[key], i)
	}

	for _, idx := range groups {
		for i := 0; i < len(idx); i++ {
			for j := i + 1; j < len(idx); j++ {
				a, b := &flagged[idx[i]], &flagged[idx[j]]
				if Overlaps(a.StartTime, a.DurationMinutes, b.StartTime, b.DurationMinutes) {
					a.HasConflict = true
					b.HasConflict = true
				}
			}
		}
	}
	return flagged
}
