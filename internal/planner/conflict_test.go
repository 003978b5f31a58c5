package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cep-formacion/planner-api/internal/models"
)

type sliceReader []models.ScheduleEntry

func (s sliceReader) FindByRoomAndDay(roomID string, day models.Weekday) []models.ScheduleEntry {
	var out []models.ScheduleEntry
	for _, e := range s {
		if e.RoomID == roomID && e.Day == day {
			out = append(out, e)
		}
	}
	return out
}

func clock(raw string) models.Clock { return models.MustParseClock(raw) }

func TestOverlapsHalfOpen(t *testing.T) {
	cases := []struct {
		name   string
		aStart string
		aDur   int
		bStart string
		bDur   int
		want   bool
	}{
		{name: "contained", aStart: "10:00", aDur: 30, bStart: "09:00", bDur: 120, want: true},
		{name: "partial tail", aStart: "10:00", aDur: 60, bStart: "09:00", bDur: 90, want: true},
		{name: "partial head", aStart: "08:30", aDur: 60, bStart: "09:00", bDur: 90, want: true},
		{name: "identical", aStart: "09:00", aDur: 90, bStart: "09:00", bDur: 90, want: true},
		{name: "touching after", aStart: "10:30", aDur: 60, bStart: "09:00", bDur: 90, want: false},
		{name: "touching before", aStart: "08:00", aDur: 60, bStart: "09:00", bDur: 90, want: false},
		{name: "disjoint", aStart: "12:00", aDur: 60, bStart: "09:00", bDur: 90, want: false},
		{name: "zero candidate", aStart: "09:30", aDur: 0, bStart: "09:00", bDur: 90, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(clock(tc.aStart), tc.aDur, clock(tc.bStart), tc.bDur))
		})
	}
}

func TestOverlapsMatchesIntervalDefinition(t *testing.T) {
	for aStart := 480; aStart < 600; aStart += 15 {
		for aDur := 15; aDur <= 90; aDur += 15 {
			bStart, bDur := 510, 45
			want := aStart < bStart+bDur && bStart < aStart+aDur
			got := Overlaps(models.Clock(aStart), aDur, models.Clock(bStart), bDur)
			assert.Equal(t, want, got, "a=[%d,%d) b=[%d,%d)", aStart, aStart+aDur, bStart, bStart+bDur)
		}
	}
}

func TestDetectorHasOverlap(t *testing.T) {
	reader := sliceReader{
		{ID: "e1", RoomID: "r1", Day: models.Tuesday, StartTime: clock("09:00"), DurationMinutes: 90},
		{ID: "e2", RoomID: "r1", Day: models.Wednesday, StartTime: clock("10:00"), DurationMinutes: 60},
		{ID: "e3", RoomID: "r2", Day: models.Tuesday, StartTime: clock("10:00"), DurationMinutes: 60},
	}
	d := NewDetector(reader)

	assert.True(t, d.HasOverlap("r1", models.Tuesday, clock("10:00"), 60, "e3"))
	assert.False(t, d.HasOverlap("r1", models.Tuesday, clock("10:30"), 60, "e3"))
	assert.False(t, d.HasOverlap("r1", models.Thursday, clock("10:00"), 60, ""))
	assert.False(t, d.HasOverlap("r3", models.Tuesday, clock("10:00"), 60, ""))
}

func TestDetectorIgnoresExcludedEntry(t *testing.T) {
	reader := sliceReader{
		{ID: "e1", RoomID: "r1", Day: models.Monday, StartTime: clock("09:00"), DurationMinutes: 120},
	}
	d := NewDetector(reader)

	assert.False(t, d.HasOverlap("r1", models.Monday, clock("09:30"), 60, "e1"))
	assert.True(t, d.HasOverlap("r1", models.Monday, clock("09:30"), 60, "other"))
}

func TestFlagConflicts(t *testing.T) {
	entries := []models.ScheduleEntry{
		{ID: "a", RoomID: "r1", Day: models.Monday, StartTime: clock("09:00"), DurationMinutes: 120},
		{ID: "b", RoomID: "r1", Day: models.Monday, StartTime: clock("10:00"), DurationMinutes: 60},
		{ID: "c", RoomID: "r1", Day: models.Monday, StartTime: clock("11:00"), DurationMinutes: 60},
		{ID: "d", RoomID: "r2", Day: models.Monday, StartTime: clock("10:00"), DurationMinutes: 60, HasConflict: true},
	}

	flagged := FlagConflicts(entries)

	assert.True(t, flagged[0].HasConflict)
	assert.True(t, flagged[1].HasConflict)
	assert.False(t, flagged[2].HasConflict)
	assert.False(t, flagged[3].HasConflict)
	assert.True(t, entries[3].HasConflict, "input must not be modified")
}
