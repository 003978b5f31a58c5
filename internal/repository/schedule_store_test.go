package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cep-formacion/planner-api/internal/models"
)

func sampleEntries() []models.ScheduleEntry {
	return []models.ScheduleEntry{
		{ID: "e1", RoomID: "r1", Day: models.Tuesday, StartTime: models.NewClock(9, 0), DurationMinutes: 90},
		{ID: "e2", RoomID: "r1", Day: models.Tuesday, StartTime: models.NewClock(12, 0), DurationMinutes: 60},
		{ID: "e3", RoomID: "r2", Day: models.Monday, StartTime: models.NewClock(10, 0), DurationMinutes: 60},
	}
}

func TestScheduleStoreFindByRoomAndDay(t *testing.T) {
	store := NewScheduleStore(sampleEntries())

	got := store.FindByRoomAndDay("r1", models.Tuesday)
	require.Len(t, got, 2)
	assert.Empty(t, store.FindByRoomAndDay("r1", models.Monday))
	assert.Empty(t, store.FindByRoomAndDay("unknown", models.Tuesday))
}

func TestScheduleStoreReturnsCopies(t *testing.T) {
	store := NewScheduleStore(sampleEntries())

	entry, err := store.FindByID("e1")
	require.NoError(t, err)
	entry.RoomID = "mutated"

	stored, err := store.FindByID("e1")
	require.NoError(t, err)
	assert.Equal(t, "r1", stored.RoomID)

	listed := store.FindByRoomAndDay("r1", models.Tuesday)
	listed[0].StartTime = 0
	assert.NotContains(t, store.FindByRoomAndDay("r1", models.Tuesday), listed[0])
}

func TestScheduleStoreReplace(t *testing.T) {
	store := NewScheduleStore(sampleEntries())

	room := "r2"
	start := models.NewClock(14, 0)
	updated, err := store.Replace("e1", models.ScheduleEntryPatch{RoomID: &room, StartTime: &start})
	require.NoError(t, err)
	assert.Equal(t, "r2", updated.RoomID)
	assert.Equal(t, 90, updated.DurationMinutes)
	assert.Equal(t, 1, updated.Version)

	visible, err := store.FindByID("e1")
	require.NoError(t, err)
	assert.Equal(t, *updated, visible)
	assert.Len(t, store.FindByRoomAndDay("r2", models.Tuesday), 1)
}

func TestScheduleStoreReplaceErrors(t *testing.T) {
	store := NewScheduleStore(sampleEntries())

	_, err := store.Replace("missing", models.ScheduleEntryPatch{})
	assert.True(t, errors.Is(err, models.ErrEntryNotFound))

	stale := 3
	_, err = store.Replace("e1", models.ScheduleEntryPatch{ExpectedVersion: &stale})
	assert.True(t, errors.Is(err, models.ErrVersionMismatch))

	zero := 0
	_, err = store.Replace("e1", models.ScheduleEntryPatch{DurationMinutes: &zero})
	assert.Error(t, err)

	entry, err := store.FindByID("e1")
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Version)
}

func TestScheduleStoreListAndRemove(t *testing.T) {
	store := NewScheduleStore(sampleEntries())

	all := store.Snapshot()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"e3", "e1", "e2"}, []string{all[0].ID, all[1].ID, all[2].ID})

	tuesday := models.Tuesday
	filtered := store.List(models.EntryFilter{RoomIDs: []string{"r1", "r2"}, Day: &tuesday})
	assert.Len(t, filtered, 2)

	assert.Empty(t, store.List(models.EntryFilter{RoomIDs: []string{}}))

	assert.True(t, store.Remove("e2"))
	assert.False(t, store.Remove("e2"))
	_, err := store.FindByID("e2")
	assert.ErrorIs(t, err, models.ErrEntryNotFound)
}

func TestRoomDirectory(t *testing.T) {
	dir := NewRoomDirectory([]models.Room{
		{ID: "r2", Name: "Aula 102", SiteID: "CEP Norte"},
		{ID: "r1", Name: "Aula 101", SiteID: "CEP Norte"},
		{ID: "r9", Name: "Aula 201", SiteID: "CEP Sur"},
	})

	assert.Equal(t, []string{"CEP Norte", "CEP Sur"}, dir.Sites())
	norte := dir.BySite("CEP Norte")
	require.Len(t, norte, 2)
	assert.Equal(t, "r2", norte[0].ID)

	room, ok := dir.FindRoom("r9")
	require.True(t, ok)
	assert.Equal(t, "CEP Sur", room.SiteID)
	_, ok = dir.FindRoom("nope")
	assert.False(t, ok)
	assert.Len(t, dir.All(), 3)
}
