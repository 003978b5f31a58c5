package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cep-formacion/planner-api/internal/models"
)

func newTestAxis(t *testing.T) *Axis {
	t.Helper()
	axis, err := NewAxis(DefaultAxisConfig())
	require.NoError(t, err)
	return axis
}

func TestAxisPositionOf(t *testing.T) {
	axis := newTestAxis(t)

	assert.Equal(t, 0.0, axis.PositionOf(models.MustParseClock("08:00")))
	assert.Equal(t, 6.5*80, axis.PositionOf(models.MustParseClock("14:30")))
	assert.Equal(t, -80.0, axis.PositionOf(models.MustParseClock("07:00")))
}

func TestAxisLinearity(t *testing.T) {
	axis := newTestAxis(t)

	for _, d := range []int{15, 45, 60, 90, 240} {
		assert.InDelta(t, 2*axis.SizeOf(d), axis.SizeOf(2*d), 1e-9)
	}

	base := models.MustParseClock("09:10")
	for _, delta := range []int{1, 20, 75, 300} {
		got := axis.PositionOf(base.Add(delta)) - axis.PositionOf(base)
		assert.InDelta(t, float64(delta)/60*80, got, 1e-9)
	}

	assert.Less(t, axis.PositionOf(models.MustParseClock("10:00")), axis.PositionOf(models.MustParseClock("10:01")))
}

func TestAxisContains(t *testing.T) {
	axis := newTestAxis(t)

	assert.True(t, axis.Contains(models.MustParseClock("08:00"), 60))
	assert.True(t, axis.Contains(models.MustParseClock("21:00"), 60))
	assert.False(t, axis.Contains(models.MustParseClock("21:30"), 60))
	assert.False(t, axis.Contains(models.MustParseClock("07:30"), 60))
}

func TestAxisTimeAt(t *testing.T) {
	axis := newTestAxis(t)

	got, ok := axis.TimeAt(6.5 * 80)
	assert.True(t, ok)
	assert.Equal(t, "14:00", got.String())

	got, ok = axis.TimeAt(0)
	assert.True(t, ok)
	assert.Equal(t, "08:00", got.String())

	_, ok = axis.TimeAt(-1)
	assert.False(t, ok)

	_, ok = axis.TimeAt(axis.Height())
	assert.False(t, ok)
}

func TestAxisHourLabelsAndGeometry(t *testing.T) {
	axis := newTestAxis(t)

	labels := axis.HourLabels()
	require.Len(t, labels, 14)
	assert.Equal(t, "08:00", labels[0])
	assert.Equal(t, "21:00", labels[len(labels)-1])
	assert.Equal(t, 14.0*80, axis.Height())

	block := axis.Place(models.ScheduleEntry{StartTime: models.MustParseClock("09:00"), DurationMinutes: 90}, 2)
	assert.Equal(t, 80.0, block.Top)
	assert.Equal(t, 116.0, block.Height)
	assert.Equal(t, 64.0+400+4, block.Left)
	assert.Equal(t, 188.0, block.Width)
}

func TestNewAxisRejectsInvertedDay(t *testing.T) {
	cfg := DefaultAxisConfig()
	cfg.DayEnd = cfg.DayStart
	_, err := NewAxis(cfg)
	assert.Error(t, err)

	cfg = DefaultAxisConfig()
	cfg.PixelsPerHour = 0
	_, err = NewAxis(cfg)
	assert.Error(t, err)
}
