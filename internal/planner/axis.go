package planner

import (
	"fmt"
	"math"

	"github.com/cep-formacion/planner-api/internal/models"
)

const (
	// blockInset is the gap kept between a block and its column edges.
	blockInset = 4
	// blockGutter is subtracted from the column width to size a block.
	blockGutter = 12
)

// AxisConfig describes the vertical time axis and the room columns of the grid.
type AxisConfig struct {
	DayStart      models.Clock
	DayEnd        models.Clock
	PixelsPerHour float64
	SnapMinutes   int
	ColumnWidth   float64
	GutterWidth   float64
}

// DefaultAxisConfig reproduces the 08:00 to 22:00 grid at 80 px per hour.
func DefaultAxisConfig() AxisConfig {
	return AxisConfig{
		DayStart:      models.NewClock(8, 0),
		DayEnd:        models.NewClock(22, 0),
		PixelsPerHour: 80,
		SnapMinutes:   60,
		ColumnWidth:   200,
		GutterWidth:   64,
	}
}

// Axis converts between times of day and grid coordinates. It holds no mutable state.
type Axis struct {
	cfg AxisConfig
}

// NewAxis validates the configuration and builds an Axis.
func NewAxis(cfg AxisConfig) (*Axis, error) {
	if cfg.DayEnd <= cfg.DayStart {
		return nil, fmt.Errorf("day end %s must be after day start %s", cfg.DayEnd, cfg.DayStart)
	}
	if cfg.PixelsPerHour <= 0 {
		return nil, fmt.Errorf("pixels per hour must be positive, got %v", cfg.PixelsPerHour)
	}
	if cfg.SnapMinutes <= 0 {
		cfg.SnapMinutes = 60
	}
	if cfg.ColumnWidth <= 0 {
		cfg.ColumnWidth = 200
	}
	if cfg.GutterWidth < 0 {
		cfg.GutterWidth = 0
	}
	return &Axis{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (a *Axis) Config() AxisConfig { return a.cfg }

// DayStart returns the first minute of the grid.
func (a *Axis) DayStart() models.Clock { return a.cfg.DayStart }

// DayEnd returns the exclusive end of the grid.
func (a *Axis) DayEnd() models.Clock { return a.cfg.DayEnd }

// PositionOf maps a time of day to its vertical offset. Times outside the day map off-grid.
func (a *Axis) PositionOf(t models.Clock) float64 {
	hours := float64(t.Minutes()-a.cfg.DayStart.Minutes()) / 60
	return hours * a.cfg.PixelsPerHour
}

// SizeOf maps a duration in minutes to a vertical length.
func (a *Axis) SizeOf(durationMinutes int) float64 {
	return float64(durationMinutes) / 60 * a.cfg.PixelsPerHour
}

// Contains reports whether [start, start+duration) fits inside the configured day.
func (a *Axis) Contains(start models.Clock, durationMinutes int) bool {
	return start >= a.cfg.DayStart && start.Add(durationMinutes) <= a.cfg.DayEnd
}

// TimeAt maps a vertical offset back to a time of day, floored to the snap interval.
// The boolean is false when the offset falls outside the grid.
func (a *Axis) TimeAt(offset float64) (models.Clock, bool) {
	minutes := offset / a.cfg.PixelsPerHour * 60
	snap := float64(a.cfg.SnapMinutes)
	snapped := int(math.Floor(minutes/snap) * snap)
	t := a.cfg.DayStart.Add(snapped)
	return t, offset >= 0 && t < a.cfg.DayEnd
}

// HourLabels returns one HH:MM label per grid row.
func (a *Axis) HourLabels() []string {
	labels := make([]string, 0, (a.cfg.DayEnd-a.cfg.DayStart)/60+1)
	for t := a.cfg.DayStart; t < a.cfg.DayEnd; t = t.Add(60) {
		labels = append(labels, t.String())
	}
	return labels
}

// Height is the total vertical size of the grid.
func (a *Axis) Height() float64 {
	return a.SizeOf(a.cfg.DayEnd.Minutes() - a.cfg.DayStart.Minutes())
}

// ColumnLeft is the horizontal offset of the block drawn in the given room column.
func (a *Axis) ColumnLeft(index int) float64 {
	return a.cfg.GutterWidth + float64(index)*a.cfg.ColumnWidth + blockInset
}

// BlockWidth is the horizontal size of a block inside a room column.
func (a *Axis) BlockWidth() float64 {
	return a.cfg.ColumnWidth - blockGutter
}

// Place computes the geometry of an entry drawn in the given room column.
func (a *Axis) Place(entry models.ScheduleEntry, column int) models.PositionedBlock {
	return models.PositionedBlock{
		Entry:  entry,
		Top:    a.PositionOf(entry.StartTime),
		Height: a.SizeOf(entry.DurationMinutes) - blockInset,
		Left:   a.ColumnLeft(column),
		Width:  a.BlockWidth(),
	}
}
