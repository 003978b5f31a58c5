package planner

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cep-formacion/planner-api/internal/models"
)

// Relocation errors. Invalid drops are not errors; they come back as a cancelled DropResult.
var (
	ErrRelocationInProgress = errors.New("another session is already being moved")
	ErrNoActiveRelocation   = errors.New("no session is being moved")
	ErrStaleEntity          = errors.New("moving session changed or was removed")
	ErrTransitionRejected   = errors.New("relocation transition not allowed")
)

// Human readable reasons surfaced to the operator.
const (
	ReasonOccupied    = "room already occupied in that slot"
	ReasonOutOfRange  = "start time outside the planner day"
	ReasonUnknownRoom = "room not found"
	ReasonOtherSite   = "room belongs to another site"
	ReasonNoTarget    = "released outside a drop target"
	ReasonCancelled   = "relocation cancelled"
	ReasonStale       = "session changed or was removed, reload the planner"
)

// EventKind is an input to the relocation state machine.
type EventKind string

const (
	EvPickUp      EventKind = "pick_up"
	EvHover       EventKind = "hover"
	EvLeave       EventKind = "leave"
	EvDropValid   EventKind = "drop_valid"
	EvDropInvalid EventKind = "drop_invalid"
	EvRelease     EventKind = "release"
	EvCancel      EventKind = "cancel"
	EvAbort       EventKind = "abort"
	EvSettle      EventKind = "settle"
)

// Transition is a single allowed edge in the relocation state machine.
type Transition struct {
	From  models.RelocationState
	To    models.RelocationState
	Event EventKind
}

var transitionsTable = []Transition{
	{From: models.RelocationIdle, To: models.RelocationDragging, Event: EvPickUp},

	// Pointer tracking
	{From: models.RelocationDragging, To: models.RelocationHovering, Event: EvHover},
	{From: models.RelocationHovering, To: models.RelocationHovering, Event: EvHover},
	{From: models.RelocationDragging, To: models.RelocationDragging, Event: EvLeave},
	{From: models.RelocationHovering, To: models.RelocationDragging, Event: EvLeave},

	// Release
	{From: models.RelocationHovering, To: models.RelocationCommitted, Event: EvDropValid},
	{From: models.RelocationHovering, To: models.RelocationCancelled, Event: EvDropInvalid},
	{From: models.RelocationDragging, To: models.RelocationCancelled, Event: EvRelease},

	// Explicit abort by the operator
	{From: models.RelocationDragging, To: models.RelocationCancelled, Event: EvCancel},
	{From: models.RelocationHovering, To: models.RelocationCancelled, Event: EvCancel},

	// Stale entity ends the interaction without a result
	{From: models.RelocationDragging, To: models.RelocationIdle, Event: EvAbort},
	{From: models.RelocationHovering, To: models.RelocationIdle, Event: EvAbort},

	{From: models.RelocationCommitted, To: models.RelocationIdle, Event: EvSettle},
	{From: models.RelocationCancelled, To: models.RelocationIdle, Event: EvSettle},
}

// TransitionFor returns the allowed transition for a given state and event.
func TransitionFor(from models.RelocationState, ev EventKind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}

// Store is the slice of the schedule store the relocation flow reads and writes.
type Store interface {
	EntryReader
	FindByID(id string) (models.ScheduleEntry, error)
	Replace(id string, patch models.ScheduleEntryPatch) (*models.ScheduleEntry, error)
}

// RoomLookup resolves candidate rooms.
type RoomLookup interface {
	FindRoom(id string) (models.Room, bool)
}

// Cell is a drop target on the grid.
type Cell struct {
	RoomID    string
	StartTime models.Clock
}

// Relocator drives a single drag interaction at a time. The weekday of the moving session
// is pinned at pick up; only room and start time can change.
type Relocator struct {
	mu       sync.Mutex
	store    Store
	rooms    RoomLookup
	axis     *Axis
	detector *Detector
	now      func() time.Time

	state   models.RelocationState
	attempt *models.RelocationAttempt
	siteID  string
}

// NewRelocator wires the state machine. rooms may be nil to skip room checks.
func NewRelocator(store Store, rooms RoomLookup, axis *Axis) *Relocator {
	return &Relocator{
		store:    store,
		rooms:    rooms,
		axis:     axis,
		detector: NewDetector(store),
		now:      time.Now,
		state:    models.RelocationIdle,
	}
}

// State returns the current state.
func (r *Relocator) State() models.RelocationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Current returns a copy of the active attempt, if any.
func (r *Relocator) Current() (models.RelocationAttempt, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attempt == nil {
		return models.RelocationAttempt{State: r.state}, false
	}
	return r.snapshot(), true
}

// PickUp starts dragging the given entry.
func (r *Relocator) PickUp(entryID string) (models.RelocationAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != models.RelocationIdle {
		return models.RelocationAttempt{}, ErrRelocationInProgress
	}

	entry, err := r.store.FindByID(entryID)
	if err != nil {
		return models.RelocationAttempt{}, fmt.Errorf("pick up entry %s: %w", entryID, err)
	}

	r.siteID = ""
	if r.rooms != nil {
		if room, ok := r.rooms.FindRoom(entry.RoomID); ok {
			r.siteID = room.SiteID
		}
	}

	r.attempt = &models.RelocationAttempt{
		ID:              uuid.NewString(),
		EntryID:         entry.ID,
		Original:        models.PlacementOf(entry),
		DurationMinutes: entry.DurationMinutes,
		Version:         entry.Version,
		StartedAt:       r.now().UTC(),
	}
	if err := r.fire(EvPickUp); err != nil {
		r.attempt = nil
		return models.RelocationAttempt{}, err
	}
	return r.snapshot(), nil
}

// Hover evaluates a candidate cell and records it as the current target.
func (r *Relocator) Hover(roomID string, start models.Clock) (models.HoverFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active() {
		return models.HoverFeedback{}, ErrNoActiveRelocation
	}
	feedback := r.evaluate(roomID, start)
	r.attempt.Candidate = &feedback
	if err := r.fire(EvHover); err != nil {
		return models.HoverFeedback{}, err
	}
	return feedback, nil
}

// Leave clears the hovered cell when the pointer leaves it.
func (r *Relocator) Leave() (models.RelocationAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active() {
		return models.RelocationAttempt{}, ErrNoActiveRelocation
	}
	r.attempt.Candidate = nil
	if err := r.fire(EvLeave); err != nil {
		return models.RelocationAttempt{}, err
	}
	return r.snapshot(), nil
}

// Drop releases the session. When cell is nil the last hovered candidate is used.
// The candidate is validated again before anything is written.
func (r *Relocator) Drop(cell *Cell) (models.DropResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active() {
		return models.DropResult{}, ErrNoActiveRelocation
	}

	if cell != nil {
		feedback := r.evaluate(cell.RoomID, cell.StartTime)
		r.attempt.Candidate = &feedback
		if err := r.fire(EvHover); err != nil {
			return models.DropResult{}, err
		}
	}

	if r.attempt.Candidate == nil {
		return r.finish(EvRelease, ReasonNoTarget, nil)
	}

	current, err := r.store.FindByID(r.attempt.EntryID)
	if err != nil || current.Version != r.attempt.Version {
		return r.abortStale(err)
	}

	feedback := r.evaluate(r.attempt.Candidate.CandidateRoomID, r.attempt.Candidate.CandidateStartTime)
	r.attempt.Candidate = &feedback
	if !feedback.IsValid {
		return r.finish(EvDropInvalid, feedback.Reason, nil)
	}

	roomID := feedback.CandidateRoomID
	start := feedback.CandidateStartTime
	noConflict := false
	version := r.attempt.Version
	updated, err := r.store.Replace(r.attempt.EntryID, models.ScheduleEntryPatch{
		RoomID:          &roomID,
		StartTime:       &start,
		HasConflict:     &noConflict,
		ExpectedVersion: &version,
	})
	if err != nil {
		if errors.Is(err, models.ErrEntryNotFound) || errors.Is(err, models.ErrVersionMismatch) {
			return r.abortStale(err)
		}
		r.attempt = nil
		r.state = models.RelocationIdle
		return models.DropResult{}, fmt.Errorf("commit relocation: %w", err)
	}

	return r.finish(EvDropValid, "", updated)
}

// Cancel abandons the drag without touching the schedule.
func (r *Relocator) Cancel() (models.DropResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active() {
		return models.DropResult{}, ErrNoActiveRelocation
	}
	return r.finish(EvCancel, ReasonCancelled, nil)
}

// Reset cancels any active drag and runs load while holding the relocator, so no pick up
// can observe the schedule between the cancel and the reload. It reports whether a drag
// was cancelled.
func (r *Relocator) Reset(load func()) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cancelled := false
	if r.active() {
		if _, err := r.finish(EvCancel, ReasonCancelled, nil); err != nil {
			return false, err
		}
		cancelled = true
	}
	if load != nil {
		load()
	}
	return cancelled, nil
}

func (r *Relocator) active() bool {
	return r.attempt != nil && (r.state == models.RelocationDragging || r.state == models.RelocationHovering)
}

func (r *Relocator) evaluate(roomID string, start models.Clock) models.HoverFeedback {
	feedback := models.HoverFeedback{CandidateRoomID: roomID, CandidateStartTime: start}
	duration := r.attempt.DurationMinutes

	if r.axis != nil && !r.axis.Contains(start, duration) {
		feedback.Reason = ReasonOutOfRange
		return feedback
	}
	if r.rooms != nil {
		room, ok := r.rooms.FindRoom(roomID)
		if !ok {
			feedback.Reason = ReasonUnknownRoom
			return feedback
		}
		if r.siteID != "" && room.SiteID != r.siteID {
			feedback.Reason = ReasonOtherSite
			return feedback
		}
	}
	if r.detector.HasOverlap(roomID, r.attempt.Original.Day, start, duration, r.attempt.EntryID) {
		feedback.Reason = ReasonOccupied
		return feedback
	}
	feedback.IsValid = true
	return feedback
}

func (r *Relocator) finish(ev EventKind, reason string, entry *models.ScheduleEntry) (models.DropResult, error) {
	if err := r.fire(ev); err != nil {
		return models.DropResult{}, err
	}
	r.attempt.Reason = reason
	result := models.DropResult{
		Committed: r.state == models.RelocationCommitted,
		State:     r.state,
		Reason:    reason,
		Attempt:   r.snapshot(),
		Entry:     entry,
	}
	if err := r.fire(EvSettle); err != nil {
		return models.DropResult{}, err
	}
	r.attempt = nil
	return result, nil
}

func (r *Relocator) abortStale(cause error) (models.DropResult, error) {
	entryID := r.attempt.EntryID
	if err := r.fire(EvAbort); err != nil {
		return models.DropResult{}, err
	}
	r.attempt = nil
	if cause != nil {
		return models.DropResult{}, fmt.Errorf("%w: entry %s: %v", ErrStaleEntity, entryID, cause)
	}
	return models.DropResult{}, fmt.Errorf("%w: entry %s", ErrStaleEntity, entryID)
}

func (r *Relocator) fire(ev EventKind) error {
	tr, ok := TransitionFor(r.state, ev)
	if !ok {
		return fmt.Errorf("%w: %s from %s", ErrTransitionRejected, ev, r.state)
	}
	r.state = tr.To
	if r.attempt != nil {
		r.attempt.State = tr.To
	}
	return nil
}

func (r *Relocator) snapshot() models.RelocationAttempt {
	attempt := *r.attempt
	if r.attempt.Candidate != nil {
		candidate := *r.attempt.Candidate
		attempt.Candidate = &candidate
	}
	return attempt
}
