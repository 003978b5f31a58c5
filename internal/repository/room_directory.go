package repository

import (
	"sort"
	"sync"

	"github.com/cep-formacion/planner-api/internal/models"
)

// RoomDirectory holds read-only room reference data grouped by site.
type RoomDirectory struct {
	mu    sync.RWMutex
	rooms map[string]models.Room
	order []string
}

// NewRoomDirectory builds a directory from the inbound room feed.
func NewRoomDirectory(rooms []models.Room) *RoomDirectory {
	d := &RoomDirectory{}
	d.Load(rooms)
	return d
}

// Load replaces the directory content, keeping feed order.
func (d *RoomDirectory) Load(rooms []models.Room) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rooms = make(map[string]models.Room, len(rooms))
	d.order = make([]string, 0, len(rooms))
	for _, room := range rooms {
		if _, seen := d.rooms[room.ID]; !seen {
			d.order = append(d.order, room.ID)
		}
		d.rooms[room.ID] = room
	}
}

// FindRoom returns the room with the given id.
func (d *RoomDirectory) FindRoom(id string) (models.Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	room, ok := d.rooms[id]
	return room, ok
}

// BySite returns the rooms of a site in feed order.
func (d *RoomDirectory) BySite(siteID string) []models.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]models.Room, 0)
	for _, id := range d.order {
		if room := d.rooms[id]; room.SiteID == siteID {
			result = append(result, room)
		}
	}
	return result
}

// Sites lists the distinct site ids, sorted. Rooms without a site are not selectable
// and are left out.
func (d *RoomDirectory) Sites() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]struct{})
	sites := make([]string, 0)
	for _, room := range d.rooms {
		if room.SiteID == "" {
			continue
		}
		if _, ok := seen[room.SiteID]; ok {
			continue
		}
		seen[room.SiteID] = struct{}{}
		sites = append(sites, room.SiteID)
	}
	sort.Strings(sites)
	return sites
}

// All returns every room in feed order.
func (d *RoomDirectory) All() []models.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]models.Room, 0, len(d.order))
	for _, id := range d.order {
		result = append(result, d.rooms[id])
	}
	return result
}
