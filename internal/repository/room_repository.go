package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cep-formacion/planner-api/internal/models"
)

// RoomRepository reads the room reference feed from Postgres.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns every room ordered by site and code.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, COALESCE(code, '') AS code, site_id, capacity, COALESCE(kind, 'THEORY') AS kind,
COALESCE(equipment, '{}') AS equipment
FROM rooms ORDER BY site_id ASC, code ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}
