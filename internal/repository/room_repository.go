package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
)

// RoomRepo provides persistence for hotel rooms.  Rooms are created and
// edited by staff.  Deletion is deliberately unsupported: bookings keep
// a foreign key into this table and historical reservations must stay
// resolvable.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// that span multiple repositories.
func (r *RoomRepo) DB() *sql.DB { return r.db }

// Create inserts a room and populates the generated ID on the provided
// model.  A duplicate room number returns ErrConflict.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const q = `INSERT INTO rooms (room_number, room_type, price_cents, capacity, status) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.RoomNumber, room.RoomType, room.PriceCents, room.Capacity, room.Status)
	if err != nil {
		// MySQL duplicate key on the unique room_number index
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// GetByID returns a single room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT id, room_number, room_type, price_cents, capacity, status, created_at, updated_at
			   FROM rooms WHERE id = ?`
	var room model.Room
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&room.ID, &room.RoomNumber, &room.RoomType, &room.PriceCents,
		&room.Capacity, &room.Status, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// List returns all rooms ordered by room number.  The optional
// roomType filter narrows the result to a single type when non-empty.
func (r *RoomRepo) List(ctx context.Context, roomType string) ([]model.Room, error) {
	q := `SELECT id, room_number, room_type, price_cents, capacity, status, created_at, updated_at
		  FROM rooms`
	args := []interface{}{}
	if roomType != "" {
		q += ` WHERE room_type = ?`
		args = append(args, roomType)
	}
	q += ` ORDER BY room_number`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(
			&room.ID, &room.RoomNumber, &room.RoomType, &room.PriceCents,
			&room.Capacity, &room.Status, &room.CreatedAt, &room.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}

// UpdateStatus sets the informational operational status of a room.
// It returns ErrRoomNotFound when the room does not exist.
func (r *RoomRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE rooms SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing room from a no-op write of the same status.
		var exists uint64
		if scanErr := r.db.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = ?`, id).Scan(&exists); scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return ErrRoomNotFound
			}
			return scanErr
		}
	}
	return nil
}
