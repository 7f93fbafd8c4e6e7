package model

import "time"

// Room type enumeration values as stored in the `rooms.room_type`
// column.  Pricing and capacity vary per room, not per type, so the
// type is descriptive rather than authoritative.
const (
	RoomTypeSingle       = "SINGLE"
	RoomTypeDouble       = "DOUBLE"
	RoomTypeSuite        = "SUITE"
	RoomTypeDeluxe       = "DELUXE"
	RoomTypePresidential = "PRESIDENTIAL"
)

// Room operational statuses.  These are informational only: whether a
// room can be booked for a date range is decided by the overlap query
// over bookings, never by this flag.
const (
	RoomStatusAvailable   = "AVAILABLE"
	RoomStatusOccupied    = "OCCUPIED"
	RoomStatusMaintenance = "MAINTENANCE"
)

// Room represents a bookable hotel room as stored in the `rooms`
// table.  Rooms are created and edited by staff and are never deleted
// while bookings reference them.
//
// Fields:
//  ID         – primary key identifier.
//  RoomNumber – human-facing room number, unique per hotel.
//  RoomType   – one of the RoomType* constants.
//  PriceCents – nightly rate in the smallest currency unit.
//  Capacity   – maximum number of guests.
//  Status     – operational status (AVAILABLE, OCCUPIED, MAINTENANCE).
//  CreatedAt  – timestamp of creation.
//  UpdatedAt  – timestamp of last update.
type Room struct {
	ID         uint64    // rooms.id
	RoomNumber string    // rooms.room_number
	RoomType   string    // rooms.room_type
	PriceCents int64     // rooms.price_cents
	Capacity   uint32    // rooms.capacity
	Status     string    // rooms.status
	CreatedAt  time.Time // rooms.created_at
	UpdatedAt  time.Time // rooms.updated_at
}
