package model

import "time"

// Entity types recorded in the activity log.
const (
	ActivityEntityBooking  = "BOOKING"
	ActivityEntityRoom     = "ROOM"
	ActivityEntityPayment  = "PAYMENT"
	ActivityEntityCustomer = "CUSTOMER"
)

// ActivityEntry is one append-only row of the `activity_log` table.
// Entries are written fire-and-forget after mutating operations; a
// failed write is logged and never fails the primary operation.
//
// Fields:
//  ID         – primary key identifier.
//  EntityType – kind of entity acted upon (see ActivityEntity*).
//  EntityID   – identifier of the entity.
//  Action     – short action name, e.g. "BOOKING_CHECKED_IN".
//  UserID     – acting user; zero for unauthenticated public actions.
//  Details    – free-form human-readable context.
//  IPAddress  – client address when known.
//  CreatedAt  – timestamp of the entry.
type ActivityEntry struct {
	ID         uint64    // activity_log.id
	EntityType string    // activity_log.entity_type
	EntityID   uint64    // activity_log.entity_id
	Action     string    // activity_log.action
	UserID     uint64    // activity_log.user_id
	Details    string    // activity_log.details
	IPAddress  string    // activity_log.ip_address
	CreatedAt  time.Time // activity_log.created_at
}
