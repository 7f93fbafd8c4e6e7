package model

import "time"

// Booking lifecycle statuses stored in `bookings.booking_status`.
// CONFIRMED is the initial state; CHECKED_OUT and CANCELLED are
// terminal.  Transitions between them are owned by the booking
// package's state machine and are never written directly by handlers.
const (
	BookingStatusConfirmed  = "CONFIRMED"
	BookingStatusCheckedIn  = "CHECKED_IN"
	BookingStatusCheckedOut = "CHECKED_OUT"
	BookingStatusCancelled  = "CANCELLED"
)

// Payment statuses stored in `bookings.payment_status`.  The only
// legal movements are PENDING→PAID, PENDING→FAILED and PAID→REFUNDED.
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusPaid     = "PAID"
	PaymentStatusRefunded = "REFUNDED"
	PaymentStatusFailed   = "FAILED"
)

// Booking sources stored in `bookings.source`, recording how the
// reservation entered the system.
const (
	BookingSourceOnline = "ONLINE"
	BookingSourceManual = "MANUAL"
	BookingSourcePhone  = "PHONE"
	BookingSourceWalkIn = "WALK_IN"
)

// Booking records a customer's reservation of a room for a date
// range.  A stay occupies the half-open interval
// [CheckInDate, CheckOutDate): the checkout date itself is free for a
// new booking.  Bookings are never physically deleted: cancellation
// is a status change, so the row remains for audit and reporting.
//
// Fields:
//  ID              – primary key identifier.
//  BookingNumber   – human-readable unique reference (BK-XXXXXXXX).
//  RoomID          – room being reserved.
//  CustomerID      – guest who made the reservation.
//  CheckInDate     – first night of the stay (calendar date, UTC).
//  CheckOutDate    – day the room is vacated (exclusive).
//  Guests          – number of guests.
//  TotalCents      – nights × nightly rate, fixed at creation.
//  BookingStatus   – lifecycle state (see BookingStatus* constants).
//  PaymentStatus   – payment state (see PaymentStatus* constants).
//  Source          – how the booking was created.
//  CreatedBy       – staff user who created a manual booking (nullable).
//  SpecialRequests – free-form guest requests.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type Booking struct {
	ID              uint64    // bookings.id
	BookingNumber   string    // bookings.booking_number
	RoomID          uint64    // bookings.room_id
	CustomerID      uint64    // bookings.customer_id
	CheckInDate     time.Time // bookings.check_in_date
	CheckOutDate    time.Time // bookings.check_out_date
	Guests          uint32    // bookings.guests
	TotalCents      int64     // bookings.total_cents
	BookingStatus   string    // bookings.booking_status
	PaymentStatus   string    // bookings.payment_status
	Source          string    // bookings.source
	CreatedBy       *uint64   // bookings.created_by (nullable)
	SpecialRequests string    // bookings.special_requests
	CreatedAt       time.Time // bookings.created_at
	UpdatedAt       time.Time // bookings.updated_at
}

// Nights returns the length of the stay in nights.  The range is
// half-open, so a 2025-06-01 → 2025-06-03 booking is two nights.
func (b *Booking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}
