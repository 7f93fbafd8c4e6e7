// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service and handlers to distinguish between different failure
// scenarios. For example, ErrRoomUnavailable indicates that a date range
// conflicts with an existing reservation, while ErrConflict signals that
// a conditional status update lost a race against a concurrent writer.
package repository

import "errors"

// ErrRoomNotFound is returned when a referenced room does not exist.
// Availability checks against a nonexistent room surface this error
// rather than silently reporting the room as available.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound is returned when a booking lookup by id, booking
// number or payment reference matches no row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrPaymentNotFound is returned when no payment exists for a provider
// reference. Reconciliation must never create records for unknown
// references, since those indicate a replay or a spoofed webhook.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrCustomerNotFound is returned when a customer lookup matches no row.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrRoomUnavailable is returned when the requested [check-in,
// check-out) range overlaps an existing CONFIRMED or CHECKED_IN
// booking for the same room. It is raised both by the read-only
// availability check and by the in-transaction recheck on insert.
var ErrRoomUnavailable = errors.New("room unavailable for the requested dates")

// ErrConflict is returned when a conditional single-row update affects
// zero rows because the row was no longer in the expected prior state,
// i.e. a concurrent transition or reconciliation won the race.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they are not permitted to touch. Handlers should translate
// this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when inserting a user whose email is
// already registered.
var ErrEmailExists = errors.New("email already exists")
