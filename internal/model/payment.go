package model

import "time"

// Payment intent statuses stored in `payments.status`.  SUCCESS and
// FAILED are terminal; reconciliation writes a terminal status exactly
// once and never overwrites it.
const (
	PaymentIntentPending = "PENDING"
	PaymentIntentSuccess = "SUCCESS"
	PaymentIntentFailed  = "FAILED"
)

// Payment represents a single payment intent against a booking as
// stored in the `payments` table.  A booking has at most one PENDING
// intent at a time; earlier terminal intents are retained for audit.
//
// Fields:
//  ID          – primary key identifier.
//  BookingID   – booking this payment belongs to.
//  Reference   – unique gateway transaction reference.
//  AmountCents – amount in the smallest currency unit.
//  Status      – PENDING, SUCCESS or FAILED.
//  RawResponse – opaque provider payload recorded at reconciliation.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Payment struct {
	ID          uint64    // payments.id
	BookingID   uint64    // payments.booking_id
	Reference   string    // payments.reference
	AmountCents int64     // payments.amount_cents
	Status      string    // payments.status
	RawResponse string    // payments.raw_response
	CreatedAt   time.Time // payments.created_at
	UpdatedAt   time.Time // payments.updated_at
}
