// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published on the booking.events queue.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventPaymentReconciled    = "payment.reconciled"
)

// BookingEvent is published after booking mutations commit.  It
// carries enough information for downstream consumers to log, notify
// or feed analytics without querying the primary database.  Publishing
// is fire-and-forget; a lost event never fails the operation that
// produced it.
type BookingEvent struct {
	Type          string `json:"type"`
	BookingID     uint64 `json:"booking_id"`
	BookingNumber string `json:"booking_number,omitempty"`
	RoomNumber    string `json:"room_number,omitempty"`
	BookingStatus string `json:"booking_status,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	TotalCents    int64  `json:"total_cents"`
	Reference     string `json:"payment_reference,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}
