package booking

import (
	"context"
	"fmt"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/queue"
)

// CheckIn moves a CONFIRMED booking to CHECKED_IN.  Beyond the state
// machine, two preconditions apply: today must fall within the
// half-open stay window [checkInDate, checkOutDate), and the booking's
// payment must not have FAILED.  A PENDING payment does not block
// check-in; staff may collect payment at the desk; only a recorded
// failure does.
func (s *Service) CheckIn(ctx context.Context, bookingID, actorUserID uint64, ip string) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	next, err := nextStatus(b.BookingStatus, EventCheckIn, s.allowCheckedInCancel)
	if err != nil {
		return nil, err
	}
	today := toDate(s.now())
	if today.Before(b.CheckInDate) || !today.Before(b.CheckOutDate) {
		return nil, ErrOutsideStay
	}
	if b.PaymentStatus == model.PaymentStatusFailed {
		return nil, ErrPaymentFailed
	}
	return s.applyTransition(ctx, b, next, "BOOKING_CHECKED_IN", actorUserID, ip)
}

// CheckOut moves a CHECKED_IN booking to CHECKED_OUT.  Once checked
// out, the booking's date range no longer blocks new reservations.
func (s *Service) CheckOut(ctx context.Context, bookingID, actorUserID uint64, ip string) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	next, err := nextStatus(b.BookingStatus, EventCheckOut, s.allowCheckedInCancel)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, b, next, "BOOKING_CHECKED_OUT", actorUserID, ip)
}

// Cancel moves a booking to CANCELLED.  CONFIRMED bookings may always
// be cancelled; cancelling a CHECKED_IN booking is an administrative
// override gated by the AllowCheckedInCancel policy switch.
// Cancellation is a status change only; the row and its payments are
// retained.
func (s *Service) Cancel(ctx context.Context, bookingID, actorUserID uint64, ip string) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	next, err := nextStatus(b.BookingStatus, EventCancel, s.allowCheckedInCancel)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, b, next, "BOOKING_CANCELLED", actorUserID, ip)
}

// applyTransition persists the status change with a conditional write
// keyed on the status the caller observed, then emits the audit entry
// and domain event.  A zero-row update means a concurrent transition
// won; the caller sees repository.ErrConflict and must re-read.
func (s *Service) applyTransition(ctx context.Context, b *model.Booking, next, action string, actorUserID uint64, ip string) (*model.Booking, error) {
	if err := s.bookings.UpdateBookingStatus(ctx, b.ID, b.BookingStatus, next); err != nil {
		return nil, err
	}
	prev := b.BookingStatus
	b.BookingStatus = next

	s.record(model.ActivityEntry{
		EntityType: model.ActivityEntityBooking,
		EntityID:   b.ID,
		Action:     action,
		UserID:     actorUserID,
		Details: fmt.Sprintf("booking %s: %s -> %s (room %d, %s to %s)",
			b.BookingNumber, prev, next, b.RoomID,
			b.CheckInDate.Format("2006-01-02"), b.CheckOutDate.Format("2006-01-02")),
		IPAddress: ip,
	})
	s.publish(queue.BookingEvent{
		Type:          queue.EventBookingStatusChanged,
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		BookingStatus: next,
		PaymentStatus: b.PaymentStatus,
		TotalCents:    b.TotalCents,
	})
	return b, nil
}
