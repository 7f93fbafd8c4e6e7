package booking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/booking"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/payment"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/repository"
)

const testRef = "HMS-abc123"

func seedPendingPayment(e *env) {
	e.db.addRoom(standardRoom())
	e.db.addBooking(model.Booking{
		ID: 1, BookingNumber: "BK-PAY00001", RoomID: 1, CustomerID: 7,
		CheckInDate: date(2026, 6, 1), CheckOutDate: date(2026, 6, 3),
		BookingStatus: model.BookingStatusConfirmed, PaymentStatus: model.PaymentStatusPending,
	})
	e.db.addPayment(model.Payment{
		ID: 1, BookingID: 1, Reference: testRef,
		AmountCents: 20000, Status: model.PaymentIntentPending,
	})
}

func TestReconcile_SuccessAppliesOnce(t *testing.T) {
	e := newEnv(booking.Config{})
	seedPendingPayment(e)

	res, err := e.svc.ReconcilePayment(context.Background(), testRef, booking.OutcomeSuccess, `{"status":"success"}`)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.False(t, res.Conflict)
	assert.Equal(t, model.PaymentIntentSuccess, e.db.payment(testRef).Status)
	assert.Equal(t, model.PaymentStatusPaid, e.db.booking(1).PaymentStatus)
	assert.Equal(t, model.BookingStatusConfirmed, e.db.booking(1).BookingStatus,
		"payment success never changes the lifecycle status")
	assert.Contains(t, e.activity.actions(), "PAYMENT_CONFIRMED")
}

func TestReconcile_RepeatDeliveryIsNoop(t *testing.T) {
	e := newEnv(booking.Config{})
	seedPendingPayment(e)

	first, err := e.svc.ReconcilePayment(context.Background(), testRef, booking.OutcomeSuccess, "{}")
	require.NoError(t, err)
	require.True(t, first.Applied)

	second, err := e.svc.ReconcilePayment(context.Background(), testRef, booking.OutcomeSuccess, "{}")
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.False(t, second.Conflict)
	assert.Equal(t, model.PaymentStatusPaid, e.db.booking(1).PaymentStatus)
}

func TestReconcile_ContradictionKeepsFirstResult(t *testing.T) {
	e := newEnv(booking.Config{})
	seedPendingPayment(e)

	_, err := e.svc.ReconcilePayment(context.Background(), testRef, booking.OutcomeSuccess, "{}")
	require.NoError(t, err)

	res, err := e.svc.ReconcilePayment(context.Background(), testRef, booking.OutcomeFailed, "{}")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.True(t, res.Conflict)
	assert.Equal(t, model.PaymentIntentSuccess, e.db.payment(testRef).Status, "first terminal write wins")
	assert.Equal(t, model.PaymentStatusPaid, e.db.booking(1).PaymentStatus)
}

func TestReconcile_FailureKeepsRoomHold(t *testing.T) {
	e := newEnv(booking.Config{})
	seedPendingPayment(e)

	res, err := e.svc.ReconcilePayment(context.Background(), testRef, booking.OutcomeFailed, "{}")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, model.PaymentIntentFailed, e.db.payment(testRef).Status)
	assert.Equal(t, model.PaymentStatusFailed, e.db.booking(1).PaymentStatus)
	assert.Equal(t, model.BookingStatusConfirmed, e.db.booking(1).BookingStatus,
		"a failed payment does not release the booking, cancellation is explicit")
	assert.Contains(t, e.activity.actions(), "PAYMENT_FAILED")

	// The held range still blocks a new reservation.
	_, err = e.svc.CreateBooking(context.Background(), booking.CreateBookingInput{
		RoomID: 1, Email: "other@example.com", FirstName: "A", LastName: "B",
		CheckIn: date(2026, 6, 1), CheckOut: date(2026, 6, 3), Guests: 1,
	})
	assert.ErrorIs(t, err, repository.ErrRoomUnavailable)
}

func TestReconcile_UnknownReference(t *testing.T) {
	e := newEnv(booking.Config{})
	seedPendingPayment(e)

	_, err := e.svc.ReconcilePayment(context.Background(), "HMS-spoofed", booking.OutcomeSuccess, "{}")
	assert.ErrorIs(t, err, repository.ErrPaymentNotFound)
	assert.Equal(t, model.PaymentStatusPending, e.db.booking(1).PaymentStatus)
}

func TestVerifyAndReconcile_Success(t *testing.T) {
	e := newEnv(booking.Config{})
	seedPendingPayment(e)
	e.gateway.verifyWith = &payment.VerifyResult{
		Reference: testRef, Status: "success", AmountCents: 20000, RawResponse: `{"data":{"status":"success"}}`,
	}

	res, err := e.svc.VerifyAndReconcile(context.Background(), testRef)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, model.PaymentStatusPaid, e.db.booking(1).PaymentStatus)
	assert.Equal(t, `{"data":{"status":"success"}}`, e.db.payment(testRef).RawResponse)
}

func TestVerifyAndReconcile_NonSuccessStatusesFail(t *testing.T) {
	for _, status := range []string{"failed", "abandoned", "reversed"} {
		t.Run(status, func(t *testing.T) {
			e := newEnv(booking.Config{})
			seedPendingPayment(e)
			e.gateway.verifyWith = &payment.VerifyResult{Reference: testRef, Status: status}

			res, err := e.svc.VerifyAndReconcile(context.Background(), testRef)
			require.NoError(t, err)
			assert.True(t, res.Applied)
			assert.Equal(t, model.PaymentIntentFailed, e.db.payment(testRef).Status)
		})
	}
}

func TestVerifyAndReconcile_GatewayError(t *testing.T) {
	e := newEnv(booking.Config{})
	seedPendingPayment(e)
	e.gateway.verifyErr = &payment.GatewayError{Op: "verify", Message: "timeout"}

	_, err := e.svc.VerifyAndReconcile(context.Background(), testRef)
	var gwErr *payment.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, model.PaymentIntentPending, e.db.payment(testRef).Status, "no local write on provider failure")
}

// Webhook and verify racing is serialised by MarkResult; whichever
// path writes second observes a terminal record and classifies itself.
func TestReconcile_WebhookAndVerifyConverge(t *testing.T) {
	e := newEnv(booking.Config{})
	seedPendingPayment(e)

	done := make(chan *booking.ReconcileResult, 2)
	for i := 0; i < 2; i++ {
		go func() {
			res, err := e.svc.ReconcilePayment(context.Background(), testRef, booking.OutcomeSuccess, "{}")
			assert.NoError(t, err)
			done <- res
		}()
	}
	applied := 0
	for i := 0; i < 2; i++ {
		res := <-done
		assert.False(t, res.Conflict)
		if res.Applied {
			applied++
		}
	}
	assert.Equal(t, 1, applied, "exactly one delivery performs the terminal write")
	assert.Equal(t, model.PaymentStatusPaid, e.db.booking(1).PaymentStatus)
}
