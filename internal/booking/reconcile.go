package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/queue"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/repository"
)

// Outcome is a terminal payment result reported by the provider.
type Outcome string

const (
	OutcomeSuccess Outcome = model.PaymentIntentSuccess
	OutcomeFailed  Outcome = model.PaymentIntentFailed
)

// ReconcileResult describes what a reconciliation call observed.
//
// Applied is true only for the call that performed the first terminal
// write.  A repeat delivery of the same outcome yields Applied=false,
// Conflict=false: an observable no-op.  A delivery contradicting the
// recorded outcome yields Applied=false, Conflict=true, and the stored
// terminal record is left untouched; first write wins.
type ReconcileResult struct {
	Payment  *model.Payment
	Applied  bool
	Conflict bool
}

// ReconcilePayment applies a provider outcome to local state exactly
// once.  It is the single convergence point for the synchronous verify
// path and the asynchronous webhook path: both may arrive in any
// order, repeatedly, and the payment and booking end in the same
// state.
//
// An unknown reference returns repository.ErrPaymentNotFound and
// creates nothing; unknown references are replays or spoofs.
func (s *Service) ReconcilePayment(ctx context.Context, reference string, outcome Outcome, rawResponse string) (*ReconcileResult, error) {
	p, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentIntentPending {
		return s.terminalResult(p, outcome), nil
	}

	applied, err := s.payments.MarkResult(ctx, reference, string(outcome), rawResponse)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race against another delivery; re-read to see what won.
		p, err = s.payments.GetByReference(ctx, reference)
		if err != nil {
			return nil, err
		}
		return s.terminalResult(p, outcome), nil
	}

	// First terminal write: advance the booking's payment status.  The
	// booking's lifecycle status is untouched; check-in remains a
	// separate explicit action, and a failed payment does not release
	// the room hold.
	target := model.PaymentStatusPaid
	action := "PAYMENT_CONFIRMED"
	if outcome == OutcomeFailed {
		target = model.PaymentStatusFailed
		action = "PAYMENT_FAILED"
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, p.BookingID, model.PaymentStatusPending, target); err != nil {
		// ErrConflict here means the booking row already carries a
		// terminal payment status from an earlier partial run; the
		// payment write above is authoritative, so this is not a
		// failure of reconciliation.
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
	}

	p.Status = string(outcome)
	p.RawResponse = rawResponse
	s.record(model.ActivityEntry{
		EntityType: model.ActivityEntityPayment,
		EntityID:   p.ID,
		Action:     action,
		Details:    fmt.Sprintf("payment %s for booking %d: %s", p.Reference, p.BookingID, outcome),
	})
	s.publish(queue.BookingEvent{
		Type:          queue.EventPaymentReconciled,
		BookingID:     p.BookingID,
		PaymentStatus: target,
		TotalCents:    p.AmountCents,
		Reference:     p.Reference,
	})
	return &ReconcileResult{Payment: p, Applied: true}, nil
}

// terminalResult classifies a repeat delivery against the recorded
// terminal status.
func (s *Service) terminalResult(p *model.Payment, outcome Outcome) *ReconcileResult {
	return &ReconcileResult{
		Payment:  p,
		Conflict: p.Status != string(outcome),
	}
}

// VerifyAndReconcile is the synchronous entry point: the client
// returned from the gateway redirect, so we ask the provider for the
// transaction's state and feed the answer into reconciliation.  Any
// provider status other than success is treated as a failed outcome.
func (s *Service) VerifyAndReconcile(ctx context.Context, reference string) (*ReconcileResult, error) {
	if s.gateway == nil {
		return nil, errors.New("payment gateway not configured")
	}
	v, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	outcome := OutcomeFailed
	if v.Success() {
		outcome = OutcomeSuccess
	}
	return s.ReconcilePayment(ctx, reference, outcome, v.RawResponse)
}
