// Package booking owns the reservation lifecycle: availability
// checking, the booking state machine, orchestration of creation and
// payment, and reconciliation of gateway outcomes.  Persistence is
// reached through small store interfaces so the logic here is testable
// without a database.
package booking

import (
	"fmt"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
)

// Event names the operations that may move a booking between states.
type Event string

const (
	EventCheckIn  Event = "CHECK_IN"
	EventCheckOut Event = "CHECK_OUT"
	EventCancel   Event = "CANCEL"
)

// InvalidTransitionError reports an event that is not legal from the
// booking's current status.  It is returned verbatim to callers; an
// illegal transition is never silently ignored.
type InvalidTransitionError struct {
	Status string // current booking status
	Event  Event  // attempted event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot apply %s to a %s booking", e.Event, e.Status)
}

// nextStatus resolves the target status for an event applied to the
// current status.  The transition table:
//
//	CONFIRMED  --CHECK_IN-->  CHECKED_IN
//	CHECKED_IN --CHECK_OUT--> CHECKED_OUT
//	CONFIRMED  --CANCEL-->    CANCELLED
//	CHECKED_IN --CANCEL-->    CANCELLED   (administrative override only)
//
// CHECKED_OUT and CANCELLED are terminal: every event from them fails.
// Preconditions that depend on more than the status pair (stay window,
// payment state) are enforced by the service before the transition is
// persisted.
func nextStatus(current string, ev Event, allowCheckedInCancel bool) (string, error) {
	switch current {
	case model.BookingStatusConfirmed:
		switch ev {
		case EventCheckIn:
			return model.BookingStatusCheckedIn, nil
		case EventCancel:
			return model.BookingStatusCancelled, nil
		}
	case model.BookingStatusCheckedIn:
		switch ev {
		case EventCheckOut:
			return model.BookingStatusCheckedOut, nil
		case EventCancel:
			if allowCheckedInCancel {
				return model.BookingStatusCancelled, nil
			}
		}
	}
	return "", &InvalidTransitionError{Status: current, Event: ev}
}
