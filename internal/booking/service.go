package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/payment"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/queue"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/repository"
)

// Validation errors rejected at the service boundary, before any
// persistence is touched.
var (
	ErrInvalidDateRange = errors.New("check-in date must be before check-out date")
	ErrTooManyGuests    = errors.New("number of guests exceeds room capacity")
	ErrOutsideStay      = errors.New("check-in is only allowed between the check-in and check-out dates")
	ErrPaymentFailed    = errors.New("cannot check in a booking whose payment has failed")
)

// RoomStore is the slice of room persistence the service needs.
type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
}

// CustomerStore resolves and upserts guests by their email identity.
type CustomerStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Customer, error)
	UpsertByEmail(ctx context.Context, c *model.Customer) (*model.Customer, error)
}

// BookingStore is the persistence contract for bookings.  CreateChecked
// must re-validate availability inside the same transaction as the
// insert; UpdateBookingStatus and UpdatePaymentStatus must be
// conditional single-row writes returning repository.ErrConflict when
// the row is no longer in the expected prior state.
type BookingStore interface {
	HasOverlap(ctx context.Context, roomID uint64, checkIn, checkOut time.Time, excludeID uint64) (bool, error)
	CreateChecked(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	GetByNumberAndEmail(ctx context.Context, number, email string) (*model.Booking, error)
	GetByPaymentReference(ctx context.Context, reference string) (*model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uint64, from, to string) error
	UpdatePaymentStatus(ctx context.Context, id uint64, from, to string) error
	List(ctx context.Context, f repository.BookingFilter) ([]repository.BookingDetail, error)
	ListCalendar(ctx context.Context, from, to time.Time) ([]repository.BookingDetail, error)
}

// PaymentStore is the persistence contract for payment intents.
// MarkResult must be a conditional write that only succeeds while the
// row is still PENDING.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByReference(ctx context.Context, reference string) (*model.Payment, error)
	MarkResult(ctx context.Context, reference, status, rawResponse string) (bool, error)
}

// Gateway is the external payment provider as seen by the
// orchestrator.  Amounts cross this boundary in major currency units.
type Gateway interface {
	Initialize(ctx context.Context, email string, amountMajor float64, reference string, metadata map[string]string) (*payment.Authorization, error)
	Verify(ctx context.Context, reference string) (*payment.VerifyResult, error)
}

// ActivityLogger records audit entries.  Implementations must be
// fire-and-forget: Record never blocks the caller and never fails the
// operation being logged.
type ActivityLogger interface {
	Record(e model.ActivityEntry)
}

// Service is the booking orchestrator.  It composes the availability
// check, the state machine, the payment gateway and reconciliation
// behind a single façade used by the HTTP handlers.
type Service struct {
	rooms     RoomStore
	customers CustomerStore
	bookings  BookingStore
	payments  PaymentStore
	gateway   Gateway        // nil disables online payment
	activity  ActivityLogger // nil disables audit logging
	// publishEvent, when set, is invoked fire-and-forget after
	// successful mutations; failures are logged and swallowed.
	publishEvent func(ctx context.Context, ev queue.BookingEvent) error

	allowCheckedInCancel bool
	now                  func() time.Time
}

// Config carries the optional collaborators and policy switches for a
// Service.
type Config struct {
	Gateway      Gateway
	Activity     ActivityLogger
	PublishEvent func(ctx context.Context, ev queue.BookingEvent) error
	// AllowCheckedInCancel permits cancelling a CHECKED_IN booking as
	// an administrative override.
	AllowCheckedInCancel bool
	// Now overrides the clock; nil means time.Now.  Used by tests and
	// by nothing else.
	Now func() time.Time
}

// NewService constructs the orchestrator.  The four stores are
// mandatory; everything in cfg is optional.
func NewService(rooms RoomStore, customers CustomerStore, bookings BookingStore, payments PaymentStore, cfg Config) *Service {
	if rooms == nil || customers == nil || bookings == nil || payments == nil {
		panic("nil store passed to booking.NewService")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		rooms:                rooms,
		customers:            customers,
		bookings:             bookings,
		payments:             payments,
		gateway:              cfg.Gateway,
		activity:             cfg.Activity,
		publishEvent:         cfg.PublishEvent,
		allowCheckedInCancel: cfg.AllowCheckedInCancel,
		now:                  now,
	}
}

// toDate truncates a timestamp to its UTC calendar date.  All
// availability arithmetic happens on dates; time-of-day is ignored.
func toDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CheckAvailability reports whether the room is free for the half-open
// range [checkIn, checkOut).  A nonexistent room is an error, never
// silently "available".  excludeID, when non-zero, ignores one booking
// so an existing reservation can be re-validated during edits.
func (s *Service) CheckAvailability(ctx context.Context, roomID uint64, checkIn, checkOut time.Time, excludeID uint64) (bool, error) {
	checkIn, checkOut = toDate(checkIn), toDate(checkOut)
	if !checkIn.Before(checkOut) {
		return false, ErrInvalidDateRange
	}
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return false, err
	}
	conflict, err := s.bookings.HasOverlap(ctx, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// CreateBookingInput is everything needed to create a reservation.
// Customer identity is the email; the name/phone fields create or
// refresh the customer record inline.
type CreateBookingInput struct {
	RoomID          uint64
	Email           string
	FirstName       string
	LastName        string
	Phone           string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          uint32
	Source          string
	CreatedBy       *uint64
	SpecialRequests string
	// InitializePayment attaches a PENDING payment intent and returns
	// the gateway authorization URL for online bookings.
	InitializePayment bool
	IPAddress         string
}

// CreateBookingResult is the orchestrator's answer: the persisted
// booking plus, for online bookings, the payment redirect.
type CreateBookingResult struct {
	Booking *model.Booking
	Payment *payment.Authorization
}

// CreateBooking validates the request, verifies availability, fixes
// the total at nights × nightly rate and persists the booking in
// CONFIRMED/PENDING state.  Availability is re-checked inside the
// insert transaction, so of two racing requests for an overlapping
// range exactly one succeeds; the other receives
// repository.ErrRoomUnavailable.  When InitializePayment is set the
// gateway is called after the booking is committed; a gateway failure
// returns the created booking together with the error so the caller
// can report both.
func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (*CreateBookingResult, error) {
	checkIn, checkOut := toDate(in.CheckIn), toDate(in.CheckOut)
	if !checkIn.Before(checkOut) {
		return nil, ErrInvalidDateRange
	}
	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	if in.Guests == 0 {
		in.Guests = 1
	}
	if in.Guests > room.Capacity {
		return nil, ErrTooManyGuests
	}
	conflict, err := s.bookings.HasOverlap(ctx, in.RoomID, checkIn, checkOut, 0)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, repository.ErrRoomUnavailable
	}

	customer, err := s.customers.UpsertByEmail(ctx, &model.Customer{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	})
	if err != nil {
		return nil, err
	}

	nights := int64(checkOut.Sub(checkIn).Hours() / 24)
	source := in.Source
	if source == "" {
		source = model.BookingSourceOnline
	}
	b := &model.Booking{
		BookingNumber:   newBookingNumber(),
		RoomID:          room.ID,
		CustomerID:      customer.ID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		Guests:          in.Guests,
		TotalCents:      nights * room.PriceCents,
		BookingStatus:   model.BookingStatusConfirmed,
		PaymentStatus:   model.PaymentStatusPending,
		Source:          source,
		CreatedBy:       in.CreatedBy,
		SpecialRequests: in.SpecialRequests,
	}
	// A generated booking number can collide with an existing row; the
	// store reports that as ErrConflict and a fresh number is tried.
	for attempt := 0; ; attempt++ {
		err = s.bookings.CreateChecked(ctx, b)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrConflict) || attempt == 2 {
			return nil, err
		}
		b.BookingNumber = newBookingNumber()
	}

	s.record(model.ActivityEntry{
		EntityType: model.ActivityEntityBooking,
		EntityID:   b.ID,
		Action:     "BOOKING_CREATED",
		UserID:     actorID(in.CreatedBy),
		Details: fmt.Sprintf("booking %s: room %s for %s %s, %s to %s",
			b.BookingNumber, room.RoomNumber, customer.FirstName, customer.LastName,
			checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02")),
		IPAddress: in.IPAddress,
	})
	s.publish(queue.BookingEvent{
		Type:          queue.EventBookingCreated,
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		RoomNumber:    room.RoomNumber,
		BookingStatus: b.BookingStatus,
		PaymentStatus: b.PaymentStatus,
		TotalCents:    b.TotalCents,
	})

	result := &CreateBookingResult{Booking: b}
	if !in.InitializePayment {
		return result, nil
	}
	if s.gateway == nil {
		return result, nil
	}
	auth, err := s.initializePayment(ctx, b, customer.Email)
	if err != nil {
		// The booking is committed; the caller gets both it and the
		// gateway failure so payment can be retried out of band.
		return result, err
	}
	result.Payment = auth
	return result, nil
}

// initializePayment creates the gateway transaction and the local
// PENDING payment intent.  The local record is written only after the
// provider accepted the reference, so every stored reference is
// verifiable.
func (s *Service) initializePayment(ctx context.Context, b *model.Booking, email string) (*payment.Authorization, error) {
	reference := newPaymentReference()
	amountMajor := float64(b.TotalCents) / 100
	auth, err := s.gateway.Initialize(ctx, email, amountMajor, reference, map[string]string{
		"booking_number": b.BookingNumber,
	})
	if err != nil {
		return nil, err
	}
	p := &model.Payment{
		BookingID:   b.ID,
		Reference:   auth.Reference,
		AmountCents: b.TotalCents,
		Status:      model.PaymentIntentPending,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return auth, nil
}

// GetBooking returns a booking by internal id.
func (s *Service) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// LookupBooking resolves a booking by its public booking number and
// the owning customer's email.  Both must match.
func (s *Service) LookupBooking(ctx context.Context, number, email string) (*model.Booking, error) {
	return s.bookings.GetByNumberAndEmail(ctx, number, email)
}

// GetBookingByPaymentReference resolves a booking through a gateway
// transaction reference, used by the post-payment landing page.
func (s *Service) GetBookingByPaymentReference(ctx context.Context, reference string) (*model.Booking, error) {
	return s.bookings.GetByPaymentReference(ctx, reference)
}

// ListBookings returns bookings matching a staff dashboard filter.
func (s *Service) ListBookings(ctx context.Context, f repository.BookingFilter) ([]repository.BookingDetail, error) {
	return s.bookings.List(ctx, f)
}

// CalendarEvents returns all active stays intersecting [from, to) for
// the staff calendar.
func (s *Service) CalendarEvents(ctx context.Context, from, to time.Time) ([]repository.BookingDetail, error) {
	from, to = toDate(from), toDate(to)
	if !from.Before(to) {
		return nil, ErrInvalidDateRange
	}
	return s.bookings.ListCalendar(ctx, from, to)
}

// record forwards an activity entry to the configured logger, if any.
func (s *Service) record(e model.ActivityEntry) {
	if s.activity != nil {
		s.activity.Record(e)
	}
}

// publish sends a domain event without blocking the request: the
// publisher runs on its own goroutine and failures are logged only.
func (s *Service) publish(ev queue.BookingEvent) {
	if s.publishEvent == nil {
		return
	}
	ev.OccurredAt = s.now().UTC().Format(time.RFC3339)
	fn := s.publishEvent
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fn(ctx, ev); err != nil {
			log.Printf("booking: publish %s event failed: %v", ev.Type, err)
		}
	}()
}

func actorID(createdBy *uint64) uint64 {
	if createdBy != nil {
		return *createdBy
	}
	return 0
}

// newBookingNumber generates the human-readable booking reference,
// e.g. BK-9F2C41AB.
func newBookingNumber() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}

// newPaymentReference generates the unique gateway transaction
// reference for a payment intent.
func newPaymentReference() string {
	return "HMS-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}
