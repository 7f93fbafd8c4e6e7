package booking_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/booking"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/payment"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/repository"
)

// memDB is a shared in-memory dataset behind the fake stores.  The
// fakes reproduce the repository contracts the service depends on:
// the overlap predicate over active bookings, the transactional
// room-lock-plus-recheck in CreateChecked, and conditional status
// writes that fail with ErrConflict when the expected prior state is
// gone.
type memDB struct {
	mu sync.Mutex

	rooms     map[uint64]model.Room
	customers map[uint64]model.Customer
	bookings  map[uint64]model.Booking
	payments  map[string]model.Payment

	nextCustomerID uint64
	nextBookingID  uint64
	nextPaymentID  uint64
}

func newMemDB() *memDB {
	return &memDB{
		rooms:     map[uint64]model.Room{},
		customers: map[uint64]model.Customer{},
		bookings:  map[uint64]model.Booking{},
		payments:  map[string]model.Payment{},
	}
}

func (db *memDB) addRoom(r model.Room) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.rooms[r.ID] = r
}

func (db *memDB) addCustomer(c model.Customer) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.customers[c.ID] = c
	if c.ID > db.nextCustomerID {
		db.nextCustomerID = c.ID
	}
}

func (db *memDB) addBooking(b model.Booking) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.bookings[b.ID] = b
	if b.ID > db.nextBookingID {
		db.nextBookingID = b.ID
	}
}

func (db *memDB) addPayment(p model.Payment) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.payments[p.Reference] = p
}

func (db *memDB) booking(id uint64) model.Booking {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.bookings[id]
}

func (db *memDB) payment(ref string) model.Payment {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.payments[ref]
}

// hasOverlapLocked applies the availability predicate: only CONFIRMED
// and CHECKED_IN bookings block, ranges are half-open.
func (db *memDB) hasOverlapLocked(roomID uint64, checkIn, checkOut time.Time, excludeID uint64) bool {
	for _, b := range db.bookings {
		if b.RoomID != roomID || b.ID == excludeID {
			continue
		}
		if b.BookingStatus != model.BookingStatusConfirmed && b.BookingStatus != model.BookingStatusCheckedIn {
			continue
		}
		if b.CheckInDate.Before(checkOut) && b.CheckOutDate.After(checkIn) {
			return true
		}
	}
	return false
}

type fakeRooms struct{ db *memDB }

func (f *fakeRooms) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return &r, nil
}

type fakeCustomers struct{ db *memDB }

func (f *fakeCustomers) GetByID(_ context.Context, id uint64) (*model.Customer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (f *fakeCustomers) UpsertByEmail(_ context.Context, in *model.Customer) (*model.Customer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(in.Email))
	for _, c := range f.db.customers {
		if c.Email == email {
			c.FirstName, c.LastName, c.Phone = in.FirstName, in.LastName, in.Phone
			f.db.customers[c.ID] = c
			return &c, nil
		}
	}
	f.db.nextCustomerID++
	c := *in
	c.ID = f.db.nextCustomerID
	c.Email = email
	f.db.customers[c.ID] = c
	return &c, nil
}

type fakeBookings struct {
	db *memDB
	// beforeUpdateStatus, when set, runs inside UpdateBookingStatus
	// before the conditional check, simulating a concurrent writer.
	beforeUpdateStatus func()
	// duplicateNumbers makes the next n CreateChecked calls fail with
	// ErrConflict, simulating booking_number unique-key collisions.
	duplicateNumbers int
	createCalls      int
}

func (f *fakeBookings) HasOverlap(_ context.Context, roomID uint64, checkIn, checkOut time.Time, excludeID uint64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.hasOverlapLocked(roomID, checkIn, checkOut, excludeID), nil
}

func (f *fakeBookings) CreateChecked(_ context.Context, b *model.Booking) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.createCalls++
	if f.duplicateNumbers > 0 {
		f.duplicateNumbers--
		return repository.ErrConflict
	}
	if _, ok := f.db.rooms[b.RoomID]; !ok {
		return repository.ErrRoomNotFound
	}
	if f.db.hasOverlapLocked(b.RoomID, b.CheckInDate, b.CheckOutDate, 0) {
		return repository.ErrRoomUnavailable
	}
	f.db.nextBookingID++
	b.ID = f.db.nextBookingID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.db.bookings[b.ID] = *b
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func (f *fakeBookings) GetByNumberAndEmail(_ context.Context, number, email string) (*model.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, b := range f.db.bookings {
		if b.BookingNumber != number {
			continue
		}
		if c, ok := f.db.customers[b.CustomerID]; ok && c.Email == email {
			return &b, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (f *fakeBookings) GetByPaymentReference(_ context.Context, reference string) (*model.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.payments[reference]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	b, ok := f.db.bookings[p.BookingID]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func (f *fakeBookings) UpdateBookingStatus(_ context.Context, id uint64, from, to string) error {
	if f.beforeUpdateStatus != nil {
		f.beforeUpdateStatus()
	}
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.BookingStatus != from {
		return repository.ErrConflict
	}
	b.BookingStatus = to
	f.db.bookings[id] = b
	return nil
}

func (f *fakeBookings) UpdatePaymentStatus(_ context.Context, id uint64, from, to string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.PaymentStatus != from {
		return repository.ErrConflict
	}
	b.PaymentStatus = to
	f.db.bookings[id] = b
	return nil
}

func (f *fakeBookings) List(_ context.Context, _ repository.BookingFilter) ([]repository.BookingDetail, error) {
	return []repository.BookingDetail{}, nil
}

func (f *fakeBookings) ListCalendar(_ context.Context, _, _ time.Time) ([]repository.BookingDetail, error) {
	return []repository.BookingDetail{}, nil
}

type fakePayments struct{ db *memDB }

func (f *fakePayments) Create(_ context.Context, p *model.Payment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.nextPaymentID++
	p.ID = f.db.nextPaymentID
	p.CreatedAt = time.Now()
	f.db.payments[p.Reference] = *p
	return nil
}

func (f *fakePayments) GetByReference(_ context.Context, reference string) (*model.Payment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.payments[reference]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	return &p, nil
}

func (f *fakePayments) MarkResult(_ context.Context, reference, status, rawResponse string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.payments[reference]
	if !ok || p.Status != model.PaymentIntentPending {
		return false, nil
	}
	p.Status = status
	p.RawResponse = rawResponse
	f.db.payments[reference] = p
	return true, nil
}

// fakeGateway scripts provider behaviour per test.
type fakeGateway struct {
	mu         sync.Mutex
	initErr    error
	verifyErr  error
	verifyWith *payment.VerifyResult

	initCalls []string // references passed to Initialize
}

func (g *fakeGateway) Initialize(_ context.Context, email string, amountMajor float64, reference string, _ map[string]string) (*payment.Authorization, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initErr != nil {
		return nil, g.initErr
	}
	g.initCalls = append(g.initCalls, reference)
	return &payment.Authorization{
		AuthorizationURL: "https://checkout.example/" + reference,
		AccessCode:       "ac_" + reference,
		Reference:        reference,
	}, nil
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (*payment.VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.verifyWith != nil {
		return g.verifyWith, nil
	}
	return &payment.VerifyResult{Reference: reference, Status: "success"}, nil
}

// fakeActivity collects audit entries synchronously.
type fakeActivity struct {
	mu      sync.Mutex
	entries []model.ActivityEntry
}

func (a *fakeActivity) Record(e model.ActivityEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *fakeActivity) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

// env bundles a service wired to fresh fakes.
type env struct {
	db       *memDB
	bookings *fakeBookings
	gateway  *fakeGateway
	activity *fakeActivity
	svc      *booking.Service
}

func newEnv(cfg booking.Config) *env {
	db := newMemDB()
	bookings := &fakeBookings{db: db}
	gw := &fakeGateway{}
	act := &fakeActivity{}
	if cfg.Gateway == nil {
		cfg.Gateway = gw
	}
	if cfg.Activity == nil {
		cfg.Activity = act
	}
	svc := booking.NewService(&fakeRooms{db: db}, &fakeCustomers{db: db}, bookings, &fakePayments{db: db}, cfg)
	return &env{db: db, bookings: bookings, gateway: gw, activity: act, svc: svc}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
