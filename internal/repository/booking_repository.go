package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
)

// dateFormat is the literal layout used for DATE columns.  Check-in and
// check-out are calendar dates; time-of-day never participates in
// availability decisions.
const dateFormat = "2006-01-02"

// blockingStatuses are the booking states that occupy a room's date
// range.  CHECKED_OUT and CANCELLED bookings do not block new
// reservations for the same dates.
const blockingStatuses = `('CONFIRMED', 'CHECKED_IN')`

// BookingRepo provides persistence for bookings.  Bookings are never
// deleted; every lifecycle change is a status update so that the full
// reservation history stays queryable.  All timestamp fields are
// stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for transaction management.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// HasOverlap reports whether any CONFIRMED or CHECKED_IN booking on the
// room overlaps the half-open candidate range [checkIn, checkOut).
// Two ranges [a,b) and [c,d) overlap iff c < b AND d > a.  When
// excludeID is non-zero that booking is ignored, which allows
// re-checking availability while editing an existing booking.  The
// query is read-only; callers needing race safety must go through
// CreateChecked instead.
func (r *BookingRepo) HasOverlap(ctx context.Context, roomID uint64, checkIn, checkOut time.Time, excludeID uint64) (bool, error) {
	return hasOverlap(ctx, r.db, roomID, checkIn, checkOut, excludeID)
}

// queryer abstracts *sql.DB and *sql.Tx so the overlap predicate runs
// identically on the read path and inside the create transaction.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func hasOverlap(ctx context.Context, q queryer, roomID uint64, checkIn, checkOut time.Time, excludeID uint64) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings
			  WHERE room_id = ?
				AND booking_status IN ` + blockingStatuses + `
				AND check_in_date < ? AND check_out_date > ?`
	args := []interface{}{roomID, checkOut.Format(dateFormat), checkIn.Format(dateFormat)}
	if excludeID != 0 {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateChecked inserts a booking after re-validating availability
// inside a single transaction.  The room row is locked with SELECT ...
// FOR UPDATE before the overlap recheck, so two concurrent create
// requests for the same room serialise at the database: the first
// commits, the second observes the new row during its recheck and
// fails with ErrRoomUnavailable.  The generated ID and timestamps are
// populated on the passed model.  ErrRoomNotFound is returned when the
// referenced room does not exist.
func (r *BookingRepo) CreateChecked(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the room row so concurrent creates for the same room
	// serialise here; the loser of the race sees the winner's insert
	// in its overlap recheck below.
	var roomID uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = ? FOR UPDATE`, b.RoomID).Scan(&roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	conflict, err := hasOverlap(ctx, tx, b.RoomID, b.CheckInDate, b.CheckOutDate, 0)
	if err != nil {
		return err
	}
	if conflict {
		return ErrRoomUnavailable
	}

	const ins = `INSERT INTO bookings
				   (booking_number, room_id, customer_id, check_in_date, check_out_date,
					guests, total_cents, booking_status, payment_status, source, created_by, special_requests)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins,
		b.BookingNumber, b.RoomID, b.CustomerID,
		b.CheckInDate.Format(dateFormat), b.CheckOutDate.Format(dateFormat),
		b.Guests, b.TotalCents, b.BookingStatus, b.PaymentStatus, b.Source, b.CreatedBy, b.SpecialRequests,
	)
	if err != nil {
		// 1062: the generated booking_number collided with an existing
		// row; the caller retries with a fresh number.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the row to populate timestamps and defaults.
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const bookingColumns = `id, booking_number, room_id, customer_id, check_in_date, check_out_date,
						guests, total_cents, booking_status, payment_status, source, created_by,
						special_requests, created_at, updated_at`

func scanBooking(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	var createdBy sql.NullInt64
	var requests sql.NullString
	err := row.Scan(
		&b.ID, &b.BookingNumber, &b.RoomID, &b.CustomerID, &b.CheckInDate, &b.CheckOutDate,
		&b.Guests, &b.TotalCents, &b.BookingStatus, &b.PaymentStatus, &b.Source, &createdBy,
		&requests, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if createdBy.Valid {
		v := uint64(createdBy.Int64)
		b.CreatedBy = &v
	}
	if requests.Valid {
		b.SpecialRequests = requests.String
	}
	return &b, nil
}

// GetByID returns a single booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(r.db.QueryRowContext(ctx, q, id))
}

// GetByNumberAndEmail returns the booking matching both the
// human-readable booking number and the owning customer's email.
// A mismatch on either field yields ErrBookingNotFound so the public
// lookup endpoint cannot be used to enumerate bookings.
func (r *BookingRepo) GetByNumberAndEmail(ctx context.Context, number, email string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
			   WHERE booking_number = ?
				 AND customer_id = (SELECT id FROM customers WHERE email = ?)`
	return scanBooking(r.db.QueryRowContext(ctx, q, number, normalizeEmail(email)))
}

// GetByPaymentReference resolves a booking through a payment's unique
// gateway reference.  It returns ErrBookingNotFound when the reference
// is unknown.
func (r *BookingRepo) GetByPaymentReference(ctx context.Context, reference string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
			   WHERE id = (SELECT booking_id FROM payments WHERE reference = ?)`
	return scanBooking(r.db.QueryRowContext(ctx, q, reference))
}

// UpdateBookingStatus performs the conditional single-row write that
// backs every state-machine transition: the row is updated only while
// it is still in the expected prior status.  Zero affected rows means
// a concurrent transition won the race (or the caller's snapshot was
// stale) and the caller receives ErrConflict; the state machine has
// already rejected genuinely illegal transitions before this point.
func (r *BookingRepo) UpdateBookingStatus(ctx context.Context, id uint64, from, to string) error {
	const q = `UPDATE bookings SET booking_status = ? WHERE id = ? AND booking_status = ?`
	res, err := r.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// UpdatePaymentStatus conditionally advances the booking's payment
// status, mirroring UpdateBookingStatus.  Reconciliation uses it so a
// duplicated webhook cannot move the same booking twice.
func (r *BookingRepo) UpdatePaymentStatus(ctx context.Context, id uint64, from, to string) error {
	const q = `UPDATE bookings SET payment_status = ? WHERE id = ? AND payment_status = ?`
	res, err := r.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// BookingFilter narrows List results.  Zero values mean "no filter".
// Page is 1-based; PerPage is clamped by the caller.
type BookingFilter struct {
	BookingStatus string
	PaymentStatus string
	RoomID        uint64
	From          time.Time // bookings with check_out_date > From
	To            time.Time // bookings with check_in_date < To
	Page          int
	PerPage       int
}

// BookingDetail is a display-oriented projection of a booking joined
// with its room and customer.  It is returned by List and
// ListCalendar for staff dashboards.
type BookingDetail struct {
	ID            uint64  `json:"id"`
	BookingNumber string  `json:"booking_number"`
	RoomID        uint64  `json:"room_id"`
	RoomNumber    string  `json:"room_number"`
	CustomerID    uint64  `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	CheckInDate   string  `json:"check_in_date"`
	CheckOutDate  string  `json:"check_out_date"`
	Guests        uint32  `json:"guests"`
	TotalCents    int64   `json:"total_cents"`
	BookingStatus string  `json:"booking_status"`
	PaymentStatus string  `json:"payment_status"`
	Source        string  `json:"source"`
}

const detailColumns = `b.id, b.booking_number, b.room_id, rm.room_number,
					   b.customer_id, CONCAT(c.first_name, ' ', c.last_name), c.email,
					   b.check_in_date, b.check_out_date, b.guests, b.total_cents,
					   b.booking_status, b.payment_status, b.source`

func scanDetailRows(rows *sql.Rows) ([]BookingDetail, error) {
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var in, out time.Time
		if err := rows.Scan(
			&d.ID, &d.BookingNumber, &d.RoomID, &d.RoomNumber,
			&d.CustomerID, &d.CustomerName, &d.CustomerEmail,
			&in, &out, &d.Guests, &d.TotalCents,
			&d.BookingStatus, &d.PaymentStatus, &d.Source,
		); err != nil {
			return nil, err
		}
		d.CheckInDate = in.Format(dateFormat)
		d.CheckOutDate = out.Format(dateFormat)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// List returns bookings matching the filter, newest first, paginated.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]BookingDetail, error) {
	q := `SELECT ` + detailColumns + `
		  FROM bookings b
		  JOIN rooms rm ON rm.id = b.room_id
		  JOIN customers c ON c.id = b.customer_id
		  WHERE 1 = 1`
	args := []interface{}{}
	if f.BookingStatus != "" {
		q += ` AND b.booking_status = ?`
		args = append(args, f.BookingStatus)
	}
	if f.PaymentStatus != "" {
		q += ` AND b.payment_status = ?`
		args = append(args, f.PaymentStatus)
	}
	if f.RoomID != 0 {
		q += ` AND b.room_id = ?`
		args = append(args, f.RoomID)
	}
	if !f.From.IsZero() {
		q += ` AND b.check_out_date > ?`
		args = append(args, f.From.Format(dateFormat))
	}
	if !f.To.IsZero() {
		q += ` AND b.check_in_date < ?`
		args = append(args, f.To.Format(dateFormat))
	}
	q += ` ORDER BY b.created_at DESC`
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	q += ` LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanDetailRows(rows)
}

// ListCalendar returns all non-cancelled bookings whose stay intersects
// the [from, to) window, ordered by check-in date.  It backs the staff
// calendar view.
func (r *BookingRepo) ListCalendar(ctx context.Context, from, to time.Time) ([]BookingDetail, error) {
	q := `SELECT ` + detailColumns + `
		  FROM bookings b
		  JOIN rooms rm ON rm.id = b.room_id
		  JOIN customers c ON c.id = b.customer_id
		  WHERE b.booking_status <> 'CANCELLED'
			AND b.check_in_date < ? AND b.check_out_date > ?
		  ORDER BY b.check_in_date, rm.room_number`
	rows, err := r.db.QueryContext(ctx, q, to.Format(dateFormat), from.Format(dateFormat))
	if err != nil {
		return nil, err
	}
	return scanDetailRows(rows)
}
