package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
)

// PaymentRepo provides persistence for payment intents.  A payment is
// created PENDING when a booking is initialised for online payment and
// is moved to a terminal status (SUCCESS or FAILED) exactly once by
// reconciliation.  Terminal rows are never mutated again; duplicated
// or conflicting webhooks are absorbed by the conditional write in
// MarkResult.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts a PENDING payment intent and populates the generated
// ID on the passed model.  A duplicate gateway reference returns
// ErrConflict: references are unique and must never be reused.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (booking_id, reference, amount_cents, status, raw_response)
			   VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.BookingID, p.Reference, p.AmountCents, p.Status, p.RawResponse)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByReference returns the payment owning the unique gateway
// reference, or ErrPaymentNotFound.  Reconciliation relies on the
// not-found case to reject spoofed or replayed references without
// creating records.
func (r *PaymentRepo) GetByReference(ctx context.Context, reference string) (*model.Payment, error) {
	const q = `SELECT id, booking_id, reference, amount_cents, status, raw_response, created_at, updated_at
			   FROM payments WHERE reference = ?`
	var p model.Payment
	var raw sql.NullString
	err := r.db.QueryRowContext(ctx, q, reference).Scan(
		&p.ID, &p.BookingID, &p.Reference, &p.AmountCents, &p.Status, &raw, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if raw.Valid {
		p.RawResponse = raw.String
	}
	return &p, nil
}

// MarkResult writes the terminal outcome for a payment, but only while
// the row is still PENDING.  The returned bool reports whether this
// call performed the write: false means some earlier call already
// recorded a terminal status, and the caller must re-read the row to
// distinguish an idempotent repeat from a conflicting outcome.  This
// single conditional UPDATE is the entire first-write-wins guarantee;
// no separate deduplication store exists.
func (r *PaymentRepo) MarkResult(ctx context.Context, reference, status, rawResponse string) (bool, error) {
	const q = `UPDATE payments SET status = ?, raw_response = ? WHERE reference = ? AND status = 'PENDING'`
	res, err := r.db.ExecContext(ctx, q, status, rawResponse, reference)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByBooking returns all payment intents ever created for a
// booking, newest first.  Historical terminal intents are retained for
// audit.
func (r *PaymentRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.Payment, error) {
	const q = `SELECT id, booking_id, reference, amount_cents, status, raw_response, created_at, updated_at
			   FROM payments WHERE booking_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		var raw sql.NullString
		if err := rows.Scan(
			&p.ID, &p.BookingID, &p.Reference, &p.AmountCents, &p.Status, &raw, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if raw.Valid {
			p.RawResponse = raw.String
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
