package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
)

// CustomerRepo provides persistence for guest records.  The email
// address is the identity key: booking creation upserts by email so a
// returning guest keeps a single customer row across bookings.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// GetByID returns a single customer or ErrCustomerNotFound.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	const q = `SELECT id, first_name, last_name, email, phone, address, created_at, updated_at
			   FROM customers WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByEmail returns the customer owning the given (normalised) email,
// or ErrCustomerNotFound.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	const q = `SELECT id, first_name, last_name, email, phone, address, created_at, updated_at
			   FROM customers WHERE email = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, normalizeEmail(email)))
}

// UpsertByEmail finds or creates a customer keyed by email and returns
// the persistent record.  Contact fields on an existing customer are
// refreshed with the supplied values when non-empty; the email itself
// is immutable.  Concurrent upserts for a new email may race on the
// unique index, in which case the insert loser re-reads the winner's row.
func (r *CustomerRepo) UpsertByEmail(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	c.Email = normalizeEmail(c.Email)
	existing, err := r.GetByEmail(ctx, c.Email)
	if err == nil {
		if c.FirstName != "" || c.LastName != "" || c.Phone != "" {
			const upd = `UPDATE customers SET
						   first_name = COALESCE(NULLIF(?, ''), first_name),
						   last_name  = COALESCE(NULLIF(?, ''), last_name),
						   phone      = COALESCE(NULLIF(?, ''), phone)
						 WHERE id = ?`
			if _, err := r.db.ExecContext(ctx, upd, c.FirstName, c.LastName, c.Phone, existing.ID); err != nil {
				return nil, err
			}
		}
		return r.GetByID(ctx, existing.ID)
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		return nil, err
	}
	const ins = `INSERT INTO customers (first_name, last_name, email, phone, address) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, ins, c.FirstName, c.LastName, c.Email, c.Phone, c.Address)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			// another request inserted this email first; use its row
			return r.GetByEmail(ctx, c.Email)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

func (r *CustomerRepo) scanOne(row *sql.Row) (*model.Customer, error) {
	var c model.Customer
	var address sql.NullString
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if address.Valid {
		a := address.String
		c.Address = &a
	}
	return &c, nil
}

// normalizeEmail lowers and trims an email so lookups and the unique
// index agree on a single canonical form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
