package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
)

// ActivityRepo provides append and query access to the activity log.
// The log is append-only: entries are never edited, and the only
// deletion supported is the privileged purge of entries older than a
// cutoff.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo returns a new ActivityRepo bound to the given database.
func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

// Append inserts one activity entry.
func (r *ActivityRepo) Append(ctx context.Context, e *model.ActivityEntry) error {
	const q = `INSERT INTO activity_log (entity_type, entity_id, action, user_id, details, ip_address)
			   VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.EntityType, e.EntityID, e.Action, e.UserID, e.Details, e.IPAddress)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ActivityFilter narrows Query results.  Zero values mean "no filter".
type ActivityFilter struct {
	EntityType string
	EntityID   uint64
	Action     string
	UserID     uint64
	From       time.Time
	To         time.Time
	Page       int
	PerPage    int
}

// Query returns activity entries matching the filter, newest first,
// paginated.
func (r *ActivityRepo) Query(ctx context.Context, f ActivityFilter) ([]model.ActivityEntry, error) {
	q := `SELECT id, entity_type, entity_id, action, user_id, details, ip_address, created_at
		  FROM activity_log WHERE 1 = 1`
	args := []interface{}{}
	if f.EntityType != "" {
		q += ` AND entity_type = ?`
		args = append(args, f.EntityType)
	}
	if f.EntityID != 0 {
		q += ` AND entity_id = ?`
		args = append(args, f.EntityID)
	}
	if f.Action != "" {
		q += ` AND action = ?`
		args = append(args, f.Action)
	}
	if f.UserID != 0 {
		q += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if !f.From.IsZero() {
		q += ` AND created_at >= ?`
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		q += ` AND created_at < ?`
		args = append(args, f.To.UTC())
	}
	q += ` ORDER BY created_at DESC, id DESC`
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	q += ` LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.ActivityEntry, 0)
	for rows.Next() {
		var e model.ActivityEntry
		var details, ip sql.NullString
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.UserID, &details, &ip, &e.CreatedAt); err != nil {
			return nil, err
		}
		if details.Valid {
			e.Details = details.String
		}
		if ip.Valid {
			e.IPAddress = ip.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteOlderThan removes entries created before the cutoff and
// returns the number of rows deleted.  This is the only mutation
// supported beyond Append and is restricted to privileged callers at
// the routing layer.
func (r *ActivityRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activity_log WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
