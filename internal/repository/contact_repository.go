package repository

import (
	"context"
	"database/sql"

	"github.com/turfbook/turf-booking/internal/model"
)

// ContactRepo reads the facility contact details. The table is
// expected to hold one row maintained by staff.
type ContactRepo struct {
	db *sql.DB
}

// NewContactRepo returns a new ContactRepo bound to the given database.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// First returns the first contact row or ErrContactNotFound when the
// table is empty.
func (r *ContactRepo) First(ctx context.Context) (*model.Contact, error) {
	const q = `SELECT id, phone, email, address FROM contacts ORDER BY id LIMIT 1`
	var c model.Contact
	err := r.db.QueryRowContext(ctx, q).Scan(&c.ID, &c.Phone, &c.Email, &c.Address)
	if err == sql.ErrNoRows {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
