package repository

import (
	"context"
	"database/sql"

	"github.com/turfbook/turf-booking/internal/model"
)

// SportRepo provides read access to the sports table. Sports are
// reference data created through administrative tooling, so the
// application only lists and resolves them.
type SportRepo struct {
	db *sql.DB
}

// NewSportRepo returns a new SportRepo bound to the given database.
func NewSportRepo(db *sql.DB) *SportRepo { return &SportRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span several repositories.
func (r *SportRepo) DB() *sql.DB { return r.db }

// List returns all sports ordered by name. An empty table yields an
// empty slice, not an error.
func (r *SportRepo) List(ctx context.Context) ([]model.Sport, error) {
	const q = `SELECT id, name, description, price FROM sports ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sports := make([]model.Sport, 0)
	for rows.Next() {
		var s model.Sport
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price); err != nil {
			return nil, err
		}
		sports = append(sports, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sports, nil
}

// GetByID returns a single sport or ErrSportNotFound.
func (r *SportRepo) GetByID(ctx context.Context, id uint64) (*model.Sport, error) {
	const q = `SELECT id, name, description, price FROM sports WHERE id = ?`
	var s model.Sport
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.Description, &s.Price)
	if err == sql.ErrNoRows {
		return nil, ErrSportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
