package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/turfbook/turf-booking/internal/model"
	"github.com/turfbook/turf-booking/internal/utils"
)

// StaffRepo provides data access to the staff_users table. Staff
// accounts authenticate against the panel endpoints; customers never
// have accounts in this system.
type StaffRepo struct {
	db *sql.DB
}

// NewStaffRepo returns a new StaffRepo bound to the given database.
func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{db: db} }

// Create inserts a new active staff account with a bcrypt-hashed
// password and returns the generated id. A duplicate username is
// reported as ErrUsernameExists.
func (r *StaffRepo) Create(ctx context.Context, username, password string, bcryptCost int) (uint64, error) {
	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return 0, err
	}
	const q = `INSERT INTO staff_users (username, password_hash, is_active) VALUES (?, ?, 1)`
	result, err := r.db.ExecContext(ctx, q, username, hash)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Authenticate verifies a username/password pair against the stored
// bcrypt hash and returns the staff record on success. Unknown
// usernames, inactive accounts and wrong passwords all collapse into
// ErrInvalidCredentials so the login response leaks nothing.
func (r *StaffRepo) Authenticate(ctx context.Context, username, password string) (*model.StaffUser, error) {
	const q = `SELECT id, username, password_hash, is_active, created_at
	           FROM staff_users WHERE username = ?`
	var u model.StaffUser
	err := r.db.QueryRowContext(ctx, q, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}
