package model

import "time"

// StaffUser represents a staff account in the `staff_users` table.
// Staff authenticate against the panel endpoints with username and
// password; only active accounts may log in. Passwords are stored as
// bcrypt hashes, never in plain text.
//
// Fields:
//  ID           – primary key identifier.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
type StaffUser struct {
	ID           uint64    // staff_users.id
	Username     string    // staff_users.username
	PasswordHash string    // staff_users.password_hash
	IsActive     bool      // staff_users.is_active
	CreatedAt    time.Time // staff_users.created_at
}
