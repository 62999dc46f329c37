package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turfbook/turf-booking/internal/utils"
)

func staffColumns() []string {
	return []string{"id", "username", "password_hash", "is_active", "created_at"}
}

func TestAuthenticateSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Minimum cost keeps the test fast; the repo only compares hashes.
	hash, err := utils.HashPassword("s3cret", 4)
	require.NoError(t, err)

	mock.ExpectQuery("FROM staff_users WHERE username").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows(staffColumns()).
			AddRow(1, "admin", hash, true, time.Now()))

	repo := NewStaffRepo(db)
	u, err := repo.Authenticate(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "admin", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := utils.HashPassword("s3cret", 4)
	require.NoError(t, err)

	// Unknown username.
	mock.ExpectQuery("FROM staff_users WHERE username").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(staffColumns()))
	// Wrong password.
	mock.ExpectQuery("FROM staff_users WHERE username").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows(staffColumns()).
			AddRow(1, "admin", hash, true, time.Now()))
	// Deactivated account, even with the right password.
	mock.ExpectQuery("FROM staff_users WHERE username").
		WithArgs("retired").
		WillReturnRows(sqlmock.NewRows(staffColumns()).
			AddRow(2, "retired", hash, false, time.Now()))

	repo := NewStaffRepo(db)

	_, err = repo.Authenticate(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = repo.Authenticate(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = repo.Authenticate(context.Background(), "retired", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.NoError(t, mock.ExpectationsWereMet())
}
