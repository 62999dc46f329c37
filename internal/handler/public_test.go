package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turfbook/turf-booking/internal/pricing"
	"github.com/turfbook/turf-booking/internal/repository"
)

func newPublicHandler(t *testing.T) (*PublicHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewPublicHandler(
		repository.NewSportRepo(db),
		repository.NewSlotRepo(db),
		repository.NewPricingRuleRepo(db),
		repository.NewContactRepo(db),
		pricing.NewResolver(1599),
	)
	return h, mock, db
}

func getWithParam(path, name, value string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if name != "" {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}
	return c, rec
}

func TestListSportsEmpty(t *testing.T) {
	h, mock, db := newPublicHandler(t)
	defer db.Close()

	mock.ExpectQuery("FROM sports ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price"}))

	c, rec := getWithParam("/", "", "")
	require.NoError(t, h.ListSports(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Sports []json.RawMessage `json:"sports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Sports)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSlotsProvisionsThenLists(t *testing.T) {
	h, mock, db := newPublicHandler(t)
	defer db.Close()

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM sports WHERE id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price"}).
			AddRow(1, "Football", "5-a-side turf", 1000))
	// The listing endpoint provisions the day before reading it, so a
	// never-viewed date always comes back with a full calendar.
	mock.ExpectExec("INSERT IGNORE INTO slots").
		WillReturnResult(sqlmock.NewResult(0, 24))
	mock.ExpectQuery("FROM slots").
		WithArgs(1, "2025-03-01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sport_id", "date", "time", "is_booked"}).
			AddRow(1, 1, day, "18:00:00", false).
			AddRow(2, 1, day, "19:00:00", true))
	mock.ExpectQuery("FROM pricing_rules").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sport_id", "date", "start_time", "end_time", "price", "discount", "active"}).
			AddRow(1, 1, nil, "18:00:00", "22:00:00", 1000, 100, true))

	c, rec := getWithParam("/slots/1/?date=2025-03-01", "sport_id", "1")
	require.NoError(t, h.ListSlots(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		SelectedDate string   `json:"selected_date"`
		Dates        []string `json:"dates"`
		Slots        []struct {
			ID         uint64 `json:"id"`
			Time       string `json:"time"`
			StartLabel string `json:"start_label"`
			IsBooked   bool   `json:"is_booked"`
			Price      int    `json:"price"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-03-01", body.SelectedDate)
	assert.Len(t, body.Dates, 7)
	require.Len(t, body.Slots, 2)
	assert.Equal(t, "6:00 PM", body.Slots[0].StartLabel)
	assert.Equal(t, 900, body.Slots[0].Price)
	assert.False(t, body.Slots[0].IsBooked)
	assert.True(t, body.Slots[1].IsBooked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSlotsBadDate(t *testing.T) {
	h, mock, db := newPublicHandler(t)
	defer db.Close()

	mock.ExpectQuery("FROM sports WHERE id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price"}).
			AddRow(1, "Football", "5-a-side turf", 1000))

	c, rec := getWithParam("/slots/1/?date=03/01/2025", "sport_id", "1")
	require.NoError(t, h.ListSlots(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSlotsUnknownSport(t *testing.T) {
	h, mock, db := newPublicHandler(t)
	defer db.Close()

	mock.ExpectQuery("FROM sports WHERE id").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price"}))

	c, rec := getWithParam("/slots/42/", "sport_id", "42")
	require.NoError(t, h.ListSlots(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
