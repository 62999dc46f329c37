package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turfbook/turf-booking/internal/pricing"
	"github.com/turfbook/turf-booking/internal/repository"
)

// stubRenderer stands in for the PDF/QR renderer so handler tests do
// not depend on image or document encoding.
type stubRenderer struct{}

func (stubRenderer) QRPayload(publicID string) string {
	return "https://turf.example.com/verify/" + publicID + "/"
}

func (stubRenderer) QRPNG(publicID string) ([]byte, error) {
	return []byte("png-bytes"), nil
}

func (stubRenderer) PDF(det *repository.BookingDetail) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

func newBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewBookingHandler(
		repository.NewSportRepo(db),
		repository.NewSlotRepo(db),
		repository.NewPricingRuleRepo(db),
		repository.NewBookingRepo(db),
		pricing.NewResolver(1599),
		stubRenderer{},
	)
	return h, mock, db
}

func postForm(path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestDetailsRejectsEmptySelection(t *testing.T) {
	h, mock, db := newBookingHandler(t)
	defer db.Close()

	c, rec := postForm("/booking/details/", "")
	require.NoError(t, h.Details(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailsEchoesSelection(t *testing.T) {
	h, mock, db := newBookingHandler(t)
	defer db.Close()

	// Duplicates and junk values are dropped, order preserved.
	c, rec := postForm("/booking/details/", "slots[]=2&slots[]=1&slots[]=2&slots[]=abc&slots[]=0")
	require.NoError(t, h.Details(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		SlotIDs []uint64 `json:"slot_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []uint64{2, 1}, body.SlotIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmRequiresSlotsAndCustomer(t *testing.T) {
	h, mock, db := newBookingHandler(t)
	defer db.Close()

	c, rec := postForm("/confirm/", "user_name=Asha&phone=9990001111")
	require.NoError(t, h.Confirm(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = postForm("/confirm/", "slots[]=1&phone=9990001111")
	require.NoError(t, h.Confirm(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No transaction is opened for invalid input.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmConflictWhenSlotAlreadyBooked(t *testing.T) {
	h, mock, db := newBookingHandler(t)
	defer db.Close()

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	// Two slots requested, the locking select returns only one: slot 2
	// was booked by a concurrent confirm.
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sport_id", "date", "time", "is_booked"}).
			AddRow(1, 1, day, "18:00:00", false))
	mock.ExpectRollback()

	c, rec := postForm("/confirm/", "slots[]=1&slots[]=2&user_name=Asha&phone=9990001111")
	require.NoError(t, h.Confirm(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, repository.ErrSlotUnavailable.Error(), body["error"])
	assert.Equal(t, "one or more slots already booked", body["message"])
	// The rollback expectation above is the real assertion: a partial
	// lock must never reach the insert statements.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmSuccess(t *testing.T) {
	h, mock, db := newBookingHandler(t)
	defer db.Close()

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sport_id", "date", "time", "is_booked"}).
			AddRow(1, 1, day, "18:00:00", false).
			AddRow(2, 1, day, "19:00:00", false))
	// Both slots share sport 1, so rules are fetched exactly once. The
	// evening rule prices each hour at 1000-100.
	mock.ExpectQuery("FROM pricing_rules").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sport_id", "date", "start_time", "end_time", "price", "discount", "active"}).
			AddRow(1, 1, nil, "18:00:00", "22:00:00", 1000, 100, true))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT created_at FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectExec("INSERT INTO booking_slots").
		WithArgs(7, 1, 7, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE slots SET is_booked = 1").
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	// After commit the confirmation event is assembled, which resolves
	// the sport name outside the transaction. Publishing itself is
	// best-effort and fails silently without a broker.
	mock.ExpectQuery("FROM sports").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price"}).
			AddRow(1, "Football", "5-a-side turf", 1000))

	c, rec := postForm("/confirm/", "slots[]=1&slots[]=2&user_name=Asha&phone=9990001111")
	require.NoError(t, h.Confirm(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		BookingID   string `json:"booking_id"`
		UserName    string `json:"user_name"`
		Phone       string `json:"phone"`
		Total       int    `json:"total"`
		QRPayload   string `json:"qr_payload"`
		QRPNGBase64 string `json:"qr_png_base64"`
		Slots       []struct {
			ID    uint64 `json:"id"`
			Price int    `json:"price"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.BookingID)
	assert.Equal(t, "Asha", body.UserName)
	assert.Equal(t, "9990001111", body.Phone)
	assert.Equal(t, 1800, body.Total)
	require.Len(t, body.Slots, 2)
	assert.Equal(t, 900, body.Slots[0].Price)
	assert.Equal(t, 900, body.Slots[1].Price)
	assert.Equal(t, "https://turf.example.com/verify/"+body.BookingID+"/", body.QRPayload)
	assert.NotEmpty(t, body.QRPNGBase64)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmFallbackPriceWhenNoRules(t *testing.T) {
	h, mock, db := newBookingHandler(t)
	defer db.Close()

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sport_id", "date", "time", "is_booked"}).
			AddRow(1, 1, day, "10:00:00", false))
	mock.ExpectQuery("FROM pricing_rules").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sport_id", "date", "start_time", "end_time", "price", "discount", "active"}))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectQuery("SELECT created_at FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectExec("INSERT INTO booking_slots").
		WithArgs(8, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE slots SET is_booked = 1").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM sports").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price"}).
			AddRow(1, "Football", "5-a-side turf", 1000))

	c, rec := postForm("/confirm/", "slots[]=1&user_name=Asha&phone=9990001111")
	require.NoError(t, h.Confirm(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1599, body.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyNotFound(t *testing.T) {
	h, mock, db := newBookingHandler(t)
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE public_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id", "user_name", "phone", "total_amount", "created_at"}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/verify/missing/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("public_id")
	c.SetParamValues("missing")

	require.NoError(t, h.Verify(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDownloadStreamsPDF(t *testing.T) {
	h, mock, db := newBookingHandler(t)
	defer db.Close()

	publicID := "5f0c9f1e-1111-2222-3333-444455556666"
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM bookings WHERE public_id").
		WithArgs(publicID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id", "user_name", "phone", "total_amount", "created_at"}).
			AddRow(7, publicID, "Asha", "9990001111", 1800, created))
	mock.ExpectQuery("FROM booking_slots").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "date", "time"}).
			AddRow(1, "Football", day, "18:00:00"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/download/"+publicID+"/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("public_id")
	c.SetParamValues(publicID)

	require.NoError(t, h.Download(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), publicID)
	assert.Equal(t, "%PDF-stub", rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
