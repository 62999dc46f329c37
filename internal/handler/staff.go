package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/turfbook/turf-booking/internal/config"
	"github.com/turfbook/turf-booking/internal/repository"
	"github.com/turfbook/turf-booking/internal/utils"
)

// StaffHandler serves the staff panel: login, the dashboard, the
// per-sport booking grid and the manual slot toggle. All routes except
// login and logout sit behind the JWT middleware with the STAFF role.
type StaffHandler struct {
	Cfg      config.Config
	Staff    *repository.StaffRepo
	Sports   *repository.SportRepo
	Slots    *repository.SlotRepo
	Bookings *repository.BookingRepo
}

// NewStaffHandler constructs a StaffHandler. All dependencies must be
// non-nil.
func NewStaffHandler(cfg config.Config, staff *repository.StaffRepo, sports *repository.SportRepo, slots *repository.SlotRepo, bookings *repository.BookingRepo) *StaffHandler {
	if staff == nil || sports == nil || slots == nil || bookings == nil {
		panic("nil repository passed to NewStaffHandler")
	}
	return &StaffHandler{Cfg: cfg, Staff: staff, Sports: sports, Slots: slots, Bookings: bookings}
}

type staffLoginReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login handles POST /staff/login/. It verifies credentials against
// the bcrypt hash and returns a short-lived access token. Unknown
// usernames and wrong passwords produce an identical 401.
func (h *StaffHandler) Login(c echo.Context) error {
	var req staffLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	u, err := h.Staff.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	token, err := utils.NewStaffToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":    token.Token,
		"expires":  token.Exp,
		"username": u.Username,
	})
}

// Logout handles POST /staff/logout/. Tokens are stateless, so logout
// is an acknowledgement; clients discard the token.
func (h *StaffHandler) Logout(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// sportDayStats summarizes one sport's calendar for the dashboard.
type sportDayStats struct {
	SportID   uint64 `json:"sport_id"`
	SportName string `json:"sport"`
	Booked    int    `json:"booked"`
	Free      int    `json:"free"`
}

// Dashboard handles GET /staff/dashboard/?date=. It returns booked and
// free counts per sport for the date (default today) plus the most
// recent bookings. Days that were never viewed have no slots yet and
// report zero on both counts.
func (h *StaffHandler) Dashboard(c echo.Context) error {
	date := time.Now().UTC().Format("2006-01-02")
	if d := c.QueryParam("date"); d != "" {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
		}
		date = d
	}

	ctx := c.Request().Context()
	sports, err := h.Sports.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	stats := make([]sportDayStats, 0, len(sports))
	for _, sport := range sports {
		slots, err := h.Slots.ListBySportDate(ctx, sport.ID, date)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		s := sportDayStats{SportID: sport.ID, SportName: sport.Name}
		for _, slot := range slots {
			if slot.IsBooked {
				s.Booked++
			} else {
				s.Free++
			}
		}
		stats = append(stats, s)
	}

	recent, err := h.Bookings.ListRecent(ctx, 20)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"date":            date,
		"sports":          stats,
		"recent_bookings": recent,
	})
}

// BookingGrid handles GET /staff/booking/:sport_id/?date=. It
// provisions the day and returns the raw slot grid with booked state,
// which is what the manual toggle UI operates on.
func (h *StaffHandler) BookingGrid(c echo.Context) error {
	sportID, err := strconv.ParseUint(c.Param("sport_id"), 10, 64)
	if err != nil || sportID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sport id"})
	}
	ctx := c.Request().Context()
	sport, err := h.Sports.GetByID(ctx, sportID)
	if err != nil {
		if errors.Is(err, repository.ErrSportNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sport not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	date := time.Now().UTC().Format("2006-01-02")
	if d := c.QueryParam("date"); d != "" {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
		}
		date = d
	}

	if err := h.Slots.EnsureDay(ctx, sportID, date); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to provision slots"})
	}
	slots, err := h.Slots.ListBySportDate(ctx, sportID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sport": sport,
		"date":  date,
		"slots": slots,
	})
}

// Toggle handles POST /staff/toggle/:slot_id/. It flips is_booked on a
// single slot in its own short transaction under a row lock. This is
// an administrative override that deliberately bypasses the booking
// transaction; it does not create or remove booking links.
func (h *StaffHandler) Toggle(c echo.Context) error {
	slotID, err := strconv.ParseUint(c.Param("slot_id"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx := c.Request().Context()
	tx, err := h.Slots.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slot, err := h.Slots.GetForUpdateTx(ctx, tx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.Slots.SetBookedTx(ctx, tx, slotID, !slot.IsBooked); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update slot"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"slot_id":   slotID,
		"is_booked": !slot.IsBooked,
	})
}
