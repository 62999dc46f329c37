package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/turfbook/turf-booking/internal/pricing"
	"github.com/turfbook/turf-booking/internal/repository"
	"github.com/turfbook/turf-booking/internal/utils"
)

// PublicHandler serves the unauthenticated browse surface: the sports
// list, per-day slot listings and the contact page. Slot listings are
// lock-free reads and may show a slightly stale is_booked status; the
// confirm transaction is the authority.
type PublicHandler struct {
	Sports   *repository.SportRepo
	Slots    *repository.SlotRepo
	Pricing  *repository.PricingRuleRepo
	Contacts *repository.ContactRepo
	Resolver *pricing.Resolver
}

// NewPublicHandler constructs a PublicHandler. All dependencies must
// be non-nil.
func NewPublicHandler(sports *repository.SportRepo, slots *repository.SlotRepo, pricingRepo *repository.PricingRuleRepo, contacts *repository.ContactRepo, resolver *pricing.Resolver) *PublicHandler {
	if sports == nil || slots == nil || pricingRepo == nil || contacts == nil || resolver == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Sports: sports, Slots: slots, Pricing: pricingRepo, Contacts: contacts, Resolver: resolver}
}

// slotView is a slot as presented on listings: canonical fields plus
// derived display labels and the resolved price.
type slotView struct {
	ID         uint64 `json:"id"`
	Time       string `json:"time"`
	StartLabel string `json:"start_label"`
	EndLabel   string `json:"end_label"`
	IsBooked   bool   `json:"is_booked"`
	Price      int    `json:"price"`
}

// ListSports handles GET /. It returns all sports for the landing page.
func (h *PublicHandler) ListSports(c echo.Context) error {
	sports, err := h.Sports.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sports": sports})
}

// ListSlots handles GET /slots/:sport_id/?date=YYYY-MM-DD. It
// provisions the day's 24-slot calendar idempotently, then returns the
// slots with resolved prices and display labels. The date defaults to
// today; a malformed date is a 400. The response also carries the next
// seven selectable dates, mirroring the booking page's date picker.
func (h *PublicHandler) ListSlots(c echo.Context) error {
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

	today := time.Now().UTC()
	date := today.Format("2006-01-02")
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
	rules, err := h.Pricing.ActiveBySport(ctx, sportID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	views := make([]slotView, 0, len(slots))
	for _, s := range slots {
		start, end := utils.SlotLabels(s.Date, s.Time)
		views = append(views, slotView{
			ID:         s.ID,
			Time:       s.Time,
			StartLabel: start,
			EndLabel:   end,
			IsBooked:   s.IsBooked,
			Price:      h.Resolver.ResolvePrice(rules, s.Date, s.Time),
		})
	}

	dates := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		dates = append(dates, today.AddDate(0, 0, i).Format("2006-01-02"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sport":         sport,
		"selected_date": date,
		"slots":         views,
		"dates":         dates,
		"today":         today.Format("2006-01-02"),
		"current_hour":  today.Hour(),
	})
}

// Contact handles GET /contact/. It returns the facility's contact
// row or 404 when none has been configured.
func (h *PublicHandler) Contact(c echo.Context) error {
	contact, err := h.Contacts.First(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"contact": contact})
}
