package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/turfbook/turf-booking/internal/model"
	"github.com/turfbook/turf-booking/internal/pricing"
	"github.com/turfbook/turf-booking/internal/queue"
	"github.com/turfbook/turf-booking/internal/receipt"
	"github.com/turfbook/turf-booking/internal/repository"
	"github.com/turfbook/turf-booking/internal/utils"
)

// BookingHandler drives the booking flow: the details and payment
// summary steps, the atomic confirm transaction, and the public
// verification and receipt endpoints. The confirm transaction is the
// only code path that transitions slots into the booked state in bulk;
// everything else here is read-only.
type BookingHandler struct {
	Sports   *repository.SportRepo
	Slots    *repository.SlotRepo
	Pricing  *repository.PricingRuleRepo
	Bookings *repository.BookingRepo
	Resolver *pricing.Resolver
	Receipts receipt.Renderer
}

// NewBookingHandler constructs a BookingHandler. All dependencies must
// be non-nil.
func NewBookingHandler(sports *repository.SportRepo, slots *repository.SlotRepo, pricingRepo *repository.PricingRuleRepo, bookings *repository.BookingRepo, resolver *pricing.Resolver, receipts receipt.Renderer) *BookingHandler {
	if sports == nil || slots == nil || pricingRepo == nil || bookings == nil || resolver == nil || receipts == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Sports: sports, Slots: slots, Pricing: pricingRepo, Bookings: bookings, Resolver: resolver, Receipts: receipts}
}

// slotIDsFromRequest extracts the slots[] selection from a form or
// query post body, deduplicating while preserving order. Zero and
// unparseable values are dropped.
func slotIDsFromRequest(c echo.Context) []uint64 {
	if err := c.Request().ParseForm(); err != nil {
		return nil
	}
	raw := c.Request().Form["slots[]"]
	if len(raw) == 0 {
		raw = c.Request().Form["slots"]
	}
	ids := make([]uint64, 0, len(raw))
	seen := make(map[uint64]struct{})
	for _, v := range raw {
		id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// Details handles POST /booking/details/. It is the intermediate step
// between slot selection and payment: it validates that a non-empty
// selection was posted and echoes it back so the client can render the
// customer-details form. No state changes.
func (h *BookingHandler) Details(c echo.Context) error {
	slotIDs := slotIDsFromRequest(c)
	if len(slotIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no slots selected"})
	}
	return c.JSON(http.StatusOK, echo.Map{"slot_ids": slotIDs})
}

// pricedSlot is one selected slot on the payment summary with its
// resolved price.
type pricedSlot struct {
	ID         uint64 `json:"id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	StartLabel string `json:"start_label"`
	EndLabel   string `json:"end_label"`
	Price      int    `json:"price"`
}

// Payment handles POST /payment/. It prices the selected slots and
// returns the summary shown before confirmation. The read is
// lock-free; final prices are recomputed under lock at confirm time.
func (h *BookingHandler) Payment(c echo.Context) error {
	slotIDs := slotIDsFromRequest(c)
	userName := strings.TrimSpace(c.FormValue("user_name"))
	phone := strings.TrimSpace(c.FormValue("phone"))
	if len(slotIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no slots selected"})
	}
	if userName == "" || phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_name and phone are required"})
	}

	ctx := c.Request().Context()
	slots, err := h.Slots.GetByIDs(ctx, slotIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if len(slots) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "slots not found"})
	}

	sport, err := h.Sports.GetByID(ctx, slots[0].SportID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	priced, total, err := h.priceSlots(ctx, slots)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sport":     sport,
		"date":      slots[0].Date,
		"slots":     priced,
		"total":     total,
		"user_name": userName,
		"phone":     phone,
	})
}

// Confirm handles POST /confirm/. It runs the atomic reservation:
//
//  1. lock the requested slots filtered to is_booked = 0 (FOR UPDATE,
//     held until commit/abort, blocking concurrent confirmers),
//  2. verify the locked count equals the requested count — if any slot
//     is already booked or missing, abort with 409 and zero writes,
//  3. resolve prices post-lock and sum the total,
//  4. insert the booking with a fresh public UUID,
//  5. link every locked slot and mark it booked,
//  6. commit; only then is the booking visible.
//
// For any two concurrent confirms sharing a slot id, the row locks
// serialize them and the count check fails the loser. On success the
// response carries the booking, priced slots, total and the QR code;
// a booking.confirmed event is published best-effort after commit.
func (h *BookingHandler) Confirm(c echo.Context) error {
	slotIDs := slotIDsFromRequest(c)
	userName := strings.TrimSpace(c.FormValue("user_name"))
	phone := strings.TrimSpace(c.FormValue("phone"))
	if len(slotIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no slots selected"})
	}
	if userName == "" || phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_name and phone are required"})
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

	locked, err := h.Slots.LockUnbookedTx(ctx, tx, slotIDs)
	if err != nil {
		// Covers lock-wait timeouts as well: the transaction aborts
		// cleanly with no writes and the client must re-select.
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock slots"})
	}
	if len(locked) != len(slotIDs) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   repository.ErrSlotUnavailable.Error(),
			"message": "one or more slots already booked",
		})
	}

	priced, total, err := h.priceSlots(ctx, locked)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	booking := &model.Booking{UserName: userName, Phone: phone, TotalAmount: total}
	if err := h.Bookings.CreateTx(ctx, tx, booking); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	lockedIDs := make([]uint64, 0, len(locked))
	for _, s := range locked {
		lockedIDs = append(lockedIDs, s.ID)
	}
	if err := h.Bookings.LinkSlotsBulkTx(ctx, tx, booking.ID, lockedIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to link slots"})
	}
	if err := h.Slots.MarkBookedTx(ctx, tx, lockedIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update slot status"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.publishConfirmed(booking, locked)

	qrPNG, err := h.Receipts.QRPNG(booking.PublicID)
	if err != nil {
		// The booking is committed; a failed QR render must not turn
		// the response into an error.
		qrPNG = nil
	}
	resp := echo.Map{
		"booking_id": booking.PublicID,
		"user_name":  booking.UserName,
		"phone":      booking.Phone,
		"slots":      priced,
		"total":      total,
		"qr_payload": h.Receipts.QRPayload(booking.PublicID),
	}
	if qrPNG != nil {
		resp["qr_png_base64"] = base64.StdEncoding.EncodeToString(qrPNG)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Verify handles GET /verify/:public_id/. It is a side-effect-free
// lookup; unknown identifiers yield a plain 404.
func (h *BookingHandler) Verify(c echo.Context) error {
	det, err := h.lookup(c)
	if det == nil {
		return err
	}
	return c.JSON(http.StatusOK, det)
}

// Download handles GET /download/:public_id/. It streams the PDF
// receipt for a booking.
func (h *BookingHandler) Download(c echo.Context) error {
	det, err := h.lookup(c)
	if det == nil {
		return err
	}
	pdf, err := h.Receipts.PDF(det)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render receipt"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="booking-`+det.PublicID+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// QR handles GET /qr/:public_id/. It serves the verification QR as a
// PNG for clients that render it inline.
func (h *BookingHandler) QR(c echo.Context) error {
	det, err := h.lookup(c)
	if det == nil {
		return err
	}
	png, err := h.Receipts.QRPNG(det.PublicID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render qr"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// lookup resolves the :public_id path parameter to a booking detail.
// On failure it writes the error response and returns a nil detail;
// callers must return the accompanying error as-is.
func (h *BookingHandler) lookup(c echo.Context) (*repository.BookingDetail, error) {
	publicID := strings.TrimSpace(c.Param("public_id"))
	if publicID == "" {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	det, err := h.Bookings.GetByPublicID(c.Request().Context(), publicID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return det, nil
}

// priceSlots resolves the price of each slot against its sport's
// active rules and returns the priced views plus the total. Rule sets
// are fetched once per distinct sport.
func (h *BookingHandler) priceSlots(ctx context.Context, slots []model.Slot) ([]pricedSlot, int, error) {
	rulesBySport := make(map[uint64][]model.PricingRule)
	priced := make([]pricedSlot, 0, len(slots))
	total := 0
	for _, s := range slots {
		rules, ok := rulesBySport[s.SportID]
		if !ok {
			var err error
			rules, err = h.Pricing.ActiveBySport(ctx, s.SportID)
			if err != nil {
				return nil, 0, err
			}
			rulesBySport[s.SportID] = rules
		}
		price := h.Resolver.ResolvePrice(rules, s.Date, s.Time)
		start, end := utils.SlotLabels(s.Date, s.Time)
		priced = append(priced, pricedSlot{
			ID:         s.ID,
			Date:       s.Date,
			Time:       s.Time,
			StartLabel: start,
			EndLabel:   end,
			Price:      price,
		})
		total += price
	}
	return priced, total, nil
}

// publishConfirmed emits the post-commit booking.confirmed event.
// Failures are ignored: the event stream is an observability aid, not
// part of the booking contract.
func (h *BookingHandler) publishConfirmed(booking *model.Booking, slots []model.Slot) {
	ev := queue.BookingConfirmedEvent{
		BookingID:   booking.PublicID,
		UserName:    booking.UserName,
		Phone:       booking.Phone,
		TotalAmount: booking.TotalAmount,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if len(slots) > 0 {
		ev.Date = slots[0].Date
		if sport, err := h.Sports.GetByID(context.Background(), slots[0].SportID); err == nil {
			ev.SportName = sport.Name
		}
		for _, s := range slots {
			ev.SlotTimes = append(ev.SlotTimes, s.Time)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = queue.PublishBookingConfirmed(ctx, ev)
}
