package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/turfbook/turf-booking/internal/model"
)

// BookingRepo provides CRUD operations for bookings and their slot
// links. A booking groups one or more slots reserved by a customer in
// a single confirm transaction. The booking_slots table carries a
// unique constraint on slot_id, so even a bug in the caller cannot
// link one slot to two bookings.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a new booking within the scope of an existing
// transaction. A fresh random UUID is generated for the public
// identifier; it is non-guessable and is the only id exposed in
// verification URLs. The generated primary key and public id are
// populated on the provided record. The caller must commit or roll
// back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	b.PublicID = uuid.NewString()
	const q = `INSERT INTO bookings (public_id, user_name, phone, total_amount) VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, b.PublicID, b.UserName, b.Phone, b.TotalAmount)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the row to populate the DB-generated timestamp.
	const sel = `SELECT created_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt)
}

// LinkSlotsBulkTx inserts the booking_slots rows tying each slot to
// the booking in a single statement, within the provided transaction.
// Passing an empty slice has no effect and returns nil.
func (r *BookingRepo) LinkSlotsBulkTx(ctx context.Context, tx *sql.Tx, bookingID uint64, slotIDs []uint64) error {
	if len(slotIDs) == 0 {
		return nil
	}
	query := `INSERT INTO booking_slots (booking_id, slot_id) VALUES `
	args := make([]interface{}, 0, len(slotIDs)*2)
	for i, sid := range slotIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, bookingID, sid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// BookingSlotLine is one reserved slot as presented on receipts and
// the verification page: which sport, which date, which hour.
type BookingSlotLine struct {
	SlotID    uint64 `json:"slot_id"`
	SportName string `json:"sport"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// BookingDetail is a booking joined with its reserved slots, ordered
// by date and time. It carries everything the receipt renderer and
// the verification endpoint need.
type BookingDetail struct {
	PublicID    string            `json:"booking_id"`
	UserName    string            `json:"user_name"`
	Phone       string            `json:"phone"`
	TotalAmount int               `json:"total_amount"`
	CreatedAt   time.Time         `json:"created_at"`
	Slots       []BookingSlotLine `json:"slots"`
}

// GetByPublicID looks a booking up by its public identifier. It is a
// side-effect-free read; unknown identifiers yield ErrBookingNotFound,
// never an internal error. Slots are returned ordered by date then
// time so receipts render deterministically.
func (r *BookingRepo) GetByPublicID(ctx context.Context, publicID string) (*BookingDetail, error) {
	const q = `SELECT id, public_id, user_name, phone, total_amount, created_at
	           FROM bookings WHERE public_id = ?`
	var det BookingDetail
	var bookingID uint64
	err := r.db.QueryRowContext(ctx, q, publicID).Scan(
		&bookingID, &det.PublicID, &det.UserName, &det.Phone, &det.TotalAmount, &det.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	det.Slots = []BookingSlotLine{}
	const slotQ = `SELECT s.id, sp.name, s.date, s.time
	               FROM booking_slots bs
	               JOIN slots s ON s.id = bs.slot_id
	               JOIN sports sp ON sp.id = s.sport_id
	               WHERE bs.booking_id = ?
	               ORDER BY s.date, s.time`
	rows, err := r.db.QueryContext(ctx, slotQ, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line BookingSlotLine
		var d time.Time
		if err := rows.Scan(&line.SlotID, &line.SportName, &d, &line.Time); err != nil {
			return nil, err
		}
		line.Date = d.Format("2006-01-02")
		det.Slots = append(det.Slots, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}

// ListRecent returns the most recent bookings for the staff dashboard,
// newest first, capped at limit.
func (r *BookingRepo) ListRecent(ctx context.Context, limit int) ([]model.Booking, error) {
	const q = `SELECT id, public_id, user_name, phone, total_amount, created_at
	           FROM bookings ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.PublicID, &b.UserName, &b.Phone, &b.TotalAmount, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
