package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/turfbook/turf-booking/internal/model"
)

// SlotRepo provides data access to the slots table. A slot is one
// reservable hour for a sport on a date; the (sport_id, date, time)
// unique constraint is the authority for idempotent provisioning.
// Only two code paths mutate is_booked: the confirm transaction
// (MarkBookedTx) and the staff manual toggle (SetBookedTx). Both run
// under row-level locks acquired by the FOR UPDATE selects below and
// held until the enclosing transaction commits or rolls back.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning slot and booking repositories.
func (r *SlotRepo) DB() *sql.DB { return r.db }

// EnsureDay materializes the fixed calendar of 24 hourly slots for a
// sport and date. INSERT IGNORE makes the operation idempotent and
// safe under concurrent invocation for the same key: a duplicate-key
// conflict means another request already created the row, which is
// exactly the desired state, so it is swallowed rather than raised.
// Calling EnsureDay any number of times leaves exactly 24 rows.
func (r *SlotRepo) EnsureDay(ctx context.Context, sportID uint64, date string) error {
	query := `INSERT IGNORE INTO slots (sport_id, date, time, is_booked) VALUES `
	args := make([]interface{}, 0, 24*3)
	for hour := 0; hour < 24; hour++ {
		if hour > 0 {
			query += ","
		}
		query += "(?, ?, ?, 0)"
		args = append(args, sportID, date, fmt.Sprintf("%02d:00:00", hour))
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListBySportDate returns the full slot calendar for a sport and date
// ordered by time of day. Callers are expected to have invoked
// EnsureDay first; an unprovisioned day simply yields an empty slice.
// This read is lock-free and may race harmlessly with concurrent
// confirms: a stale is_booked flag is caught later under lock.
func (r *SlotRepo) ListBySportDate(ctx context.Context, sportID uint64, date string) ([]model.Slot, error) {
	const q = `SELECT id, sport_id, date, time, is_booked
	           FROM slots
	           WHERE sport_id = ? AND date = ?
	           ORDER BY time`
	rows, err := r.db.QueryContext(ctx, q, sportID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

// GetByIDs returns the slots matching the given identifiers without
// locking, ordered by date and time. Used by the pre-confirm summary
// steps where a stale view is acceptable. Missing identifiers are
// silently absent from the result.
func (r *SlotRepo) GetByIDs(ctx context.Context, ids []uint64) ([]model.Slot, error) {
	if len(ids) == 0 {
		return []model.Slot{}, nil
	}
	q := `SELECT id, sport_id, date, time, is_booked
	      FROM slots
	      WHERE id IN (` + placeholders(len(ids)) + `)
	      ORDER BY date, time`
	rows, err := r.db.QueryContext(ctx, q, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

// LockUnbookedTx loads the slots matching ids that are still unbooked,
// acquiring an exclusive row lock on each matching row. The lock is
// held until the caller's transaction commits or aborts, which blocks
// concurrent confirmers targeting the same rows. Rows that are already
// booked (or ids that do not exist) are filtered out here; the caller
// must compare the returned count against the requested count and
// abort with ErrSlotUnavailable on a mismatch. Skipping that check
// would silently book whatever subset is free, which breaks the
// at-most-one-booking-per-slot guarantee under races.
func (r *SlotRepo) LockUnbookedTx(ctx context.Context, tx *sql.Tx, ids []uint64) ([]model.Slot, error) {
	if len(ids) == 0 {
		return []model.Slot{}, nil
	}
	q := `SELECT id, sport_id, date, time, is_booked
	      FROM slots
	      WHERE id IN (` + placeholders(len(ids)) + `) AND is_booked = 0
	      ORDER BY date, time
	      FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

// MarkBookedTx flips is_booked to true for every given slot within the
// provided transaction. It must only be called on rows previously
// locked by LockUnbookedTx in the same transaction.
func (r *SlotRepo) MarkBookedTx(ctx context.Context, tx *sql.Tx, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	q := `UPDATE slots SET is_booked = 1 WHERE id IN (` + placeholders(len(ids)) + `)`
	_, err := tx.ExecContext(ctx, q, idArgs(ids)...)
	return err
}

// GetForUpdateTx loads a single slot under an exclusive row lock.
// Returns ErrSlotNotFound when the id does not exist. Used by the
// staff manual toggle, which bypasses the booking transaction by
// design but still must not race against it.
func (r *SlotRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Slot, error) {
	const q = `SELECT id, sport_id, date, time, is_booked
	           FROM slots WHERE id = ? FOR UPDATE`
	var s model.Slot
	var d time.Time
	err := tx.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.SportID, &d, &s.Time, &s.IsBooked)
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Date = d.Format("2006-01-02")
	return &s, nil
}

// SetBookedTx sets is_booked to the given value for one slot within
// the provided transaction.
func (r *SlotRepo) SetBookedTx(ctx context.Context, tx *sql.Tx, id uint64, booked bool) error {
	const q = `UPDATE slots SET is_booked = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, booked, id)
	return err
}

// scanSlots drains a result set of slot rows. DATE columns arrive as
// time.Time (parseTime=true in the DSN) and are normalized back to the
// canonical 2006-01-02 form; TIME columns arrive as strings already in
// canonical 15:04:05 form.
func scanSlots(rows *sql.Rows) ([]model.Slot, error) {
	slots := make([]model.Slot, 0)
	for rows.Next() {
		var s model.Slot
		var d time.Time
		if err := rows.Scan(&s.ID, &s.SportID, &d, &s.Time, &s.IsBooked); err != nil {
			return nil, err
		}
		s.Date = d.Format("2006-01-02")
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// placeholders returns n comma-separated "?" markers for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// idArgs widens a slice of ids into the []interface{} QueryContext expects.
func idArgs(ids []uint64) []interface{} {
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
