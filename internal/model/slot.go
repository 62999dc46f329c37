package model

// Slot represents one reservable hour for a sport on a date, stored
// in the `slots` table. The (SportID, Date, Time) triple is unique;
// the database constraint is the authority for idempotent
// provisioning. A slot is created lazily the first time its day is
// viewed and is never deleted in normal operation. Only the confirm
// transaction and the staff toggle may mutate IsBooked.
//
// Date is the canonical `2006-01-02` form and Time the canonical
// `15:04:05` form. Times are fixed width so lexicographic comparison
// matches chronological order, which the pricing resolver relies on.
type Slot struct {
	ID       uint64 // slots.id
	SportID  uint64 // slots.sport_id
	Date     string // slots.date (2006-01-02)
	Time     string // slots.time (15:04:05)
	IsBooked bool   // slots.is_booked
}
