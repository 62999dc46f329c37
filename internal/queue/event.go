// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published after a booking transaction commits.
// It carries enough information for downstream consumers to log, notify
// or feed analytics without querying the primary database. Publishing is
// best-effort and happens strictly after commit, so a broker outage can
// never roll a booking back.
type BookingConfirmedEvent struct {
	BookingID   string   `json:"booking_id"` // public UUID, not the DB key
	UserName    string   `json:"user_name"`
	Phone       string   `json:"phone"`
	SportName   string   `json:"sport"`
	Date        string   `json:"date"`
	SlotTimes   []string `json:"slots"`
	TotalAmount int      `json:"total_amount"`
	ConfirmedAt string   `json:"confirmed_at"`
}
