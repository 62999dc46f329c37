package model

import "time"

// Booking represents a confirmed reservation of one or more slots,
// stored in the `bookings` table. PublicID is a random UUID used in
// verification URLs and QR payloads; it is the only identifier ever
// exposed outside the service. Bookings are immutable after creation
// and are created exclusively by the confirm transaction.
//
// Fields:
//  ID          – primary key identifier.
//  PublicID    – opaque UUID string for /verify and /download URLs.
//  UserName    – customer name as entered at booking time.
//  Phone       – customer phone number.
//  TotalAmount – total price charged across all linked slots.
//  CreatedAt   – creation timestamp (UTC).
type Booking struct {
	ID          uint64    // bookings.id
	PublicID    string    // bookings.public_id
	UserName    string    // bookings.user_name
	Phone       string    // bookings.phone
	TotalAmount int       // bookings.total_amount
	CreatedAt   time.Time // bookings.created_at
}
