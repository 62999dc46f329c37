// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios. For example,
// ErrSlotUnavailable indicates that a confirm attempt overlapped an already
// booked slot and the caller must re-select, while ErrBookingNotFound maps
// to a plain 404 without leaking internal detail.
package repository

import "errors"

// ErrSportNotFound is returned when a referenced sport does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrSportNotFound = errors.New("sport not found")

// ErrSlotNotFound is returned when a referenced slot does not exist.
var ErrSlotNotFound = errors.New("slot not found")

// ErrBookingNotFound is returned when no booking matches a public
// identifier. Unknown identifiers are an expected condition on the
// verification endpoint and must never surface as a server error.
var ErrBookingNotFound = errors.New("booking not found")

// ErrSlotUnavailable is returned by the confirm transaction when one or
// more requested slots are already booked or do not exist. The transaction
// performs no writes in that case; callers must re-fetch availability and
// let the user re-select rather than retrying automatically.
var ErrSlotUnavailable = errors.New("slot unavailable")

// ErrContactNotFound is returned when the contacts table holds no row.
var ErrContactNotFound = errors.New("contact not found")

// ErrInvalidCredentials is returned when a staff login fails, either
// because the username is unknown, the account is inactive or the
// password does not match. The cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUsernameExists is returned when creating a staff account with a
// username that is already taken.
var ErrUsernameExists = errors.New("username already exists")
