package model

// Contact holds the facility's contact details from the `contacts`
// table. The table is expected to hold a single row; the repository
// returns the first one.
type Contact struct {
	ID      uint64 // contacts.id
	Phone   string // contacts.phone
	Email   string // contacts.email
	Address string // contacts.address
}
