package model

// Sport represents a bookable sport (turf type) as stored in the
// `sports` table. Sports are immutable reference data managed by
// staff. Deleting a sport cascades to its slots, so deletion is
// only performed through administrative tooling.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique display name (e.g. "Football").
//  Description – optional descriptive text.
//  Price       – default per-hour price used when no pricing rule
//                matches and as a display hint on the sports list.
type Sport struct {
	ID          uint64 // sports.id
	Name        string // sports.name
	Description string // sports.description
	Price       int    // sports.price
}
