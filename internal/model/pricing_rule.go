package model

// PricingRule represents a row in the `pricing_rules` table. A rule
// scopes a price to a sport and optionally to a single date and/or a
// time range. Nil pointer fields act as wildcards: a nil Date means
// the rule applies every day, nil StartTime means from the beginning
// of the day, nil EndTime until the end of it. Several rules may
// match the same slot; resolution picks exactly one (dated rules win
// over recurring ones).
//
// Date uses the canonical `2006-01-02` form; StartTime and EndTime
// the canonical `15:04:05` form.
type PricingRule struct {
	ID        uint64  // pricing_rules.id
	SportID   uint64  // pricing_rules.sport_id
	Date      *string // pricing_rules.date (nullable)
	StartTime *string // pricing_rules.start_time (nullable)
	EndTime   *string // pricing_rules.end_time (nullable)
	Price     int     // pricing_rules.price (base price, positive)
	Discount  int     // pricing_rules.discount (flat amount, non-negative)
	Active    bool    // pricing_rules.active
}
