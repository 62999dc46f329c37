package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/turfbook/turf-booking/internal/model"
)

// PricingRuleRepo provides read access to the pricing_rules table.
// Rule selection itself is a pure function in the pricing package;
// this repository only fetches the active candidates for a sport.
type PricingRuleRepo struct {
	db *sql.DB
}

// NewPricingRuleRepo returns a new PricingRuleRepo bound to the given database.
func NewPricingRuleRepo(db *sql.DB) *PricingRuleRepo { return &PricingRuleRepo{db: db} }

// ActiveBySport returns all active rules for a sport. Inactive rules
// never participate in resolution. Ordering is not significant here;
// the resolver applies its own tie-break.
func (r *PricingRuleRepo) ActiveBySport(ctx context.Context, sportID uint64) ([]model.PricingRule, error) {
	const q = `SELECT id, sport_id, date, start_time, end_time, price, discount, active
	           FROM pricing_rules
	           WHERE sport_id = ? AND active = 1`
	rows, err := r.db.QueryContext(ctx, q, sportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rules := make([]model.PricingRule, 0)
	for rows.Next() {
		var rule model.PricingRule
		var d sql.NullTime
		var start, end sql.NullString
		if err := rows.Scan(&rule.ID, &rule.SportID, &d, &start, &end, &rule.Price, &rule.Discount, &rule.Active); err != nil {
			return nil, err
		}
		if d.Valid {
			s := d.Time.Format("2006-01-02")
			rule.Date = &s
		}
		if start.Valid {
			s := normalizeClock(start.String)
			rule.StartTime = &s
		}
		if end.Valid {
			s := normalizeClock(end.String)
			rule.EndTime = &s
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// normalizeClock coerces a TIME column value into canonical 15:04:05
// form. MySQL returns "18:00:00" already; the fallback covers values
// written without seconds by external tooling.
func normalizeClock(s string) string {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04:05")
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04:05")
	}
	return s
}
