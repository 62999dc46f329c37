// Package pricing resolves the price of a slot from the sport's active
// pricing rules. Resolution is a pure function over the rule slice the
// repository supplies, so it can be exercised without a database and
// cannot acquire locks or write anything.
package pricing

import "github.com/turfbook/turf-booking/internal/model"

// Resolver computes slot prices. Fallback is returned whenever no rule
// matches or a matching rule nets out to a non-positive price; it must
// be positive so callers always receive a usable amount.
type Resolver struct {
	Fallback int
}

// NewResolver returns a Resolver with the given fallback price.
func NewResolver(fallback int) *Resolver {
	return &Resolver{Fallback: fallback}
}

// ResolvePrice picks the single best-matching rule for a slot on the
// given date ("2006-01-02") at the given time ("15:04:05") and returns
// its final price. A rule matches when each of its scoping fields is
// either nil or satisfied:
//
//	date == nil      OR date == slot date
//	start == nil     OR start <= slot time
//	end == nil       OR end >= slot time
//
// Among matches a rule scoped to a concrete date beats a recurring
// (date-less) one; between dated matches the later date wins, which for
// the single-date predicate above only serves as a stable tie-break.
// The final price is max(price - discount, 0); zero or negative results
// fall through to the fallback, so the returned value is always
// positive. Time strings are fixed width, so ordinary string comparison
// is chronological comparison.
func (r *Resolver) ResolvePrice(rules []model.PricingRule, date, clock string) int {
	var best *model.PricingRule
	for i := range rules {
		rule := &rules[i]
		if !rule.Active {
			continue
		}
		if rule.Date != nil && *rule.Date != date {
			continue
		}
		if rule.StartTime != nil && *rule.StartTime > clock {
			continue
		}
		if rule.EndTime != nil && *rule.EndTime < clock {
			continue
		}
		if best == nil || preferRule(rule, best) {
			best = rule
		}
	}
	if best == nil {
		return r.Fallback
	}
	final := best.Price - best.Discount
	if final <= 0 {
		return r.Fallback
	}
	return final
}

// preferRule reports whether a should be chosen over b: dated rules
// sort before recurring ones, and later dates before earlier ones.
func preferRule(a, b *model.PricingRule) bool {
	switch {
	case a.Date != nil && b.Date == nil:
		return true
	case a.Date == nil && b.Date != nil:
		return false
	case a.Date != nil && b.Date != nil:
		return *a.Date > *b.Date
	default:
		return false
	}
}
