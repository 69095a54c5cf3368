// Package pricing holds the quantity-tiered price resolution and the
// VAT-aware totals arithmetic. Everything here is a pure function over
// validated input, callers reject malformed numbers at the boundary.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rule maps an inclusive quantity range to a unit price for one fabric type.
type Rule struct {
	ID         int64
	FabricType string
	MinQty     int64
	MaxQty     int64
	UnitPrice  decimal.Decimal
}

// ResolveUnitPrice returns the unit price of the matching tier for the given
// fabric and quantity. The second return value reports whether any tier
// matched; on false the caller must keep whatever price it already has, the
// resolver is advisory only and a manual override always wins.
//
// When ranges overlap the narrowest range wins, ties broken by the lower
// MinQty, so resolution never depends on the stored order of the rules.
func ResolveUnitPrice(fabricType string, totalQty int64, rules []Rule) (decimal.Decimal, bool) {
	if totalQty <= 0 {
		return decimal.Decimal{}, false
	}

	var best *Rule
	for i := range rules {
		r := &rules[i]
		if r.FabricType != fabricType {
			continue
		}
		if totalQty < r.MinQty || totalQty > r.MaxQty {
			continue
		}

		if best == nil {
			best = r
			continue
		}

		width, bestWidth := r.MaxQty-r.MinQty, best.MaxQty-best.MinQty
		if width < bestWidth || (width == bestWidth && r.MinQty < best.MinQty) {
			best = r
		}
	}

	if best == nil {
		return decimal.Decimal{}, false
	}

	return best.UnitPrice, true
}

// ValidateRules rejects a rule set whose ranges overlap within a fabric
// type, which would otherwise make resolution ambiguous.
func ValidateRules(rules []Rule) error {
	for i := range rules {
		a := rules[i]
		if a.MinQty < 0 || a.MaxQty < a.MinQty {
			return fmt.Errorf("rule for fabric '%s' has an invalid range [%d, %d]", a.FabricType, a.MinQty, a.MaxQty)
		}
		if a.UnitPrice.IsNegative() {
			return fmt.Errorf("rule for fabric '%s' has a negative unit price", a.FabricType)
		}

		for j := i + 1; j < len(rules); j++ {
			b := rules[j]
			if a.FabricType != b.FabricType {
				continue
			}
			if a.MinQty <= b.MaxQty && b.MinQty <= a.MaxQty {
				return fmt.Errorf("fabric '%s' has overlapping ranges [%d, %d] and [%d, %d]", a.FabricType, a.MinQty, a.MaxQty, b.MinQty, b.MaxQty)
			}
		}
	}

	return nil
}
