package pricingrule

import "github.com/stitchfactory/sf-order/internal/pkg/pricing"

type RuleResponse struct {
	ID         int64  `json:"id"`
	FabricType string `json:"fabric_type"`
	MinQty     int64  `json:"min_qty"`
	MaxQty     int64  `json:"max_qty"`
	UnitPrice  string `json:"unit_price"`
}

func (r *RuleResponse) PopulateFromEntity(rule pricing.Rule) {
	r.ID = rule.ID
	r.FabricType = rule.FabricType
	r.MinQty = rule.MinQty
	r.MaxQty = rule.MaxQty
	r.UnitPrice = rule.UnitPrice.StringFixed(2)
}

type GetManyRuleResponse struct {
	Rules []RuleResponse `json:"rules"`
}
