package company

import "time"

type ConfigResponse struct {
	VATRate             string    `json:"vat_rate"`
	DefaultShippingCost string    `json:"default_shipping_cost"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (r *ConfigResponse) PopulateFromEntity(cfg Config) {
	r.VATRate = cfg.VATRate.String()
	r.DefaultShippingCost = cfg.DefaultShippingCost.StringFixed(2)
	r.UpdatedAt = cfg.UpdatedAt
}
