package company

type UpdateConfigRequest struct {
	VATRate             string `json:"vat_rate" validate:"required"`
	DefaultShippingCost string `json:"default_shipping_cost" validate:"required"`
}
