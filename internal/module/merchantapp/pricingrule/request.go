package pricingrule

type CreateRuleRequest struct {
	FabricType string `json:"fabric_type" validate:"required"`
	MinQty     int64  `json:"min_qty" validate:"min=0"`
	MaxQty     int64  `json:"max_qty" validate:"gtefield=MinQty"`
	UnitPrice  string `json:"unit_price" validate:"required"`
}
