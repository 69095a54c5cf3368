package order

import "time"

type SizeQuantityRequest struct {
	Size  string `json:"size" validate:"required"`
	Count int64  `json:"count" validate:"min=0"`
}

type CreateOrderRequest struct {
	OrderNo       string                `json:"order_no" validate:"required"`
	CustomerName  string                `json:"customer_name" validate:"required"`
	CustomerPhone string                `json:"customer_phone"`
	FabricType    string                `json:"fabric_type" validate:"required"`
	Quantities    []SizeQuantityRequest `json:"quantities" validate:"required,min=1,dive"`
	UnitPrice     *string               `json:"unit_price"`
	AddOnCost     string                `json:"add_on_cost"`
	ShippingCost  *string               `json:"shipping_cost"`
	Discount      string                `json:"discount"`
	VATIncluded   bool                  `json:"vat_included"`
	Deposit       string                `json:"deposit"`
	Deadline      *time.Time            `json:"deadline"`
}

type UpdateOrderRequest struct {
	ID            string                `json:"-" validate:"required"`
	CustomerName  string                `json:"customer_name" validate:"required"`
	CustomerPhone string                `json:"customer_phone"`
	FabricType    string                `json:"fabric_type" validate:"required"`
	Quantities    []SizeQuantityRequest `json:"quantities" validate:"required,min=1,dive"`
	UnitPrice     *string               `json:"unit_price"`
	AddOnCost     string                `json:"add_on_cost"`
	ShippingCost  string                `json:"shipping_cost"`
	Discount      string                `json:"discount"`
	VATIncluded   bool                  `json:"vat_included"`
	Deposit       string                `json:"deposit"`
	Deadline      *time.Time            `json:"deadline"`
}

type UpdateStatusRequest struct {
	ID     string `json:"-" validate:"required"`
	Status string `json:"status" validate:"required,oneof=draft production urgent delivered"`
}

type DecideSlipRequest struct {
	ID          string `json:"-" validate:"required"`
	Installment string `json:"-" validate:"required,oneof=booking deposit balance"`
	Approved    bool   `json:"approved"`
	Note        string `json:"note" validate:"max=500"`
}

type GetManyOrderRequest struct {
	Page     int64  `validate:"min=1"`
	Size     int64  `validate:"min=1,max=100"`
	Severity string `validate:"omitempty,oneof=normal warning critical overdue"`
}
