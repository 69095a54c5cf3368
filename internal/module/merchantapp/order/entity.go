package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stitchfactory/sf-order/internal/pkg/installment"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusProduction Status = "production"
	StatusUrgent     Status = "urgent"
	StatusDelivered  Status = "delivered"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusProduction, StatusUrgent, StatusDelivered:
		return true
	}
	return false
}

// SizeQuantity is one size label with its piece count. Labels are unique
// within an order and counts are never negative.
type SizeQuantity struct {
	Size  string `json:"size"`
	Count int64  `json:"count"`
}

// Order is the production order aggregate. It exclusively owns its slips,
// nothing outside this module and the customer payment module mutates them.
// All money figures are decimals and the VAT rate is the one in force when
// the order was created.
type Order struct {
	ID            string
	UUID          string
	OrderNo       string
	CustomerName  string
	CustomerPhone string
	Quantities    []SizeQuantity
	FabricType    string
	UnitPrice     decimal.Decimal
	ManualPrice   bool
	AddOnCost     decimal.Decimal
	ShippingCost  decimal.Decimal
	Discount      decimal.Decimal
	VATIncluded   bool
	VATRate       decimal.Decimal
	Subtotal      decimal.Decimal
	VATAmount     decimal.Decimal
	GrandTotal    decimal.Decimal
	Deposit       decimal.Decimal
	Balance       decimal.Decimal
	Deadline      *time.Time
	Status        Status
	Slips         map[installment.Kind]*installment.Slip
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TotalQty sums every size count.
func (o Order) TotalQty() int64 {
	var total int64
	for _, q := range o.Quantities {
		total += q.Count
	}
	return total
}
