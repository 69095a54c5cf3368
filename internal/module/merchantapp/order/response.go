package order

import (
	"time"

	"github.com/stitchfactory/sf-order/internal/pkg/installment"
	"github.com/stitchfactory/sf-order/internal/pkg/urgency"
)

type SlipResponse struct {
	Installment  string    `json:"installment"`
	ImageRef     string    `json:"image_ref,omitempty"`
	ThumbnailRef string    `json:"thumbnail_ref,omitempty"`
	ReviewState  string    `json:"review_state"`
	Note         string    `json:"note,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type OrderResponse struct {
	ID            string         `json:"id"`
	UUID          string         `json:"uuid"`
	OrderNo       string         `json:"order_no"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone,omitempty"`
	FabricType    string         `json:"fabric_type"`
	Quantities    []SizeQuantity `json:"quantities"`
	TotalQty      int64          `json:"total_qty"`
	UnitPrice     string         `json:"unit_price"`
	AddOnCost     string         `json:"add_on_cost"`
	ShippingCost  string         `json:"shipping_cost"`
	Discount      string         `json:"discount"`
	VATIncluded   bool           `json:"vat_included"`
	VATRate       string         `json:"vat_rate"`
	Subtotal      string         `json:"subtotal"`
	VATAmount     string         `json:"vat_amount"`
	GrandTotal    string         `json:"grand_total"`
	Deposit       string         `json:"deposit"`
	Balance       string         `json:"balance"`
	Deadline      *time.Time     `json:"deadline,omitempty"`
	Severity      string         `json:"severity"`
	Status        string         `json:"status"`
	Slips         []SlipResponse `json:"slips"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (r *OrderResponse) PopulateFromEntity(o Order, now time.Time) {
	r.ID = o.ID
	r.UUID = o.UUID
	r.OrderNo = o.OrderNo
	r.CustomerName = o.CustomerName
	r.CustomerPhone = o.CustomerPhone
	r.FabricType = o.FabricType
	r.Quantities = o.Quantities
	r.TotalQty = o.TotalQty()
	r.UnitPrice = o.UnitPrice.StringFixed(2)
	r.AddOnCost = o.AddOnCost.StringFixed(2)
	r.ShippingCost = o.ShippingCost.StringFixed(2)
	r.Discount = o.Discount.StringFixed(2)
	r.VATIncluded = o.VATIncluded
	r.VATRate = o.VATRate.String()
	r.Subtotal = o.Subtotal.StringFixed(2)
	r.VATAmount = o.VATAmount.StringFixed(2)
	r.GrandTotal = o.GrandTotal.StringFixed(2)
	r.Deposit = o.Deposit.StringFixed(2)
	r.Balance = o.Balance.StringFixed(2)
	r.Deadline = o.Deadline
	r.Severity = string(urgency.Classify(o.Deadline, now))
	r.Status = string(o.Status)
	r.CreatedAt = o.CreatedAt
	r.UpdatedAt = o.UpdatedAt

	r.Slips = make([]SlipResponse, 0, len(installment.Kinds))
	for _, kind := range installment.Kinds {
		s, ok := o.Slips[kind]
		if !ok {
			continue
		}
		r.Slips = append(r.Slips, SlipResponse{
			Installment:  string(s.Kind),
			ImageRef:     s.ImageRef,
			ThumbnailRef: s.ThumbnailRef,
			ReviewState:  string(s.ReviewState),
			Note:         s.Note,
			UpdatedAt:    s.UpdatedAt,
		})
	}
}

type GetManyOrderResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type ListMeta struct {
	Page  int64 `json:"page"`
	Size  int64 `json:"size"`
	Total int64 `json:"total"`
}

type DecideSlipResponse struct {
	Installment string `json:"installment"`
	ReviewState string `json:"review_state"`
}
