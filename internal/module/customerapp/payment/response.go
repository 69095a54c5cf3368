package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stitchfactory/sf-order/internal/pkg/installment"
)

type InstallmentResponse struct {
	Installment  string `json:"installment"`
	ReviewState  string `json:"review_state"`
	Note         string `json:"note,omitempty"`
	ThumbnailRef string `json:"thumbnail_ref,omitempty"`
	AmountDue    string `json:"amount_due"`
	Eligible     bool   `json:"eligible"`
}

// PaymentPageResponse is everything the unauthenticated payment page shows.
// It never carries the internal order id or another customer's data.
type PaymentPageResponse struct {
	UUID         string                `json:"uuid"`
	OrderNo      string                `json:"order_no"`
	CustomerName string                `json:"customer_name"`
	FabricType   string                `json:"fabric_type"`
	Quantities   []SizeQuantity        `json:"quantities"`
	VATIncluded  bool                  `json:"vat_included"`
	Subtotal     string                `json:"subtotal"`
	VATAmount    string                `json:"vat_amount"`
	GrandTotal   string                `json:"grand_total"`
	Deposit      string                `json:"deposit"`
	Balance      string                `json:"balance"`
	Status       string                `json:"status"`
	Installments []InstallmentResponse `json:"installments"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// amountDue exposes what the customer still has to transfer at each stage.
// Booking is a reservation proof without a derived amount.
func amountDue(o Order, kind installment.Kind) decimal.Decimal {
	switch kind {
	case installment.KindDeposit:
		return o.Deposit
	case installment.KindBalance:
		return o.Balance
	}
	return decimal.Decimal{}
}

func (r *PaymentPageResponse) PopulateFromEntity(o Order) {
	r.UUID = o.UUID
	r.OrderNo = o.OrderNo
	r.CustomerName = o.CustomerName
	r.FabricType = o.FabricType
	r.Quantities = o.Quantities
	r.VATIncluded = o.VATIncluded
	r.Subtotal = o.Subtotal.StringFixed(2)
	r.VATAmount = o.VATAmount.StringFixed(2)
	r.GrandTotal = o.GrandTotal.StringFixed(2)
	r.Deposit = o.Deposit.StringFixed(2)
	r.Balance = o.Balance.StringFixed(2)
	r.Status = o.Status
	r.UpdatedAt = o.UpdatedAt

	r.Installments = make([]InstallmentResponse, 0, len(installment.Kinds))
	for _, kind := range installment.Kinds {
		s, ok := o.Slips[kind]
		if !ok {
			continue
		}
		r.Installments = append(r.Installments, InstallmentResponse{
			Installment:  string(s.Kind),
			ReviewState:  string(s.ReviewState),
			Note:         s.Note,
			ThumbnailRef: s.ThumbnailRef,
			AmountDue:    amountDue(o, kind).StringFixed(2),
			Eligible:     installment.Eligible(o.Slips, kind),
		})
	}
}

type SubmitSlipResponse struct {
	Installment string `json:"installment"`
	ReviewState string `json:"review_state"`
}
