package pricing

import "github.com/shopspring/decimal"

// TotalsInput carries every figure the totals computation depends on. The
// VAT rate is a fraction (0.07, not 7) and travels with the order so that
// editing company settings never reprices existing orders.
type TotalsInput struct {
	TotalQty     int64
	UnitPrice    decimal.Decimal
	AddOnCost    decimal.Decimal
	ShippingCost decimal.Decimal
	Discount     decimal.Decimal
	VATIncluded  bool
	VATRate      decimal.Decimal
	Deposit      decimal.Decimal
}

type Totals struct {
	Subtotal    decimal.Decimal
	PreVATTotal decimal.Decimal
	VATAmount   decimal.Decimal
	GrandTotal  decimal.Decimal
	Balance     decimal.Decimal
}

// ComputeTotals derives subtotal, VAT, grand total and balance. GrandTotal
// is always the full amount the customer owes: when the price is quoted
// VAT-inclusive the VAT component is back-calculated out of it, otherwise
// VAT is added on top. Nothing is rounded here, display layers round at the
// very end. Balance may go negative, that signals a refund due and must not
// be clamped.
func ComputeTotals(in TotalsInput) Totals {
	subtotal := in.UnitPrice.Mul(decimal.NewFromInt(in.TotalQty))
	preVATTotal := subtotal.Add(in.AddOnCost).Add(in.ShippingCost).Sub(in.Discount)

	var vatAmount, grandTotal decimal.Decimal
	if in.VATIncluded {
		grandTotal = preVATTotal
		vatAmount = preVATTotal.Mul(in.VATRate).Div(decimal.NewFromInt(1).Add(in.VATRate))
	} else {
		vatAmount = preVATTotal.Mul(in.VATRate)
		grandTotal = preVATTotal.Add(vatAmount)
	}

	return Totals{
		Subtotal:    subtotal,
		PreVATTotal: preVATTotal,
		VATAmount:   vatAmount,
		GrandTotal:  grandTotal,
		Balance:     grandTotal.Sub(in.Deposit),
	}
}
