// Package invoice projects a frozen order and its already-computed totals
// into a printable document. It never recomputes VAT or totals, a mismatch
// between the document and the live calculator is a caller bug.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stitchfactory/sf-order/internal/pkg/pricing"
)

// OrderSnapshot is the subset of an order the document needs, frozen by the
// caller at render time.
type OrderSnapshot struct {
	OrderNo       string
	CustomerName  string
	CustomerPhone string
	FabricType    string
	UnitPrice     decimal.Decimal
	Quantities    []SizeQuantity
	AddOnCost     decimal.Decimal
	ShippingCost  decimal.Decimal
	Discount      decimal.Decimal
	VATIncluded   bool
	VATRate       decimal.Decimal
	Deposit       decimal.Decimal
	IssuedAt      time.Time
}

type SizeQuantity struct {
	Size  string
	Count int64
}

type Line struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

type Document struct {
	OrderNo       string `json:"order_no"`
	IssuedAt      string `json:"issued_at"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	VATIncluded   bool   `json:"vat_included"`
	VATRateLabel  string `json:"vat_rate_label"`
	Lines         []Line `json:"lines"`
	Subtotal      string `json:"subtotal"`
	VATAmount     string `json:"vat_amount"`
	GrandTotal    string `json:"grand_total"`
	Deposit       string `json:"deposit"`
	Balance       string `json:"balance"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Build assembles the document: one line per size with a non-zero count,
// then the add-on, shipping and discount adjustments, then the four
// calculator outputs verbatim. Rounding happens here and only here, at the
// final display.
func Build(ord OrderSnapshot, t pricing.Totals) Document {
	doc := Document{
		OrderNo:       ord.OrderNo,
		IssuedAt:      ord.IssuedAt.Format("2006-01-02"),
		CustomerName:  ord.CustomerName,
		CustomerPhone: ord.CustomerPhone,
		VATIncluded:   ord.VATIncluded,
		VATRateLabel:  fmt.Sprintf("VAT %s%%", ord.VATRate.Mul(decimal.NewFromInt(100)).String()),
		Subtotal:      money(t.Subtotal),
		VATAmount:     money(t.VATAmount),
		GrandTotal:    money(t.GrandTotal),
		Deposit:       money(ord.Deposit),
		Balance:       money(t.Balance),
	}

	for _, q := range ord.Quantities {
		if q.Count == 0 {
			continue
		}
		amount := ord.UnitPrice.Mul(decimal.NewFromInt(q.Count))
		doc.Lines = append(doc.Lines, Line{
			Description: fmt.Sprintf("%s (size %s)", ord.FabricType, q.Size),
			Quantity:    q.Count,
			UnitPrice:   money(ord.UnitPrice),
			Amount:      money(amount),
		})
	}

	if !ord.AddOnCost.IsZero() {
		doc.Lines = append(doc.Lines, Line{Description: "Add-on", Quantity: 1, UnitPrice: money(ord.AddOnCost), Amount: money(ord.AddOnCost)})
	}
	if !ord.ShippingCost.IsZero() {
		doc.Lines = append(doc.Lines, Line{Description: "Shipping", Quantity: 1, UnitPrice: money(ord.ShippingCost), Amount: money(ord.ShippingCost)})
	}
	if !ord.Discount.IsZero() {
		doc.Lines = append(doc.Lines, Line{Description: "Discount", Quantity: 1, UnitPrice: money(ord.Discount.Neg()), Amount: money(ord.Discount.Neg())})
	}

	return doc
}

// RenderText writes the document as a plain text block for printing.
func (d Document) RenderText() string {
	var b strings.Builder

	fmt.Fprintf(&b, "INVOICE %s\n", d.OrderNo)
	fmt.Fprintf(&b, "Date: %s\n", d.IssuedAt)
	fmt.Fprintf(&b, "Customer: %s", d.CustomerName)
	if d.CustomerPhone != "" {
		fmt.Fprintf(&b, " (%s)", d.CustomerPhone)
	}
	b.WriteString("\n\n")

	for _, line := range d.Lines {
		fmt.Fprintf(&b, "%-40s %5d x %12s = %14s\n", line.Description, line.Quantity, line.UnitPrice, line.Amount)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%-20s %14s\n", "Subtotal", d.Subtotal)
	vatLabel := d.VATRateLabel
	if d.VATIncluded {
		vatLabel += " (included)"
	}
	fmt.Fprintf(&b, "%-20s %14s\n", vatLabel, d.VATAmount)
	fmt.Fprintf(&b, "%-20s %14s\n", "Grand total", d.GrandTotal)
	fmt.Fprintf(&b, "%-20s %14s\n", "Deposit", d.Deposit)
	fmt.Fprintf(&b, "%-20s %14s\n", "Balance", d.Balance)

	return b.String()
}
