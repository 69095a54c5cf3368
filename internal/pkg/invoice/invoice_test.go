package invoice

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stitchfactory/sf-order/internal/pkg/pricing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleSnapshot() OrderSnapshot {
	return OrderSnapshot{
		OrderNo:       "SF-1710072000000",
		CustomerName:  "Somchai T.",
		CustomerPhone: "081-234-5678",
		FabricType:    "cotton",
		UnitPrice:     d("120"),
		Quantities: []SizeQuantity{
			{Size: "M", Count: 40},
			{Size: "L", Count: 60},
			{Size: "XL", Count: 0},
		},
		AddOnCost:    d("500"),
		ShippingCost: d("200"),
		Discount:     d("300"),
		VATIncluded:  false,
		VATRate:      d("0.07"),
		Deposit:      d("5000"),
		IssuedAt:     time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func sampleTotals() pricing.Totals {
	return pricing.Totals{
		Subtotal:    d("12000"),
		PreVATTotal: d("12400"),
		VATAmount:   d("868"),
		GrandTotal:  d("13268"),
		Balance:     d("8268"),
	}
}

func TestBuildCarriesTotalsVerbatim(t *testing.T) {
	doc := Build(sampleSnapshot(), sampleTotals())

	checks := []struct {
		name string
		have string
		want string
	}{
		{"Subtotal", doc.Subtotal, "12000.00"},
		{"VATAmount", doc.VATAmount, "868.00"},
		{"GrandTotal", doc.GrandTotal, "13268.00"},
		{"Deposit", doc.Deposit, "5000.00"},
		{"Balance", doc.Balance, "8268.00"},
	}
	for _, c := range checks {
		if c.have != c.want {
			t.Errorf("%s = %s, want %s", c.name, c.have, c.want)
		}
	}

	if doc.VATRateLabel != "VAT 7%" {
		t.Errorf("VATRateLabel = %q, want %q", doc.VATRateLabel, "VAT 7%")
	}
	if doc.IssuedAt != "2025-03-10" {
		t.Errorf("IssuedAt = %q", doc.IssuedAt)
	}
}

func TestBuildLines(t *testing.T) {
	doc := Build(sampleSnapshot(), sampleTotals())

	// Two size lines (the zero-count XL is skipped) plus add-on, shipping
	// and discount adjustments.
	if len(doc.Lines) != 5 {
		t.Fatalf("len(Lines) = %d, want 5", len(doc.Lines))
	}

	first := doc.Lines[0]
	if first.Description != "cotton (size M)" || first.Quantity != 40 || first.Amount != "4800.00" {
		t.Errorf("unexpected first line: %+v", first)
	}

	discount := doc.Lines[4]
	if discount.Description != "Discount" || discount.Amount != "-300.00" {
		t.Errorf("discount must appear as a negative adjustment, got %+v", discount)
	}
}

func TestBuildSkipsZeroAdjustments(t *testing.T) {
	ord := sampleSnapshot()
	ord.AddOnCost = decimal.Zero
	ord.ShippingCost = decimal.Zero
	ord.Discount = decimal.Zero

	doc := Build(ord, sampleTotals())
	if len(doc.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(doc.Lines))
	}
}

func TestRenderText(t *testing.T) {
	text := Build(sampleSnapshot(), sampleTotals()).RenderText()

	for _, want := range []string{
		"INVOICE SF-1710072000000",
		"Somchai T. (081-234-5678)",
		"cotton (size L)",
		"Grand total",
		"13268.00",
		"8268.00",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered invoice is missing %q:\n%s", want, text)
		}
	}
}

func TestRenderTextVATIncludedLabel(t *testing.T) {
	ord := sampleSnapshot()
	ord.VATIncluded = true

	text := Build(ord, sampleTotals()).RenderText()
	if !strings.Contains(text, "VAT 7% (included)") {
		t.Errorf("rendered invoice should mark VAT as included:\n%s", text)
	}
}
