package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotalsVATExcluded(t *testing.T) {
	// 100 pcs at 120 with 500 add-on, 200 shipping, 300 discount and 7% VAT
	// on top: subtotal 12000, pre-VAT 12400, VAT 868, grand 13268. A 5000
	// deposit leaves 8268.
	got := ComputeTotals(TotalsInput{
		TotalQty:     100,
		UnitPrice:    d("120"),
		AddOnCost:    d("500"),
		ShippingCost: d("200"),
		Discount:     d("300"),
		VATIncluded:  false,
		VATRate:      d("0.07"),
		Deposit:      d("5000"),
	})

	checks := []struct {
		name string
		have decimal.Decimal
		want string
	}{
		{"Subtotal", got.Subtotal, "12000"},
		{"PreVATTotal", got.PreVATTotal, "12400"},
		{"VATAmount", got.VATAmount, "868"},
		{"GrandTotal", got.GrandTotal, "13268"},
		{"Balance", got.Balance, "8268"},
	}
	for _, c := range checks {
		if !c.have.Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.have, c.want)
		}
	}
}

func TestComputeTotalsVATIncluded(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		TotalQty:     100,
		UnitPrice:    d("120"),
		AddOnCost:    d("500"),
		ShippingCost: d("200"),
		Discount:     d("300"),
		VATIncluded:  true,
		VATRate:      d("0.07"),
		Deposit:      d("5000"),
	})

	// The quoted price already contains VAT, so the grand total is the
	// pre-VAT figure and the VAT component is carved out of it.
	if !got.GrandTotal.Equal(d("12400")) {
		t.Errorf("GrandTotal = %s, want 12400", got.GrandTotal)
	}
	if want := d("811.21"); !got.VATAmount.Round(2).Equal(want) {
		t.Errorf("VATAmount rounded = %s, want %s", got.VATAmount.Round(2), want)
	}
	if !got.Balance.Equal(d("7400")) {
		t.Errorf("Balance = %s, want 7400", got.Balance)
	}

	// Carving out and adding back must reproduce the grand total.
	if sum := got.VATAmount.Add(got.GrandTotal.Sub(got.VATAmount)); !sum.Equal(got.GrandTotal) {
		t.Errorf("VAT decomposition does not round-trip: %s", sum)
	}
}

func TestComputeTotalsZeroVATRate(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		TotalQty:  10,
		UnitPrice: d("100"),
		VATRate:   d("0"),
	})

	if !got.VATAmount.IsZero() {
		t.Errorf("VATAmount = %s, want 0", got.VATAmount)
	}
	if !got.GrandTotal.Equal(d("1000")) {
		t.Errorf("GrandTotal = %s, want 1000", got.GrandTotal)
	}
}

func TestComputeTotalsNegativeBalance(t *testing.T) {
	// A deposit above the grand total signals a refund due and must not be
	// clamped to zero.
	got := ComputeTotals(TotalsInput{
		TotalQty:  10,
		UnitPrice: d("100"),
		VATRate:   d("0"),
		Deposit:   d("1500"),
	})

	if !got.Balance.Equal(d("-500")) {
		t.Errorf("Balance = %s, want -500", got.Balance)
	}
}

func TestComputeTotalsDiscountExceedsSubtotal(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		TotalQty:  1,
		UnitPrice: d("100"),
		Discount:  d("250"),
		VATRate:   d("0.07"),
	})

	if !got.PreVATTotal.Equal(d("-150")) {
		t.Errorf("PreVATTotal = %s, want -150", got.PreVATTotal)
	}
	if !got.GrandTotal.Equal(d("-160.5")) {
		t.Errorf("GrandTotal = %s, want -160.5", got.GrandTotal)
	}
}
