package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func rule(fabric string, min, max int64, price string) Rule {
	return Rule{FabricType: fabric, MinQty: min, MaxQty: max, UnitPrice: decimal.RequireFromString(price)}
}

func TestResolveUnitPrice(t *testing.T) {
	rules := []Rule{
		rule("cotton", 1, 49, "150"),
		rule("cotton", 50, 99, "130"),
		rule("cotton", 100, 499, "120"),
		rule("silk", 1, 99, "300"),
	}

	tests := []struct {
		name      string
		fabric    string
		qty       int64
		wantPrice string
		wantOK    bool
	}{
		{name: "first tier lower bound", fabric: "cotton", qty: 1, wantPrice: "150", wantOK: true},
		{name: "first tier upper bound", fabric: "cotton", qty: 49, wantPrice: "150", wantOK: true},
		{name: "second tier lower bound", fabric: "cotton", qty: 50, wantPrice: "130", wantOK: true},
		{name: "third tier", fabric: "cotton", qty: 100, wantPrice: "120", wantOK: true},
		{name: "other fabric", fabric: "silk", qty: 50, wantPrice: "300", wantOK: true},
		{name: "quantity above every tier", fabric: "cotton", qty: 500, wantOK: false},
		{name: "unknown fabric", fabric: "linen", qty: 10, wantOK: false},
		{name: "zero quantity", fabric: "cotton", qty: 0, wantOK: false},
		{name: "negative quantity", fabric: "cotton", qty: -5, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok := ResolveUnitPrice(tt.fabric, tt.qty, rules)
			if ok != tt.wantOK {
				t.Fatalf("ResolveUnitPrice() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if want := decimal.RequireFromString(tt.wantPrice); !price.Equal(want) {
				t.Errorf("ResolveUnitPrice() = %s, want %s", price, want)
			}
		})
	}
}

func TestResolveUnitPriceOverlapTieBreak(t *testing.T) {
	// A legacy rule set may still contain overlaps, resolution must stay
	// deterministic regardless of slice order.
	rules := []Rule{
		rule("cotton", 1, 1000, "140"),
		rule("cotton", 40, 60, "125"),
	}

	price, ok := ResolveUnitPrice("cotton", 50, rules)
	if !ok {
		t.Fatal("ResolveUnitPrice() ok = false, want true")
	}
	if want := decimal.RequireFromString("125"); !price.Equal(want) {
		t.Errorf("narrowest range should win, got %s, want %s", price, want)
	}

	reversed := []Rule{rules[1], rules[0]}
	price2, _ := ResolveUnitPrice("cotton", 50, reversed)
	if !price.Equal(price2) {
		t.Errorf("resolution depends on rule order: %s vs %s", price, price2)
	}
}

func TestResolveUnitPriceEqualWidthTieBreak(t *testing.T) {
	rules := []Rule{
		rule("cotton", 40, 60, "100"),
		rule("cotton", 50, 70, "110"),
	}

	price, ok := ResolveUnitPrice("cotton", 55, rules)
	if !ok {
		t.Fatal("ResolveUnitPrice() ok = false, want true")
	}
	if want := decimal.RequireFromString("100"); !price.Equal(want) {
		t.Errorf("lower MinQty should win the tie, got %s, want %s", price, want)
	}
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name    string
		rules   []Rule
		wantErr bool
	}{
		{
			name: "disjoint ranges",
			rules: []Rule{
				rule("cotton", 1, 49, "150"),
				rule("cotton", 50, 99, "130"),
				rule("silk", 1, 99, "300"),
			},
		},
		{
			name: "touching bounds overlap",
			rules: []Rule{
				rule("cotton", 1, 50, "150"),
				rule("cotton", 50, 99, "130"),
			},
			wantErr: true,
		},
		{
			name: "containment overlap",
			rules: []Rule{
				rule("cotton", 1, 1000, "150"),
				rule("cotton", 40, 60, "130"),
			},
			wantErr: true,
		},
		{
			name: "same ranges on different fabrics",
			rules: []Rule{
				rule("cotton", 1, 99, "150"),
				rule("silk", 1, 99, "300"),
			},
		},
		{
			name:    "inverted range",
			rules:   []Rule{rule("cotton", 50, 10, "150")},
			wantErr: true,
		},
		{
			name:    "negative min",
			rules:   []Rule{rule("cotton", -1, 10, "150")},
			wantErr: true,
		},
		{
			name:    "negative unit price",
			rules:   []Rule{rule("cotton", 1, 10, "-150")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRules(tt.rules)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRules() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
