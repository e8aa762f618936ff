package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRates_Quote(t *testing.T) {
	rates := DefaultRates()

	tests := []struct {
		name       string
		itemsTotal string
		wantFee    string
		wantTax    string
		wantTotal  string
	}{
		{
			name:       "regular order",
			itemsTotal: "200",
			wantFee:    "50",
			wantTax:    "10",
			wantTotal:  "260",
		},
		{
			name:       "fractional prices are not rounded",
			itemsTotal: "38.97",
			wantFee:    "50",
			wantTax:    "1.9485",
			wantTotal:  "90.9185",
		},
		{
			name:       "empty order has no fee",
			itemsTotal: "0",
			wantFee:    "0",
			wantTax:    "0",
			wantTotal:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := rates.Quote(decimal.RequireFromString(tt.itemsTotal))

			if !q.DeliveryFee.Equal(decimal.RequireFromString(tt.wantFee)) {
				t.Errorf("fee = %s, want %s", q.DeliveryFee, tt.wantFee)
			}
			if !q.Tax.Equal(decimal.RequireFromString(tt.wantTax)) {
				t.Errorf("tax = %s, want %s", q.Tax, tt.wantTax)
			}
			if !q.Total.Equal(decimal.RequireFromString(tt.wantTotal)) {
				t.Errorf("total = %s, want %s", q.Total, tt.wantTotal)
			}
		})
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(decimal.RequireFromString("12.99"), 3)
	if !got.Equal(decimal.RequireFromString("38.97")) {
		t.Errorf("LineTotal = %s, want 38.97", got)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(decimal.RequireFromString("90.9185")); got != "90.92" {
		t.Errorf("Round2 = %s, want 90.92", got)
	}
	if got := Round2(decimal.NewFromInt(50)); got != "50.00" {
		t.Errorf("Round2 = %s, want 50.00", got)
	}
}
