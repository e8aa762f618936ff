// Package pricing computes order summaries shared by checkout and the backend.
package pricing

import "github.com/shopspring/decimal"

// Quote is the breakdown shown before and after an order is placed.
// Amounts are not rounded; rounding is left to presentation.
type Quote struct {
	ItemsTotal  decimal.Decimal `json:"itemsTotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// Rates holds the delivery fee and tax rate applied to an items total
type Rates struct {
	DeliveryFee decimal.Decimal
	TaxRate     decimal.Decimal
}

// DefaultRates matches the flat fee of 50 and 5% tax used at checkout
func DefaultRates() Rates {
	return Rates{
		DeliveryFee: decimal.NewFromInt(50),
		TaxRate:     decimal.RequireFromString("0.05"),
	}
}

// Quote builds the summary for itemsTotal. An empty order carries no
// delivery fee.
func (r Rates) Quote(itemsTotal decimal.Decimal) Quote {
	fee := r.DeliveryFee
	if itemsTotal.IsZero() {
		fee = decimal.Zero
	}
	tax := itemsTotal.Mul(r.TaxRate)
	return Quote{
		ItemsTotal:  itemsTotal,
		DeliveryFee: fee,
		Tax:         tax,
		Total:       itemsTotal.Add(fee).Add(tax),
	}
}

// LineTotal is unit price times quantity
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Round2 rounds to two decimal places for display
func Round2(d decimal.Decimal) string {
	return d.StringFixed(2)
}
