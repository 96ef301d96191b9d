package pricing

import (
	"saif-gifts/cart"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the flat 10% applied at checkout.
var DefaultTaxRate = decimal.RequireFromString("0.10")

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals sums the line items without any intermediate rounding.
func ComputeTotals(items []cart.LineItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Rounded rounds each value to 2 decimal places on its own, so Total is the
// rounded unrounded sum and not the sum of the rounded parts.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(2),
		Tax:      t.Tax.Round(2),
		Total:    t.Total.Round(2),
	}
}

// ParseTaxRate falls back to DefaultTaxRate for blank, malformed or negative input.
func ParseTaxRate(s string) decimal.Decimal {
	if s == "" {
		return DefaultTaxRate
	}
	rate, err := decimal.NewFromString(s)
	if err != nil || rate.IsNegative() {
		return DefaultTaxRate
	}
	return rate
}
