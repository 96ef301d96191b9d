package pricing

import (
	"testing"

	"saif-gifts/cart"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals_Empty(t *testing.T) {
	got := ComputeTotals(nil, DefaultTaxRate)

	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Total.IsZero())
}

func TestComputeTotals_SingleLine(t *testing.T) {
	items := []cart.LineItem{{ProductID: "A", UnitPrice: dec("999"), Quantity: 2}}

	got := ComputeTotals(items, dec("0.10"))

	assert.True(t, dec("1998").Equal(got.Subtotal), got.Subtotal.String())
	assert.True(t, dec("199.8").Equal(got.Tax), got.Tax.String())
	assert.True(t, dec("2197.8").Equal(got.Total), got.Total.String())
}

func TestComputeTotals_MixedCart(t *testing.T) {
	items := []cart.LineItem{
		{ProductID: "A", UnitPrice: dec("500"), Quantity: 3},
		{ProductID: "B", UnitPrice: dec("250"), Quantity: 1},
	}

	got := ComputeTotals(items, DefaultTaxRate)

	assert.True(t, dec("1750").Equal(got.Subtotal))
	assert.True(t, dec("175").Equal(got.Tax))
	assert.True(t, dec("1925").Equal(got.Total))
}

func TestRounded_UsesUnroundedIntermediates(t *testing.T) {
	// 3 × 0.335 = 1.005; per-line rounding would drift.
	items := []cart.LineItem{
		{ProductID: "A", UnitPrice: dec("0.335"), Quantity: 1},
		{ProductID: "B", UnitPrice: dec("0.335"), Quantity: 1},
		{ProductID: "C", UnitPrice: dec("0.335"), Quantity: 1},
	}

	got := ComputeTotals(items, DefaultTaxRate).Rounded()

	assert.Equal(t, "1.01", got.Subtotal.StringFixed(2))
	assert.Equal(t, "0.10", got.Tax.StringFixed(2))
	assert.Equal(t, "1.11", got.Total.StringFixed(2))
}

func TestParseTaxRate(t *testing.T) {
	assert.True(t, DefaultTaxRate.Equal(ParseTaxRate("")))
	assert.True(t, DefaultTaxRate.Equal(ParseTaxRate("abc")))
	assert.True(t, DefaultTaxRate.Equal(ParseTaxRate("-0.2")))
	assert.True(t, dec("0.18").Equal(ParseTaxRate("0.18")))
}
