package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/yutaka-m/invoicer/internal/models"
)

// Subtotal sums quantity × unit price over all lines. Accumulation is
// decimal-exact and runs in cart order so rounding in tests is
// reproducible. Rounding itself happens only at display time.
func Subtotal(cart []models.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range cart {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// Tax computes subtotal × taxRatePercent / 100.
func Tax(subtotal decimal.Decimal, taxRatePercent float64) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromFloat(taxRatePercent)).Div(decimal.NewFromInt(100))
}

// Totals derives all amounts for the cart at the given tax rate.
func Totals(cart []models.LineItem, taxRatePercent float64) models.Totals {
	subtotal := Subtotal(cart)
	tax := Tax(subtotal, taxRatePercent)
	return models.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
