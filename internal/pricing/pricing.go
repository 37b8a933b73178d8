// Package pricing holds the pure money arithmetic of a sale: subtotal, tax,
// total and change. Values stay at full precision; Round is applied only
// when a value is shown to a person (receipts, exports, reports).
package pricing

import "github.com/shopspring/decimal"

// Line is one priced cart or sale line.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals is the priced result for a set of lines at one tax rate.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal is Σ quantity × unit price.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Tax is subtotal × ratePercent / 100. The shift keeps the result exact.
func Tax(subtotal, ratePercent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(ratePercent).Shift(-2)
}

// Calculate prices lines at ratePercent.
func Calculate(lines []Line, ratePercent decimal.Decimal) Totals {
	subtotal := Subtotal(lines)
	tax := Tax(subtotal, ratePercent)
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// Change is max(0, tendered - total). Whether tendered covers total is decided
// by the caller before this is used.
func Change(tendered, total decimal.Decimal) decimal.Decimal {
	change := tendered.Sub(total)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

// Round rounds to currency precision (2 places, half away from zero).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders d at currency precision, e.g. "22.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Rounded returns t with every field rounded for display.
func (t Totals) Rounded() Totals {
	return Totals{Subtotal: Round(t.Subtotal), Tax: Round(t.Tax), Total: Round(t.Total)}
}

// Equal compares two totals exactly.
func (t Totals) Equal(o Totals) bool {
	return t.Subtotal.Equal(o.Subtotal) && t.Tax.Equal(o.Tax) && t.Total.Equal(o.Total)
}
