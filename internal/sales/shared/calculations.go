package shared

import "github.com/shopspring/decimal"

// LineTotal returns quantity * unitPrice computed in decimal so that
// fractional prices do not pick up binary rounding noise.
func LineTotal(quantity, unitPrice float64) float64 {
	total := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice))
	f, _ := total.Float64()
	return f
}

// SalesTotal sums the line totals of a customer's sales.
func SalesTotal(totals ...float64) float64 {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(decimal.NewFromFloat(t))
	}
	f, _ := sum.Float64()
	return f
}
