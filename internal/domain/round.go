package domain

import "github.com/shopspring/decimal"

// Round rounds v half away from zero to the given number of decimal places.
// Rounding goes through decimal so that values such as 2.675 round the way
// they are written rather than the way they are stored.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Round2 rounds a currency amount to paise/cents.
func Round2(v float64) float64 {
	return Round(v, 2)
}
