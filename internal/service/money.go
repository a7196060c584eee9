package service

import "github.com/shopspring/decimal"

// round2 rounds to two decimal places, half away from zero. All monetary
// amounts leaving this package pass through it.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
