package order

import "math"

// CentsHalfUp converts a currency amount to integer cents, rounding to two
// decimal places with halves going away from zero (0.005 → 0.01).
func CentsHalfUp(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
