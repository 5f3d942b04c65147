package pricing

import "math"

// Round rounds x half away from zero at the given number of decimal places.
// Non-finite values collapse to 0 so a single bad division can never poison
// a summation downstream.
func Round(x float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	x = Sanitize(x)
	pow := math.Pow(10, float64(precision))
	return math.Round(x*pow) / pow
}

// Sanitize coerces NaN and infinities to 0.
func Sanitize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// SafeDiv divides a by b, returning 0 for zero denominators and non-finite
// results.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return Sanitize(a / b)
}
