package core

import "math"

const defaultEpsilon = 1e-12

// NearlyEqual reports whether a and b agree within eps, either absolutely
// or relative to the larger magnitude. A non-positive eps selects 1e-12.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	return largest > 0 && diff/largest <= eps
}

// PowerDB converts a linear power ratio to decibels.
// Zero maps to -Inf, negative values to NaN.
func PowerDB(power float64) float64 {
	switch {
	case power < 0:
		return math.NaN()
	case power == 0:
		return math.Inf(-1)
	}
	return 10 * math.Log10(power)
}
