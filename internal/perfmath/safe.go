// Package perfmath holds the numeric primitives shared by every engine component:
// NaN-safe arithmetic, rounding, Modified Dietz, Sharpe, beta and volatility.
// Nothing in this package returns NaN or ±Inf.
package perfmath

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultPlaces is the precision every published engine value is rounded to.
const DefaultPlaces = 2

// Finite maps NaN and ±Inf to 0.
func Finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// Round normalizes x (non-finite → 0) and rounds half away from zero to places decimals.
func Round(x float64, places int32) float64 {
	x = Finite(x)
	if x == 0 {
		return 0
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// Normalize is Round at DefaultPlaces.
func Normalize(x float64) float64 {
	return Round(x, DefaultPlaces)
}

// SafeDiv returns a/b, or 0 when b is zero or the quotient is not finite.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return Finite(a / b)
}

// PercentChange returns (to/from - 1) * 100, or 0 when from is not positive.
func PercentChange(from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	return Finite((to/from - 1) * 100)
}

// Clamp bounds x to [lo, hi]; non-finite input returns lo.
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return lo
	}
	return math.Max(lo, math.Min(hi, x))
}

// GrahamNumber is sqrt(22.5 * eps * bvps). Zero unless both inputs are positive.
func GrahamNumber(eps, bvps float64) float64 {
	if eps <= 0 || bvps <= 0 {
		return 0
	}
	return Finite(math.Sqrt(22.5 * eps * bvps))
}
