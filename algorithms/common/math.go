package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Numeric helpers shared by the gate and the detectors, built on gonum where it helps

// RMS calculates root mean square. An empty slice has RMS 0.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	// Norm(data, 2) = sqrt(sum of squares)
	return floats.Norm(data, 2) / math.Sqrt(float64(len(data)))
}

// RoundTo rounds x to the given number of decimal places
func RoundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}

// Clamp limits x to [lo, hi]. NaN maps to lo.
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// IsFinite reports whether x is neither NaN nor infinite
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
