package stats

import (
	"gonum.org/v1/gonum/floats"
)

// DifferenceFunction computes the YIN squared-difference function
//
//	d(τ) = Σ_{i=0}^{N-1-τ} (x[i] - x[i+τ])²
//
// for τ in [0, maxLag). maxLag is capped at len(x).
//
// Reference: de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental
// frequency estimator for speech and music"
func DifferenceFunction(x []float64, maxLag int, dst []float64) []float64 {
	n := len(x)
	maxLag = clampLag(maxLag, n)
	d := scratch(dst, maxLag)

	for lag := range maxLag {
		dist := floats.Distance(x[:n-lag], x[lag:], 2)
		d[lag] = dist * dist
	}
	return d
}

// CumulativeMeanNormalized turns a difference function into the YIN
// cumulative mean normalized difference, in place:
//
//	cmnd(0) = 1
//	cmnd(τ) = d(τ) / ((1/τ) Σ_{t=1}^{τ} d(t))
//
// Lags whose running mean is still zero (a constant prefix) are set to 1.
func CumulativeMeanNormalized(d []float64) []float64 {
	if len(d) == 0 {
		return d
	}
	d[0] = 1.0

	runningSum := 0.0
	for tau := 1; tau < len(d); tau++ {
		runningSum += d[tau]
		if runningSum == 0 {
			d[tau] = 1.0
			continue
		}
		d[tau] = d[tau] * float64(tau) / runningSum
	}
	return d
}
