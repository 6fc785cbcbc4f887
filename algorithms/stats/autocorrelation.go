package stats

import (
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// Lag-domain functions used by the pitch detectors.
//
// All functions take an optional dst slice that is reused when it has enough
// capacity, so a caller can keep one scratch buffer per detection call.

func scratch(dst []float64, n int) []float64 {
	if cap(dst) < n {
		return make([]float64, n)
	}
	return dst[:n]
}

// clampLag limits maxLag to the signal length so every lag has at least one overlapping sample
func clampLag(maxLag, n int) int {
	if maxLag > n {
		return n
	}
	if maxLag < 0 {
		return 0
	}
	return maxLag
}

// LagAutocorrelation computes the unbiased autocorrelation
//
//	r(τ) = Σ_{i=0}^{N-1-τ} x[i]·x[i+τ] / (N-τ)
//
// for τ in [0, maxLag). maxLag is capped at len(x).
func LagAutocorrelation(x []float64, maxLag int, dst []float64) []float64 {
	n := len(x)
	maxLag = clampLag(maxLag, n)
	r := scratch(dst, maxLag)

	for lag := range maxLag {
		overlap := n - lag
		r[lag] = floats.Dot(x[:overlap], x[lag:]) / float64(overlap)
	}
	return r
}

// LagAutocorrelationFFT computes the same values as LagAutocorrelation through
// the power spectrum of the zero-padded signal. Padding to at least N+maxLag
// keeps the circular correlation from wrapping into the lags of interest.
// Cheaper than the direct sum once N·maxLag gets large (16384-sample windows).
func LagAutocorrelationFFT(x []float64, maxLag int, dst []float64) []float64 {
	n := len(x)
	maxLag = clampLag(maxLag, n)
	r := scratch(dst, maxLag)
	if maxLag == 0 {
		return r
	}

	padded := make([]float64, nextPowerOfTwo(n+maxLag))
	copy(padded, x)

	spectrum := fft.FFTReal(padded)
	for i, c := range spectrum {
		re, im := real(c), imag(c)
		spectrum[i] = complex(re*re+im*im, 0)
	}
	raw := fft.IFFT(spectrum)

	for lag := range maxLag {
		r[lag] = real(raw[lag]) / float64(n-lag)
	}
	return r
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
