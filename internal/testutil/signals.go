// Package testutil generates deterministic signals for detector and loop tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a sine wave starting at phase zero.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Noise generates uniform white noise in [-amplitude, amplitude] with a fixed seed.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// RelativeError returns |got-want|/want.
func RelativeError(got, want float64) float64 {
	return math.Abs(got-want) / want
}

// PitchTolerance is the accepted frequency error: 1% or 1 Hz, whichever is larger.
func PitchTolerance(want float64) float64 {
	return math.Max(0.01*want, 1.0)
}
