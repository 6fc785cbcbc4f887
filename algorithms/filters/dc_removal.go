package filters

import (
	"fmt"
	"math"
)

// DefaultDCCutoff is the default -3dB point of the DC blocker, well below the
// lowest note a flute can play
const DefaultDCCutoff = 10.0

// DCBlocker removes the DC component from a sample stream with the one-pole
// high-pass difference equation
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
//
// A DCBlocker carries state between calls and is not safe for concurrent use.
type DCBlocker struct {
	pole float64 // R, 0 < R < 1

	x1 float64 // x[n-1]
	y1 float64 // y[n-1]
}

// NewDCBlocker creates a blocker whose -3dB cutoff is approximately cutoffHz,
// using R = 1 - 2*pi*fc/fs. The cutoff must lie in (0, sampleRate/2).
func NewDCBlocker(sampleRate int, cutoffHz float64) (*DCBlocker, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if math.IsNaN(cutoffHz) || cutoffHz <= 0 || cutoffHz >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("cutoff %.2f Hz must lie in (0, %d)", cutoffHz, sampleRate/2)
	}

	pole := 1.0 - 2.0*math.Pi*cutoffHz/float64(sampleRate)
	pole = min(max(pole, 0.001), 0.999999)
	return &DCBlocker{pole: pole}, nil
}

// Pole returns R
func (d *DCBlocker) Pole() float64 {
	return d.pole
}

// Process filters a single sample
func (d *DCBlocker) Process(x float64) float64 {
	y := x - d.x1 + d.pole*d.y1
	d.x1 = x
	d.y1 = y
	return y
}

// ProcessBuffer filters a buffer into a new slice, continuing from the
// state left by earlier calls
func (d *DCBlocker) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, x := range input {
		output[i] = d.Process(x)
	}
	return output
}

// Reset clears the filter state. Call it between discontinuous segments.
func (d *DCBlocker) Reset() {
	d.x1, d.y1 = 0, 0
}

// Magnitude returns |H(e^jw)| at frequency, where
// H(e^jw) = (1 - e^-jw) / (1 - R*e^-jw)
func (d *DCBlocker) Magnitude(frequency float64, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	w := 2.0 * math.Pi * frequency / float64(sampleRate)
	num := math.Hypot(1-math.Cos(w), math.Sin(w))
	den := math.Hypot(1-d.pole*math.Cos(w), d.pole*math.Sin(w))
	return num / den
}
