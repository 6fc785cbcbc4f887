package tonal

import (
	"github.com/RyanBlaney/sonido-tuner/algorithms/stats"
	"github.com/RyanBlaney/sonido-tuner/algorithms/temporal"
)

// dipRatio is the fraction of r(0) the correlation must fall below before
// peaks are considered, which skips the zero-lag lobe
const dipRatio = 0.5

// AutocorrelationDetector estimates pitch from the normalized autocorrelation
// using a first-dip/best-peak search.
//
// References:
// - Rabiner, L.R. (1977). "On the use of autocorrelation analysis for pitch detection"
//
// The search takes the highest peak after the first dip, so on a clean tone it
// can lock onto a multiple of the period (an octave or more below the played
// note). YinDetector is the octave-stable alternative.
type AutocorrelationDetector struct {
	config DetectionConfig
	gate   *temporal.SilenceGate
}

// NewAutocorrelationDetector creates a detector with the given config
func NewAutocorrelationDetector(config DetectionConfig) *AutocorrelationDetector {
	return &AutocorrelationDetector{
		config: config,
		gate:   temporal.NewSilenceGate(config.RMSThreshold),
	}
}

// Method returns MethodAutocorrelation
func (d *AutocorrelationDetector) Method() Method {
	return MethodAutocorrelation
}

// Detect runs the silence gate and the autocorrelation search over window
func (d *AutocorrelationDetector) Detect(window SampleWindow) PitchEstimate {
	rms, pass := d.gate.Check(window.Samples)
	if !pass {
		return rejectedEstimate(MethodAutocorrelation, rms, 0, RejectSilence)
	}

	minLag, maxLag := d.config.lagBounds(window.SampleRate, len(window.Samples))

	var r []float64
	if d.config.UseFFT {
		r = stats.LagAutocorrelationFFT(window.Samples, maxLag, nil)
	} else {
		r = stats.LagAutocorrelation(window.Samples, maxLag, nil)
	}

	if len(r) == 0 || r[0] <= 0 {
		return rejectedEstimate(MethodAutocorrelation, rms, 0, RejectNoPeak)
	}

	bestLag, bestCorrelation := firstDipPeak(r, minLag)
	if bestLag <= 0 {
		return rejectedEstimate(MethodAutocorrelation, rms, 0, RejectNoPeak)
	}

	clarity := bestCorrelation / r[0]
	if clarity < d.config.ClarityThreshold {
		return rejectedEstimate(MethodAutocorrelation, rms, clarity, RejectLowClarity)
	}

	frequency := float64(window.SampleRate) / float64(bestLag)
	if !d.config.InRange(frequency) {
		return rejectedEstimate(MethodAutocorrelation, rms, clarity, RejectOutOfRange)
	}

	return detectedEstimate(MethodAutocorrelation, rms, frequency, clarity)
}

// firstDipPeak scans r from minLag, waits until r drops below dipRatio·r(0),
// then returns the lag of the largest value seen afterwards. bestLag is -1 when
// the dip never happens.
func firstDipPeak(r []float64, minLag int) (bestLag int, bestCorrelation float64) {
	bestLag = -1
	bestCorrelation = -1.0
	dipped := false

	for lag := max(minLag, 0); lag < len(r); lag++ {
		if !dipped && r[lag] < r[0]*dipRatio {
			dipped = true
		}
		if dipped && r[lag] > bestCorrelation {
			bestCorrelation = r[lag]
			bestLag = lag
		}
	}
	return bestLag, bestCorrelation
}
