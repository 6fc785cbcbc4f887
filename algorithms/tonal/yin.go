package tonal

import (
	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/stats"
	"github.com/RyanBlaney/sonido-tuner/algorithms/temporal"
)

// YinDetector implements the YIN pitch detection algorithm with parabolic
// refinement of the chosen lag.
//
// Reference: de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental
// frequency estimator for speech and music"
type YinDetector struct {
	config DetectionConfig
	gate   *temporal.SilenceGate
}

// NewYinDetector creates a YIN detector with the given config
func NewYinDetector(config DetectionConfig) *YinDetector {
	return &YinDetector{
		config: config,
		gate:   temporal.NewSilenceGate(config.RMSThreshold),
	}
}

// Method returns MethodYin
func (d *YinDetector) Method() Method {
	return MethodYin
}

// Detect runs the silence gate and the YIN search over window
func (d *YinDetector) Detect(window SampleWindow) PitchEstimate {
	rms, pass := d.gate.Check(window.Samples)
	if !pass {
		return rejectedEstimate(MethodYin, rms, 0, RejectSilence)
	}

	minLag, maxLag := d.config.lagBounds(window.SampleRate, len(window.Samples))

	// one scratch slice: difference function, normalized in place
	cmnd := stats.CumulativeMeanNormalized(stats.DifferenceFunction(window.Samples, maxLag, nil))

	tau := absoluteThreshold(cmnd, minLag, d.config.YinThreshold)
	if tau < 0 {
		tau = globalMinimum(cmnd, minLag)
	}
	if tau <= 0 {
		return rejectedEstimate(MethodYin, rms, 0, RejectNoPeak)
	}

	period := refineLag(cmnd, tau)
	frequency := float64(window.SampleRate) / period
	if !d.config.InRange(frequency) {
		return rejectedEstimate(MethodYin, rms, 0, RejectOutOfRange)
	}

	return detectedEstimate(MethodYin, rms, frequency, 1-cmnd[tau])
}

// absoluteThreshold returns the first lag >= minLag whose cmnd is below
// threshold, advanced to the bottom of that dip. Returns -1 when no lag crosses.
func absoluteThreshold(cmnd []float64, minLag int, threshold float64) int {
	for tau := max(minLag, 0); tau < len(cmnd); tau++ {
		if cmnd[tau] >= threshold {
			continue
		}
		for tau+1 < len(cmnd) && cmnd[tau+1] < cmnd[tau] {
			tau++
		}
		return tau
	}
	return -1
}

// globalMinimum returns the lag of the smallest cmnd value below 1 in
// [minLag, len(cmnd)), or -1 if every value is at least 1
func globalMinimum(cmnd []float64, minLag int) int {
	best := -1
	minValue := 1.0
	for tau := max(minLag, 0); tau < len(cmnd); tau++ {
		if cmnd[tau] < minValue {
			minValue = cmnd[tau]
			best = tau
		}
	}
	return best
}

// refineLag interpolates a fractional lag around tau. The integer lag is kept
// at the edges of cmnd and whenever the fit is flat or non-positive.
func refineLag(cmnd []float64, tau int) float64 {
	refined := common.ParabolicVertex(cmnd, tau)
	if refined <= 0 {
		return float64(tau)
	}
	return refined
}
