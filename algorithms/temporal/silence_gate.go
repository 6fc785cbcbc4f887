package temporal

import (
	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// DefaultRMSThreshold is the noise floor below which a window is treated as silence
const DefaultRMSThreshold = 0.01

// SilenceGate rejects low-energy windows before any pitch search runs
type SilenceGate struct {
	threshold float64
}

// NewSilenceGate creates a gate with the given RMS threshold
func NewSilenceGate(threshold float64) *SilenceGate {
	return &SilenceGate{threshold: threshold}
}

// Threshold returns the RMS noise floor
func (g *SilenceGate) Threshold() float64 {
	return g.threshold
}

// Check returns the window RMS and whether the window passes the gate.
// A window passes when RMS >= threshold; an empty window never passes.
func (g *SilenceGate) Check(samples []float64) (rms float64, pass bool) {
	rms = common.RMS(samples)
	return rms, len(samples) > 0 && rms >= g.threshold
}
