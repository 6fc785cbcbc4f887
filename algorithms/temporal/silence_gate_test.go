package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RyanBlaney/sonido-tuner/internal/testutil"
)

func TestSilenceGate(t *testing.T) {
	gate := NewSilenceGate(DefaultRMSThreshold)

	tests := []struct {
		name     string
		samples  []float64
		wantPass bool
	}{
		{"empty", nil, false},
		{"all zero", make([]float64, 2048), false},
		{"quiet sine", testutil.Sine(440, 48000, 0.01, 2048), false},
		{"dc just above threshold", testutil.DC(0.011, 2048), true},
		{"played note", testutil.Sine(440, 48000, 0.5, 2048), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rms, pass := gate.Check(tt.samples)
			assert.Equal(t, tt.wantPass, pass)
			assert.GreaterOrEqual(t, rms, 0.0)
		})
	}
}

func TestSilenceGateZeroRMS(t *testing.T) {
	rms, pass := NewSilenceGate(0.01).Check(make([]float64, 16))
	assert.Equal(t, 0.0, rms)
	assert.False(t, pass)
}
