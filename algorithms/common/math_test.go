package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRMS(t *testing.T) {
	assert.Equal(t, 0.0, RMS(nil))
	assert.Equal(t, 0.0, RMS(make([]float64, 64)))
	assert.InDelta(t, 0.5, RMS([]float64{0.5, -0.5, 0.5, -0.5}), 1e-12)

	// full-cycle sine of amplitude a has RMS a/sqrt(2)
	sine := make([]float64, 1000)
	for i := range sine {
		sine[i] = 0.8 * math.Sin(2*math.Pi*float64(i)/100)
	}
	assert.InDelta(t, 0.8/math.Sqrt2, RMS(sine), 1e-9)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 440.1, RoundTo(440.06, 1))
	assert.Equal(t, 440.0, RoundTo(440.04, 1))
	assert.Equal(t, 2.0, RoundTo(1.5, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.2, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.7, 0, 1))
	assert.Equal(t, 0.3, Clamp(0.3, 0, 1))
	assert.Equal(t, 0.0, Clamp(math.NaN(), 0, 1))
}

func TestParabolicVertex(t *testing.T) {
	// y = (x - 2.3)^2 sampled at integers
	data := make([]float64, 6)
	for i := range data {
		d := float64(i) - 2.3
		data[i] = d * d
	}
	assert.InDelta(t, 2.3, ParabolicVertex(data, 2), 1e-12)

	t.Run("edges keep integer index", func(t *testing.T) {
		assert.Equal(t, 0.0, ParabolicVertex(data, 0))
		assert.Equal(t, 5.0, ParabolicVertex(data, 5))
	})

	t.Run("flat minimum falls back", func(t *testing.T) {
		flat := []float64{0.2, 0.2, 0.2}
		assert.Equal(t, 1.0, ParabolicVertex(flat, 1))
	})

	t.Run("non-finite neighbours fall back", func(t *testing.T) {
		bad := []float64{math.Inf(1), 0.1, 0.3}
		assert.Equal(t, 1.0, ParabolicVertex(bad, 1))
	})
}
