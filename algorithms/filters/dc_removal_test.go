package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/internal/testutil"
)

func TestNewDCBlocker(t *testing.T) {
	d, err := NewDCBlocker(48000, DefaultDCCutoff)
	require.NoError(t, err)
	assert.InDelta(t, 1-2*math.Pi*10/48000, d.Pole(), 1e-12)

	for _, tt := range []struct {
		sampleRate int
		cutoff     float64
	}{
		{0, 10},
		{48000, 0},
		{48000, 24000},
		{48000, math.NaN()},
	} {
		_, err := NewDCBlocker(tt.sampleRate, tt.cutoff)
		assert.Error(t, err, "%d Hz / %.1f Hz", tt.sampleRate, tt.cutoff)
	}
}

func TestDCBlockerRemovesOffset(t *testing.T) {
	const sampleRate = 48000
	signal := testutil.Sine(440, sampleRate, 0.5, sampleRate)
	for i := range signal {
		signal[i] += 0.3
	}

	d, err := NewDCBlocker(sampleRate, DefaultDCCutoff)
	require.NoError(t, err)
	out := d.ProcessBuffer(signal)

	tail := out[len(out)-2048:]
	assert.InDelta(t, 0, stat.Mean(tail, nil), 0.01)
	assert.InDelta(t, 0.5/math.Sqrt2, common.RMS(tail), 0.01)
}

func TestDCBlockerPassesFluteRange(t *testing.T) {
	d, err := NewDCBlocker(44100, DefaultDCCutoff)
	require.NoError(t, err)

	assert.InDelta(t, 0, d.Magnitude(0, 44100), 1e-12)
	assert.Greater(t, d.Magnitude(80, 44100), 0.99)
	assert.Greater(t, d.Magnitude(2500, 44100), 0.99)
	assert.InDelta(t, 1/math.Sqrt2, d.Magnitude(DefaultDCCutoff, 44100), 0.01)
}

func TestDCBlockerReset(t *testing.T) {
	d, err := NewDCBlocker(8000, 20)
	require.NoError(t, err)

	first := d.ProcessBuffer([]float64{1, 1, 1})
	d.Reset()
	again := d.ProcessBuffer([]float64{1, 1, 1})
	assert.Equal(t, first, again)
	assert.Equal(t, 1.0, first[0])
}
