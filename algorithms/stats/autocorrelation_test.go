package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-tuner/internal/testutil"
)

func TestLagAutocorrelationSmall(t *testing.T) {
	x := []float64{1, 2, 3}
	r := LagAutocorrelation(x, 3, nil)

	require.Len(t, r, 3)
	assert.InDelta(t, 14.0/3, r[0], 1e-12) // (1+4+9)/3
	assert.InDelta(t, 8.0/2, r[1], 1e-12)  // (2+6)/2
	assert.InDelta(t, 3.0/1, r[2], 1e-12)
}

func TestLagAutocorrelationCapsMaxLag(t *testing.T) {
	r := LagAutocorrelation([]float64{1, 1}, 10, nil)
	assert.Len(t, r, 2)

	assert.Empty(t, LagAutocorrelation(nil, 10, nil))
}

func TestLagAutocorrelationReusesScratch(t *testing.T) {
	buf := make([]float64, 0, 600)
	x := testutil.Sine(440, 48000, 0.5, 2048)

	r := LagAutocorrelation(x, 600, buf)
	require.Len(t, r, 600)
	assert.Same(t, &buf[:1][0], &r[0])
}

func TestLagAutocorrelationFFTMatchesDirect(t *testing.T) {
	signals := map[string][]float64{
		"sine":  testutil.Sine(329.63, 44100, 0.5, 2048),
		"noise": testutil.Noise(11, 0.3, 2048),
		"short": testutil.Sine(1000, 8000, 0.9, 37),
	}

	for name, x := range signals {
		t.Run(name, func(t *testing.T) {
			direct := LagAutocorrelation(x, 551, nil)
			viaFFT := LagAutocorrelationFFT(x, 551, nil)

			require.Len(t, viaFFT, len(direct))
			for lag := range direct {
				assert.InDelta(t, direct[lag], viaFFT[lag], 1e-9, "lag %d", lag)
			}
		})
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	assert.Equal(t, 1, nextPowerOfTwo(1))
	assert.Equal(t, 4096, nextPowerOfTwo(2048+600))
	assert.Equal(t, 2048, nextPowerOfTwo(2048))
}
