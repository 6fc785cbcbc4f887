package tonal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDetectionConfig(t *testing.T) {
	cfg := DefaultDetectionConfig()

	assert.Equal(t, 80.0, cfg.MinFrequency)
	assert.Equal(t, 2500.0, cfg.MaxFrequency)
	assert.Equal(t, 0.01, cfg.RMSThreshold)
	assert.Equal(t, 0.5, cfg.ClarityThreshold)
	assert.Equal(t, 0.15, cfg.YinThreshold)
	assert.False(t, cfg.UseFFT)

	require.NoError(t, cfg.Validate(44100))
	require.NoError(t, cfg.Validate(48000))
	require.NoError(t, cfg.Validate(0))
}

func TestDetectionConfigValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*DetectionConfig)
		sampleRate int
	}{
		{"zero min", func(c *DetectionConfig) { c.MinFrequency = 0 }, 48000},
		{"min above max", func(c *DetectionConfig) { c.MinFrequency = 3000 }, 48000},
		{"max equals min", func(c *DetectionConfig) { c.MaxFrequency = c.MinFrequency }, 48000},
		{"max at nyquist", func(c *DetectionConfig) { c.MaxFrequency = 4000 }, 8000},
		{"negative rms threshold", func(c *DetectionConfig) { c.RMSThreshold = -0.1 }, 48000},
		{"clarity above one", func(c *DetectionConfig) { c.ClarityThreshold = 1.2 }, 48000},
		{"yin above one", func(c *DetectionConfig) { c.YinThreshold = 2 }, 48000},
		{"negative sample rate", func(c *DetectionConfig) {}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDetectionConfig()
			tt.mutate(&cfg)
			err := cfg.Validate(tt.sampleRate)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestInRangeBoundsAreInclusive(t *testing.T) {
	cfg := DefaultDetectionConfig()

	assert.True(t, cfg.InRange(80))
	assert.True(t, cfg.InRange(2500))
	assert.True(t, cfg.InRange(440))
	assert.False(t, cfg.InRange(79))
	assert.False(t, cfg.InRange(2501))
}

func TestLagBounds(t *testing.T) {
	cfg := DefaultDetectionConfig()

	minLag, maxLag := cfg.lagBounds(44100, 2048)
	assert.Equal(t, 17, minLag) // floor(44100/2500)
	assert.Equal(t, 551, maxLag)

	minLag, maxLag = cfg.lagBounds(48000, 2048)
	assert.Equal(t, 19, minLag)
	assert.Equal(t, 600, maxLag)

	// short windows cap maxLag at N
	_, maxLag = cfg.lagBounds(48000, 256)
	assert.Equal(t, 256, maxLag)

	minLag, maxLag = cfg.lagBounds(0, 2048)
	assert.Zero(t, minLag)
	assert.Zero(t, maxLag)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("YIN")
	require.NoError(t, err)
	assert.Equal(t, MethodYin, m)

	m, err = ParseMethod("acf")
	require.NoError(t, err)
	assert.Equal(t, MethodAutocorrelation, m)

	_, err = ParseMethod("cepstrum")
	assert.Error(t, err)

	assert.Equal(t, "autocorrelation", MethodAutocorrelation.String())
	assert.Equal(t, "out_of_range", RejectOutOfRange.String())
}

func TestNewDetector(t *testing.T) {
	cfg := DefaultDetectionConfig()

	d, err := NewDetector(MethodYin, cfg)
	require.NoError(t, err)
	assert.Equal(t, MethodYin, d.Method())

	d, err = NewDetector(MethodAutocorrelation, cfg)
	require.NoError(t, err)
	assert.Equal(t, MethodAutocorrelation, d.Method())

	_, err = NewDetector(Method(42), cfg)
	assert.Error(t, err)
}
