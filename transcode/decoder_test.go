package transcode

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-tuner/internal/testutil"
)

// encodeWAV writes interleaved integer samples to a temporary WAV file and
// returns it rewound to the start
func encodeWAV(t *testing.T, sampleRate, bitDepth, channels int, data []int) *os.File {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "fixture-*.wav")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())

	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	return f
}

func quantize(samples []float64, fullScale float64) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = int(math.Round(s * (fullScale - 1)))
	}
	return out
}

func TestDecodeWAVMono16(t *testing.T) {
	original := testutil.Sine(440, 48000, 0.5, 48000)
	f := encodeWAV(t, 48000, 16, 1, quantize(original, 32768))

	data, err := DecodeWAV(f)
	require.NoError(t, err)

	assert.Equal(t, 48000, data.SampleRate)
	assert.Equal(t, 1, data.Channels)
	assert.Equal(t, 16, data.BitDepth)
	assert.Equal(t, time.Second, data.Duration)
	require.Len(t, data.PCM, len(original))
	for i := range original {
		assert.InDelta(t, original[i], data.PCM[i], 2.0/32768)
	}
}

func TestDecodeWAVMixesStereoToMono(t *testing.T) {
	// frames: (L, R)
	f := encodeWAV(t, 44100, 16, 2, []int{
		16384, -16384,
		16384, 16384,
		-32768, 0,
	})

	data, err := DecodeWAV(f)
	require.NoError(t, err)

	assert.Equal(t, 2, data.Channels)
	assert.Equal(t, []float64{0, 0.5, -0.5}, data.PCM)
}

func TestDecodeWAVBitDepths(t *testing.T) {
	tests := []struct {
		bitDepth int
		data     []int
		want     []float64
	}{
		{24, []int{4194304, -8388608, 0}, []float64{0.5, -1, 0}},
		{32, []int{1073741824, -1073741824}, []float64{0.5, -0.5}},
	}

	for _, tt := range tests {
		f := encodeWAV(t, 48000, tt.bitDepth, 1, tt.data)

		data, err := DecodeWAV(f)
		require.NoError(t, err, "%d-bit", tt.bitDepth)
		assert.Equal(t, tt.bitDepth, data.BitDepth)
		assert.Equal(t, tt.want, data.PCM)
	}
}

func TestDecodeWAVRejectsInvalidInput(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("definitely not a RIFF file")))
	assert.ErrorIs(t, err, ErrInvalidWAV)

	_, err = DecodeWAV(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrInvalidWAV)
}

func TestDecodeWAVRejectsUnsupportedBitDepth(t *testing.T) {
	f := encodeWAV(t, 8000, 8, 1, []int{0, 64, 128, 255})

	_, err := DecodeWAV(f)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeFile(t *testing.T) {
	f := encodeWAV(t, 44100, 16, 1, quantize(testutil.Sine(261.63, 44100, 0.3, 4410), 32768))

	data, err := DecodeFile(f.Name())
	require.NoError(t, err)
	assert.Len(t, data.PCM, 4410)
	assert.Equal(t, 100*time.Millisecond, data.Duration)

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRemoveDC(t *testing.T) {
	pcm := testutil.Sine(440, 48000, 0.5, 48000)
	for i := range pcm {
		pcm[i] += 0.25
	}
	data := &AudioData{PCM: pcm, SampleRate: 48000}

	require.NoError(t, data.RemoveDC(10))
	sum := 0.0
	for _, x := range data.PCM[len(pcm)-2048:] {
		sum += x
	}
	assert.InDelta(t, 0, sum/2048, 0.01)

	assert.Error(t, (&AudioData{PCM: pcm}).RemoveDC(10))
}
