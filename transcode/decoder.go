package transcode

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-tuner/algorithms/filters"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

var (
	// ErrInvalidWAV is returned for input that is not a readable RIFF/WAVE file
	ErrInvalidWAV = errors.New("invalid WAV file")
	// ErrUnsupportedFormat is returned for WAV encodings the decoder cannot convert
	ErrUnsupportedFormat = errors.New("unsupported WAV format")
)

const wavFormatPCM = 1

// AudioData represents decoded audio, mixed down to mono
type AudioData struct {
	PCM        []float64     `json:"-"` // samples in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`  // channel count of the source
	BitDepth   int           `json:"bit_depth"` // bit depth of the source
	Duration   time.Duration `json:"duration"`
}

// DecodeFile opens and decodes a WAV file
func DecodeFile(filename string) (*AudioData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	data, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}

// DecodeWAV decodes 16, 24 or 32-bit integer PCM WAV data into mono float64
// samples. Multi-channel audio is mixed down by averaging each frame.
func DecodeWAV(r io.ReadSeeker) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeWAV",
	})

	decoder := wav.NewDecoder(r)
	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	bitDepth := int(decoder.BitDepth)
	channels := int(decoder.NumChans)
	sampleRate := int(decoder.SampleRate)

	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: audio format %d is not integer PCM", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}
	divisor, err := audioDivisor(bitDepth)
	if err != nil {
		return nil, err
	}
	if channels < 1 || sampleRate < 1 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidWAV, channels, sampleRate)
	}

	logger.Debug("WAV header read", logging.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
		"bit_depth":   bitDepth,
	})

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		logger.Error(err, "Failed to read PCM data")
		return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}

	pcm := mixDown(buf, channels, divisor)
	data := &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
		Duration:   samplesToDuration(len(pcm), sampleRate),
	}

	logger.Debug("WAV decoded", logging.Fields{
		"samples":  len(pcm),
		"duration": data.Duration,
	})
	return data, nil
}

// RemoveDC runs the PCM through a DC blocker with the given cutoff, in place
func (a *AudioData) RemoveDC(cutoffHz float64) error {
	blocker, err := filters.NewDCBlocker(a.SampleRate, cutoffHz)
	if err != nil {
		return fmt.Errorf("failed to create DC blocker: %w", err)
	}
	for i, x := range a.PCM {
		a.PCM[i] = blocker.Process(x)
	}
	return nil
}

func samplesToDuration(samples, sampleRate int) time.Duration {
	return time.Duration(math.Round(float64(samples) / float64(sampleRate) * float64(time.Second)))
}

// audioDivisor returns the full-scale value for a signed integer bit depth
func audioDivisor(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, fmt.Errorf("%w: bit depth %d", ErrUnsupportedFormat, bitDepth)
	}
}

// mixDown averages interleaved frames into one channel and scales to [-1, 1].
// A trailing partial frame is dropped.
func mixDown(buf *audio.IntBuffer, channels int, divisor float64) []float64 {
	frames := len(buf.Data) / channels
	pcm := make([]float64, frames)

	scale := divisor * float64(channels)
	for i := range frames {
		sum := 0
		for _, s := range buf.Data[i*channels : (i+1)*channels] {
			sum += s
		}
		pcm[i] = float64(sum) / scale
	}
	return pcm
}
