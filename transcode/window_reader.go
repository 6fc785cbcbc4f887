package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
)

// WindowReader serves fixed-size windows from decoded audio, advancing by hop
// samples per call. Each window is a fresh copy. It returns io.EOF once fewer
// than size samples remain.
type WindowReader struct {
	mu   sync.Mutex
	data *AudioData
	size int
	hop  int
	pos  int
	last int // start of the most recently served window
}

// NewWindowReader creates a reader of size-sample windows. A hop equal to size
// gives back-to-back windows; a smaller hop overlaps them.
func NewWindowReader(data *AudioData, size, hop int) (*WindowReader, error) {
	if data == nil {
		return nil, errors.New("audio data is required")
	}
	if data.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", data.SampleRate)
	}
	if size <= 0 || hop <= 0 {
		return nil, fmt.Errorf("window size %d and hop %d must be positive", size, hop)
	}
	return &WindowReader{data: data, size: size, hop: hop}, nil
}

func (r *WindowReader) NextWindow(ctx context.Context) (tonal.SampleWindow, error) {
	if err := ctx.Err(); err != nil {
		return tonal.SampleWindow{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pos+r.size > len(r.data.PCM) {
		return tonal.SampleWindow{}, io.EOF
	}

	samples := make([]float64, r.size)
	copy(samples, r.data.PCM[r.pos:r.pos+r.size])
	r.last = r.pos
	r.pos += r.hop

	return tonal.SampleWindow{Samples: samples, SampleRate: r.data.SampleRate}, nil
}

// Offset returns the start time of the most recently served window
func (r *WindowReader) Offset() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return samplesToDuration(r.last, r.data.SampleRate)
}

// Windows returns the total number of full windows in the audio
func (r *WindowReader) Windows() int {
	if len(r.data.PCM) < r.size {
		return 0
	}
	return (len(r.data.PCM)-r.size)/r.hop + 1
}
