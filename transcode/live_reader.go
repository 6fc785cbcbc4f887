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

// LiveReader plays decoded audio against the wall clock and serves the most
// recent size samples on each call, the way a capture buffer would. Calls
// faster than the audio advances see overlapping windows; slow calls skip
// audio. It returns io.EOF once playback passes the end.
type LiveReader struct {
	mu    sync.Mutex
	data  *AudioData
	size  int
	now   func() time.Time
	start time.Time
	last  int
}

func NewLiveReader(data *AudioData, size int) (*LiveReader, error) {
	if data == nil {
		return nil, errors.New("audio data is required")
	}
	if data.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", data.SampleRate)
	}
	if size <= 0 {
		return nil, fmt.Errorf("window size %d must be positive", size)
	}
	return &LiveReader{data: data, size: size, now: time.Now}, nil
}

func (r *LiveReader) NextWindow(ctx context.Context) (tonal.SampleWindow, error) {
	if err := ctx.Err(); err != nil {
		return tonal.SampleWindow{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.start.IsZero() {
		r.start = r.now()
	}
	elapsed := r.now().Sub(r.start)
	end := int(elapsed.Seconds() * float64(r.data.SampleRate))
	end = max(end, r.size)
	if end > len(r.data.PCM) {
		return tonal.SampleWindow{}, io.EOF
	}

	samples := make([]float64, r.size)
	copy(samples, r.data.PCM[end-r.size:end])
	r.last = end - r.size

	return tonal.SampleWindow{Samples: samples, SampleRate: r.data.SampleRate}, nil
}

// Offset returns the start time of the most recently served window
func (r *LiveReader) Offset() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return samplesToDuration(r.last, r.data.SampleRate)
}
