package tuner

import (
	"context"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
)

// WindowSource hands the loop the most recent window of samples. Returning
// io.EOF ends the loop cleanly; any other error ends it with that error.
type WindowSource interface {
	NextWindow(ctx context.Context) (tonal.SampleWindow, error)
}

// Sink receives every estimate the loop publishes, on the loop goroutine.
// Publish must not call Stop on the same loop.
type Sink interface {
	Publish(estimate tonal.PitchEstimate)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(estimate tonal.PitchEstimate)

func (f SinkFunc) Publish(estimate tonal.PitchEstimate) {
	f(estimate)
}
