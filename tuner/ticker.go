package tuner

import (
	"context"
	"time"
)

// DefaultFrameRate is one tick per display frame
const DefaultFrameRate = 60.0

// Ticker paces the detection loop. Wait blocks until the next tick or until
// ctx is done, in which case it returns ctx.Err().
type Ticker interface {
	Wait(ctx context.Context) error
	Stop()
}

// FrameTicker ticks at a fixed rate on a time.Ticker. Ticks missed while a
// detection is running are dropped, never queued.
type FrameTicker struct {
	ticker *time.Ticker
}

// NewFrameTicker creates a ticker firing rate times per second.
// A non-positive rate falls back to DefaultFrameRate.
func NewFrameTicker(rate float64) *FrameTicker {
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	period := time.Duration(float64(time.Second) / rate)
	if period <= 0 {
		period = time.Nanosecond
	}
	return &FrameTicker{ticker: time.NewTicker(period)}
}

func (f *FrameTicker) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.ticker.C:
		return nil
	}
}

func (f *FrameTicker) Stop() {
	f.ticker.Stop()
}

// ImmediateTicker never waits. Used for offline analysis and tests.
type ImmediateTicker struct{}

func (ImmediateTicker) Wait(ctx context.Context) error {
	return ctx.Err()
}

func (ImmediateTicker) Stop() {}
